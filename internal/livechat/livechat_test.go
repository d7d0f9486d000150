package livechat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/forms"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

type fixture struct {
	sessions *store.Memory[models.LiveChatSession]
	messages *store.Memory[models.LiveChatMessage]
	cache    *querycache.Cache
	hub      *realtime.Hub
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sessions: store.NewMemory[models.LiveChatSession](models.CollectionLiveChatSessions),
		messages: store.NewMemory[models.LiveChatMessage](models.CollectionLiveChatMessages),
		cache:    querycache.New(time.Minute, time.Minute),
		hub:      realtime.NewHub(),
	}
	require.NoError(t, f.sessions.Seed(
		models.LiveChatSession{ID: "s1", CustomerName: "Siti", Status: models.ChatStatusWaiting},
		models.LiveChatSession{ID: "s2", CustomerName: "Andi", Status: models.ChatStatusClosed},
	))
	f.svc = NewService(f.sessions, f.messages, f.cache, f.hub)
	t.Cleanup(f.svc.Close)
	return f
}

func TestSessions_ExternalChangeInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	waiting, err := f.svc.Sessions(ctx, models.ChatStatusWaiting)
	require.NoError(t, err)
	require.Len(t, waiting, 1)

	// a customer opens a chat elsewhere
	_, err = f.sessions.Insert(ctx, map[string]interface{}{"customer_name": "Budi", "status": models.ChatStatusWaiting})
	require.NoError(t, err)

	cached, err := f.svc.Sessions(ctx, models.ChatStatusWaiting)
	require.NoError(t, err)
	assert.Len(t, cached, 1, "served from cache until notified")

	f.hub.Notify(models.CollectionLiveChatSessions, realtime.EventInsert, "")

	fresh, err := f.svc.Sessions(ctx, models.ChatStatusWaiting)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestSessions_PausedSubscriptionResyncsOnResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Sessions(ctx, "")
	require.NoError(t, err)

	f.svc.Pause()
	_, err = f.sessions.Insert(ctx, map[string]interface{}{"status": models.ChatStatusWaiting})
	require.NoError(t, err)
	f.hub.Notify(models.CollectionLiveChatSessions, realtime.EventInsert, "")

	stale, err := f.svc.Sessions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, stale, 2)

	f.svc.Resume()
	fresh, err := f.svc.Sessions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestReply_ActivatesWaitingSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Messages(ctx, "s1")
	require.NoError(t, err)

	id, err := f.svc.Reply(ctx, "s1", "agent-3", map[string]string{"message": "Halo, ada yang bisa dibantu?"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := f.svc.Messages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, SenderAgent, msgs[0].SenderType)
	assert.Equal(t, "agent-3", msgs[0].SenderID)

	session, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.ChatStatusActive, session.Status)
	assert.Equal(t, "agent-3", session.AgentID)
	assert.NotNil(t, session.LastMessageAt)
}

func TestReply_ClosedSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Reply(context.Background(), "s2", "agent-3", map[string]string{"message": "hi"})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestReply_EmptyMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Reply(context.Background(), "s1", "agent-3", map[string]string{"message": "  "})
	var verr *forms.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CloseSession(ctx, "s1"))

	closed, err := f.svc.Sessions(ctx, models.ChatStatusClosed)
	require.NoError(t, err)
	assert.Len(t, closed, 2)
	assert.ErrorIs(t, f.svc.CloseSession(ctx, "nope"), store.ErrNotFound)
}

func TestMarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.messages.Seed(
		models.LiveChatMessage{ID: "m1", SessionID: "s1", SenderType: SenderCustomer, Message: "halo"},
		models.LiveChatMessage{ID: "m2", SessionID: "s1", SenderType: SenderCustomer, Message: "?"},
		models.LiveChatMessage{ID: "m3", SessionID: "s1", SenderType: SenderAgent, Message: "ya"},
	))

	n, err := f.svc.MarkRead(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = f.svc.MarkRead(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAssign_RequiresAgent(t *testing.T) {
	f := newFixture(t)

	var verr *forms.ValidationError
	assert.True(t, errors.As(f.svc.Assign(context.Background(), "s1", ""), &verr))
	assert.NoError(t, f.svc.Assign(context.Background(), "s1", "agent-9"))
}
