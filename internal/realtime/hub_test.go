package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(events *[]Event) Handler {
	return func(e Event) { *events = append(*events, e) }
}

func TestPublish_DeliversToCollectionSubscribersOnly(t *testing.T) {
	h := NewHub()
	var sessions, messages []Event
	h.Subscribe("live_chat_sessions", collect(&sessions))
	h.Subscribe("live_chat_messages", collect(&messages))

	h.Notify("live_chat_messages", EventInsert, "m1")

	assert.Empty(t, sessions)
	require.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].RecordID)
	assert.False(t, messages[0].At.IsZero())
}

func TestCancel_StopsDelivery(t *testing.T) {
	h := NewHub()
	var got []Event
	sub := h.Subscribe("live_chat_sessions", collect(&got))

	sub.Cancel()
	sub.Cancel()
	h.Notify("live_chat_sessions", EventUpdate, "s1")

	assert.Empty(t, got)
	assert.Equal(t, 0, h.SubscriberCount("live_chat_sessions"))
}

func TestPauseResume_CoalescesMissedEventsIntoResync(t *testing.T) {
	h := NewHub()
	var got []Event
	sub := h.Subscribe("live_chat_messages", collect(&got))

	sub.Pause()
	assert.True(t, sub.Paused())
	h.Notify("live_chat_messages", EventInsert, "m1")
	h.Notify("live_chat_messages", EventInsert, "m2")
	assert.Empty(t, got)

	sub.Resume()
	require.Len(t, got, 1)
	assert.Equal(t, EventResync, got[0].Type)

	h.Notify("live_chat_messages", EventInsert, "m3")
	require.Len(t, got, 2)
	assert.Equal(t, "m3", got[1].RecordID)
}

func TestResume_WithoutMissedEventsIsQuiet(t *testing.T) {
	h := NewHub()
	var got []Event
	sub := h.Subscribe("live_chat_messages", collect(&got))

	sub.Pause()
	sub.Resume()

	assert.Empty(t, got)
}

func TestWatch_ClosesWhenContextEnds(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := h.Watch(ctx, "live_chat_sessions", 4)

	h.Notify("live_chat_sessions", EventInsert, "s1")
	select {
	case e := <-ch:
		assert.Equal(t, "s1", e.RecordID)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected channel to close")
	}
	assert.Eventually(t, func() bool { return h.SubscriberCount("live_chat_sessions") == 0 }, time.Second, 10*time.Millisecond)
}
