package livechat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-console/internal/forms"
	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

// ErrSessionClosed is returned when posting to a closed session
var ErrSessionClosed = errors.New("chat session is closed")

// Sender types
const (
	SenderCustomer = "customer"
	SenderAgent    = "agent"
	SenderSystem   = "system"
)

// Service serves the customer-service live chat console
type Service struct {
	sessions store.Collection[models.LiveChatSession]
	messages store.Collection[models.LiveChatMessage]
	cache    *querycache.Cache
	hub      *realtime.Hub

	subs []*realtime.Subscription
}

// NewService creates the live chat service and subscribes its cache to chat changes.
// Close releases the subscriptions.
func NewService(sessions store.Collection[models.LiveChatSession], messages store.Collection[models.LiveChatMessage], cache *querycache.Cache, hub *realtime.Hub) *Service {
	s := &Service{sessions: sessions, messages: messages, cache: cache, hub: hub}
	if cache != nil && hub != nil {
		for _, collection := range []string{models.CollectionLiveChatSessions, models.CollectionLiveChatMessages} {
			collection := collection
			s.subs = append(s.subs, hub.Subscribe(collection, func(realtime.Event) {
				cache.Invalidate(collection)
			}))
		}
	}
	return s
}

// Close cancels the realtime subscriptions
func (s *Service) Close() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
}

// Pause suspends cache invalidation, e.g. while no console is open
func (s *Service) Pause() {
	for _, sub := range s.subs {
		sub.Pause()
	}
}

// Resume restarts invalidation; a missed change triggers one resync
func (s *Service) Resume() {
	for _, sub := range s.subs {
		sub.Resume()
	}
}

// Sessions lists sessions, optionally by status, most recently active first
func (s *Service) Sessions(ctx context.Context, status string) ([]models.LiveChatSession, error) {
	q := store.Query{Order: "updated_at desc", Limit: 200}
	if status != "" {
		q.Filters = map[string]interface{}{"status": status}
	}
	return cached(s, models.CollectionLiveChatSessions, q, func() ([]models.LiveChatSession, error) {
		return s.sessions.Select(ctx, q)
	})
}

// Messages lists the messages of a session in order
func (s *Service) Messages(ctx context.Context, sessionID string) ([]models.LiveChatMessage, error) {
	q := store.Query{
		Filters: map[string]interface{}{"session_id": sessionID},
		Order:   "created_at asc",
	}
	return cached(s, models.CollectionLiveChatMessages, q, func() ([]models.LiveChatMessage, error) {
		return s.messages.Select(ctx, q)
	})
}

func cached[T any](s *Service, collection string, q store.Query, load func() ([]T, error)) ([]T, error) {
	if s.cache == nil {
		return load()
	}
	return querycache.Fetch(s.cache, collection, q.Key(), load)
}

// Reply posts an agent message. A waiting session becomes active and is assigned to the agent.
func (s *Service) Reply(ctx context.Context, sessionID, agentID string, raw map[string]string) (string, error) {
	values, err := forms.ChatMessageForm.Bind(raw, false)
	if err != nil {
		return "", err
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.Status == models.ChatStatusClosed {
		return "", ErrSessionClosed
	}

	now := time.Now()
	values["session_id"] = sessionID
	values["sender_type"] = SenderAgent
	if sender, _ := values["sender_id"].(string); sender == "" {
		values["sender_id"] = agentID
	}
	id, err := s.messages.Insert(ctx, values)
	if err != nil {
		return "", fmt.Errorf("failed to post message: %w", err)
	}
	s.notify(models.CollectionLiveChatMessages, realtime.EventInsert, id)

	update := map[string]interface{}{"last_message_at": now}
	if session.Status == models.ChatStatusWaiting {
		update["status"] = models.ChatStatusActive
		if session.AgentID == "" {
			update["agent_id"] = agentID
		}
	}
	if err := s.sessions.Update(ctx, sessionID, update); err != nil {
		logging.Logger.Warnf("LiveChat: Failed to touch session %s: %v", sessionID, err)
	} else {
		s.notify(models.CollectionLiveChatSessions, realtime.EventUpdate, sessionID)
	}
	return id, nil
}

// Assign hands a session to an agent
func (s *Service) Assign(ctx context.Context, sessionID, agentID string) error {
	if agentID == "" {
		return &forms.ValidationError{Form: "chat_assign", Fields: []forms.FieldError{{Field: "agent_id", Message: "is required"}}}
	}
	if err := s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"agent_id": agentID,
		"status":   models.ChatStatusActive,
	}); err != nil {
		return err
	}
	s.notify(models.CollectionLiveChatSessions, realtime.EventUpdate, sessionID)
	return nil
}

// CloseSession ends a conversation
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"status":    models.ChatStatusClosed,
		"closed_at": time.Now(),
	}); err != nil {
		return err
	}
	s.notify(models.CollectionLiveChatSessions, realtime.EventUpdate, sessionID)
	return nil
}

// MarkRead marks the customer messages of a session as read
func (s *Service) MarkRead(ctx context.Context, sessionID string) (int64, error) {
	updater, ok := s.messages.(interface {
		UpdateWhere(ctx context.Context, filters, values map[string]interface{}) (int64, error)
	})
	if !ok {
		return 0, errors.New("message store does not support bulk updates")
	}
	n, err := updater.UpdateWhere(ctx,
		map[string]interface{}{"session_id": sessionID, "sender_type": SenderCustomer, "is_read": false},
		map[string]interface{}{"is_read": true})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.notify(models.CollectionLiveChatMessages, realtime.EventUpdate, "")
	}
	return n, nil
}

// own writes invalidate directly so they show even while subscriptions are paused
func (s *Service) notify(collection string, typ realtime.EventType, id string) {
	if s.cache != nil {
		s.cache.Invalidate(collection)
	}
	if s.hub != nil {
		s.hub.Notify(collection, typ, id)
	}
}
