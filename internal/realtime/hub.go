package realtime

import (
	"context"
	"sync"
	"time"
)

// EventType is the kind of change
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
	// EventResync tells a resumed subscriber that it missed changes and should refetch
	EventResync EventType = "resync"
)

// Event is a change notification on a collection
type Event struct {
	Collection string    `json:"collection"`
	Type       EventType `json:"type"`
	RecordID   string    `json:"record_id,omitempty"`
	At         time.Time `json:"at"`
}

// Handler receives events. Handlers run on the publisher's goroutine and must not block.
type Handler func(Event)

// Hub fans change events out to collection subscribers
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]*Subscription
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]*Subscription)}
}

// Subscription is a live registration; Cancel ends it
type Subscription struct {
	hub        *Hub
	id         uint64
	collection string
	handler    Handler

	mu       sync.Mutex
	paused   bool
	missed   bool
	canceled bool
}

// Subscribe registers handler for changes on collection
func (h *Hub) Subscribe(collection string, handler Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{hub: h, id: h.nextID, collection: collection, handler: handler}
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[uint64]*Subscription)
	}
	h.subs[collection][sub.id] = sub
	return sub
}

// Publish delivers an event to every active subscriber of its collection
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	h.mu.RLock()
	targets := make([]*Subscription, 0, len(h.subs[e.Collection]))
	for _, sub := range h.subs[e.Collection] {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		sub.deliver(e)
	}
}

// Notify is Publish for a single record change
func (h *Hub) Notify(collection string, typ EventType, recordID string) {
	h.Publish(Event{Collection: collection, Type: typ, RecordID: recordID})
}

// SubscriberCount returns the number of subscriptions on collection
func (h *Hub) SubscriberCount(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[collection])
}

// Watch streams events on collection until ctx is done.
// Events are dropped when the consumer falls more than buffer events behind.
func (h *Hub) Watch(ctx context.Context, collection string, buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	var closeOnce sync.Once
	var mu sync.Mutex
	closed := false

	sub := h.Subscribe(collection, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})

	go func() {
		<-ctx.Done()
		sub.Cancel()
		closeOnce.Do(func() {
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}()

	return ch
}

func (s *Subscription) deliver(e Event) {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	if s.paused {
		s.missed = true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.handler(e)
}

// Pause stops delivery; changes published while paused are coalesced into one resync on Resume
func (s *Subscription) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume restarts delivery
func (s *Subscription) Resume() {
	s.mu.Lock()
	if !s.paused || s.canceled {
		s.mu.Unlock()
		return
	}
	s.paused = false
	missed := s.missed
	s.missed = false
	s.mu.Unlock()

	if missed {
		s.handler(Event{Collection: s.collection, Type: EventResync, At: time.Now()})
	}
}

// Paused reports whether delivery is suspended
func (s *Subscription) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Cancel removes the subscription. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	s.mu.Unlock()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	delete(s.hub.subs[s.collection], s.id)
	if len(s.hub.subs[s.collection]) == 0 {
		delete(s.hub.subs, s.collection)
	}
}
