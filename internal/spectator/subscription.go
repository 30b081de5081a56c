package spectator

import (
	"sync"

	"github.com/google/uuid"
)

// SubscriberID identifies one viewer.
type SubscriberID string

// Subscriber is the transport-neutral handle the hub broadcasts to.
// Send must not block.
type Subscriber interface {
	ID() SubscriberID
	Send(f Frame)
	Done() <-chan struct{}
}

// Subscription is a Subscriber backed by a buffered channel.
// Used by the TUI to receive frames inside a Bubble Tea command.
type Subscription struct {
	id       SubscriberID
	updates  chan Frame
	done     chan struct{}
	doneOnce sync.Once
}

// NewSubscription creates a channel-backed subscriber.
// bufferSize controls how many frames are kept before the oldest is dropped.
func NewSubscription(bufferSize int) *Subscription {
	if bufferSize < 1 {
		bufferSize = 8
	}
	return &Subscription{
		id:      SubscriberID(uuid.NewString()),
		updates: make(chan Frame, bufferSize),
		done:    make(chan struct{}),
	}
}

// ID returns the subscriber identifier.
func (s *Subscription) ID() SubscriberID {
	return s.id
}

// Send delivers a frame. If the buffer is full the oldest frame is dropped,
// so a slow viewer never stalls the hub.
func (s *Subscription) Send(f Frame) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.updates <- f:
	default:
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- f:
		default:
		}
	}
}

// Updates returns the channel frames arrive on.
func (s *Subscription) Updates() <-chan Frame {
	return s.updates
}

// Done returns a channel that closes when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close ends the subscription. Safe to call multiple times.
func (s *Subscription) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SubscriberRegistry tracks active subscribers.
// Thread-safe for concurrent access.
type SubscriberRegistry struct {
	mu   sync.RWMutex
	subs map[SubscriberID]Subscriber
}

// NewSubscriberRegistry creates an empty registry.
func NewSubscriberRegistry() *SubscriberRegistry {
	return &SubscriberRegistry{
		subs: make(map[SubscriberID]Subscriber),
	}
}

// Register adds a subscriber.
func (r *SubscriberRegistry) Register(s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[s.ID()] = s
}

// Unregister removes a subscriber.
func (r *SubscriberRegistry) Unregister(id SubscriberID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
}

// Get retrieves a subscriber by ID.
func (r *SubscriberRegistry) Get(id SubscriberID) (Subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subs[id]
	return s, ok
}

// Count returns the number of registered subscribers.
func (r *SubscriberRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Broadcast sends f to every live subscriber and drops the ones that are done.
func (r *SubscriberRegistry) Broadcast(f Frame) {
	r.mu.RLock()
	var gone []SubscriberID
	for id, s := range r.subs {
		select {
		case <-s.Done():
			gone = append(gone, id)
			continue
		default:
		}
		s.Send(f)
	}
	r.mu.RUnlock()

	for _, id := range gone {
		r.Unregister(id)
	}
}

// CloseAll ends and removes every subscriber that supports closing.
func (r *SubscriberRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.subs {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
		delete(r.subs, id)
	}
}
