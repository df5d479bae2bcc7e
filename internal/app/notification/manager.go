// Package notification provides the notification manager for broadcasting
// terminal and UI events to subscribers.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/termfolio/internal/app/sequencer"
)

// sendTimeout bounds how long one subscriber may hold up a broadcast.
const sendTimeout = 500 * time.Millisecond

// Kind represents the notification kind.
type Kind int

const (
	KindSequencer Kind = iota // Terminal animation update
	KindToast                 // Short user-facing message
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSequencer:
		return "sequencer"
	case KindToast:
		return "toast"
	default:
		return "unknown"
	}
}

// Notification is one broadcast message.
type Notification struct {
	SequenceNo uint64
	Kind       Kind
	Event      sequencer.Event // KindSequencer only
	Toast      string          // KindToast only
}

// Stream represents a notification stream for a subscriber. Send must give
// up when ctx is done so a dropped notification is never delivered late.
type Stream interface {
	Send(ctx context.Context, n *Notification) error
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id     string
	stream Stream
}

// Manager manages notification subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sendMu        sync.Mutex // Serializes broadcasts so each subscriber sees them in order
	sequenceNo    uint64
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
func (m *Manager) Subscribe(stream Stream) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{
		id:     id,
		stream: stream,
	}
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// Emit broadcasts a sequencer event. It implements sequencer.Emitter.
func (m *Manager) Emit(e sequencer.Event) {
	m.Broadcast(&Notification{Kind: KindSequencer, Event: e})
}

// Toast broadcasts a short user-facing message.
func (m *Manager) Toast(text string) {
	m.Broadcast(&Notification{Kind: KindToast, Toast: text})
}

// Broadcast stamps the notification with the next sequence number and sends
// it to all subscribers in parallel. A subscriber that does not accept it
// within sendTimeout misses it; one whose stream fails is unsubscribed.
func (m *Manager) Broadcast(notification *Notification) {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	m.sequenceNo++
	notification.SequenceNo = m.sequenceNo

	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()

			err := s.stream.Send(ctx, notification)
			switch {
			case err == nil:
			case errors.Is(err, context.DeadlineExceeded):
				zlog.Debug().Msgf("notification: dropped for slow subscriber: id=%s seq=%d", s.id, notification.SequenceNo)
			default:
				zlog.Debug().Msgf("notification: send failed, unsubscribing: id=%s err=%v", s.id, err)
				m.Unsubscribe(s.id)
			}
		}(sub)
	}
	wg.Wait()
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
