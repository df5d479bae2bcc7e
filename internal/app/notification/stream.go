package notification

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrStreamClosed is returned by Send after Close.
var ErrStreamClosed = errors.New("stream closed")

// ChanStream is a Stream backed by a buffered channel.
type ChanStream struct {
	ch     chan *Notification
	once   sync.Once
	closed chan struct{}
}

// NewChanStream creates a stream buffering up to size notifications.
func NewChanStream(size int) *ChanStream {
	return &ChanStream{
		ch:     make(chan *Notification, size),
		closed: make(chan struct{}),
	}
}

// Send queues n, blocking while the buffer is full or until ctx is done.
func (s *ChanStream) Send(ctx context.Context, n *Notification) error {
	select {
	case <-s.closed:
		return ErrStreamClosed
	default:
	}
	select {
	case s.ch <- n:
		return nil
	case <-s.closed:
		return ErrStreamClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// C returns the receive side of the stream.
func (s *ChanStream) C() <-chan *Notification {
	return s.ch
}

// Close stops accepting notifications. Queued ones stay readable.
func (s *ChanStream) Close() {
	s.once.Do(func() {
		close(s.closed)
	})
}
