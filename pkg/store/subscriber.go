package store

import "sync"

// Subscriber receives changes published by a Store.
type Subscriber interface {
	// Receive returns the change channel. It is closed when the subscriber
	// closes.
	Receive() <-chan Change
	// Close detaches the subscriber. It is idempotent.
	Close() error
}

type subscriber struct {
	mu     sync.RWMutex
	ch     chan Change
	quit   chan struct{}
	closed bool
	store  *Store
}

func newSubscriber(store *Store, bufferSize int) *subscriber {
	return &subscriber{
		ch:    make(chan Change, max(bufferSize, 1)),
		quit:  make(chan struct{}),
		store: store,
	}
}

func (s *subscriber) Receive() <-chan Change {
	return s.ch
}

func (s *subscriber) Close() error {
	if s.store != nil {
		s.store.unsubscribe(s)
	}
	s.close()
	return nil
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	close(s.quit)
}

func (s *subscriber) done() <-chan struct{} {
	return s.quit
}

// send delivers without blocking; a full buffer drops the change for this
// subscriber only.
func (s *subscriber) send(change Change) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- change:
		return true
	default:
		return false
	}
}
