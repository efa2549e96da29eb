package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mohae/deepcopy"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("store: closed")

// ChangeKind distinguishes regular writes from reset writes.
type ChangeKind string

const (
	ChangeSet   ChangeKind = "set"
	ChangeReset ChangeKind = "reset"
)

// Change describes a single mutation.
type Change struct {
	Path string
	Old  any
	New  any
	Kind ChangeKind
}

// Option configures a Store.
type Option func(*Store)

// WithBufferSize sets the per-subscriber channel buffer. Values below one
// are raised to one.
func WithBufferSize(size int) Option {
	return func(s *Store) {
		s.bufferSize = max(size, 1)
	}
}

// Store is a mutex-guarded model with change notification. All methods are
// safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	values      map[string]any
	subscribers map[*subscriber]struct{}
	bufferSize  int
	closed      bool
}

// New seeds a store with a deep copy of values.
func New(values map[string]any, options ...Option) *Store {
	s := &Store{
		values:      cloneMap(values),
		subscribers: make(map[*subscriber]struct{}),
		bufferSize:  16,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Get resolves a dotted path. The returned value is a copy.
func (s *Store) Get(path string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := getPath(s.values, path)
	if !ok {
		return nil, false
	}
	return deepcopy.Copy(value), true
}

// Set writes value at path, creating intermediate containers as needed, and
// publishes a ChangeSet.
func (s *Store) Set(path string, value any) error {
	return s.write(path, value, ChangeSet)
}

// Reset writes value at path and publishes a ChangeReset. Watchers use the
// kind to skip validation for programmatic resets.
func (s *Store) Reset(path string, value any) error {
	return s.write(path, value, ChangeReset)
}

// Unset removes path and publishes a ChangeReset with a nil New value. Slice
// elements are set to nil rather than removed. Unsetting a missing path is a
// no-op.
func (s *Store) Unset(path string) error {
	if s == nil {
		return errors.New("store: store is nil")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("store: path is required")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	old, ok := deletePath(s.values, path)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	targets := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		targets = append(targets, sub)
	}
	s.mu.Unlock()

	change := Change{Path: path, Old: deepcopy.Copy(old), Kind: ChangeReset}
	for _, sub := range targets {
		sub.send(change)
	}
	return nil
}

// Values returns a deep copy of the whole model.
func (s *Store) Values() map[string]any {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMap(s.values)
}

func (s *Store) write(path string, value any, kind ChangeKind) error {
	if s == nil {
		return errors.New("store: store is nil")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("store: path is required")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	old, _ := getPath(s.values, path)
	old = deepcopy.Copy(old)
	stored := deepcopy.Copy(value)
	if err := setPath(s.values, path, stored); err != nil {
		s.mu.Unlock()
		return err
	}
	targets := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		targets = append(targets, sub)
	}
	s.mu.Unlock()

	change := Change{Path: path, Old: old, New: deepcopy.Copy(stored), Kind: kind}
	for _, sub := range targets {
		sub.send(change)
	}
	return nil
}

// Subscribe registers a subscriber that receives every subsequent change.
// Cancelling ctx closes the subscription. Subscribing to a closed store
// returns an already-closed subscriber.
func (s *Store) Subscribe(ctx context.Context) Subscriber {
	sub := newSubscriber(s, s.bufferSize)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.close()
		return sub
	}
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = sub.Close()
			case <-sub.done():
			}
		}()
	}
	return sub
}

// Close closes every subscriber and rejects further writes.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := s.subscribers
	s.subscribers = make(map[*subscriber]struct{})
	s.mu.Unlock()

	for sub := range subs {
		sub.close()
	}
	return nil
}

func (s *Store) unsubscribe(sub *subscriber) {
	s.mu.Lock()
	delete(s.subscribers, sub)
	s.mu.Unlock()
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return make(map[string]any)
	}
	out, ok := deepcopy.Copy(src).(map[string]any)
	if !ok || out == nil {
		return make(map[string]any)
	}
	return out
}
