// Package config provides a generic, hot-reloadable configuration system.
// Settings come from a TOML, YAML or JSON file in the workspace, are
// overlaid with whatever the editor sends through
// workspace/didChangeConfiguration, and are reloaded when the file changes.
package config

import (
	"sync"
	"sync/atomic"
)

// Store holds the settings in effect. Reads are lock-free; a swap that
// changes the value is reported to every listener.
type Store[T any] struct {
	value atomic.Pointer[T]
	equal func(a, b *T) bool

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(old, next *T)
	order     []int
}

// StoreOption configures a Store.
type StoreOption[T any] func(*Store[T])

// WithEqual makes Swap skip listeners when the new value equals the old
// one. Without it every Swap notifies.
func WithEqual[T any](equal func(a, b *T) bool) StoreOption[T] {
	return func(s *Store[T]) { s.equal = equal }
}

// NewStore creates a store holding initial.
func NewStore[T any](initial *T, opts ...StoreOption[T]) *Store[T] {
	s := &Store[T]{listeners: make(map[int]func(old, next *T))}
	for _, o := range opts {
		o(s)
	}
	s.value.Store(initial)
	return s
}

// NewComparableStore creates a store that only notifies when the value
// changes under ==.
func NewComparableStore[T comparable](initial *T) *Store[T] {
	return NewStore(initial, WithEqual(func(a, b *T) bool { return *a == *b }))
}

// Get returns the value in effect.
func (s *Store[T]) Get() *T {
	return s.value.Load()
}

// Swap installs next and returns the previous value. Listeners run in
// registration order on the calling goroutine, unless the store has an
// equality function and it reports no change.
func (s *Store[T]) Swap(next *T) *T {
	old := s.value.Swap(next)
	if s.equal != nil && old != nil && next != nil && s.equal(old, next) {
		return old
	}

	s.mu.Lock()
	fns := make([]func(old, next *T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(old, next)
	}
	return old
}

// OnChange registers fn and returns a function that unregisters it.
func (s *Store[T]) OnChange(fn func(old, next *T)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}
