// Package notify holds the subscriber list shared by the observable
// components (catalog sources, the preference store, the style engine).
package notify

import "sync"

// Subscribers is a set of callbacks notified in registration order.
// The zero value is ready to use.
type Subscribers[T any] struct {
	mu      sync.Mutex
	nextID  int
	entries []entry[T]
}

type entry[T any] struct {
	id int
	fn func(T)
}

// Add registers fn and returns a func that removes it. Calling the
// returned func more than once is a no-op.
func (s *Subscribers[T]) Add(fn func(T)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, entry[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subscribers[T]) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.id == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return
		}
	}
}

// Notify calls every subscriber with v. Callbacks run on the caller's
// goroutine, outside the lock, so they may subscribe or unsubscribe.
func (s *Subscribers[T]) Notify(v T) {
	s.mu.Lock()
	fns := make([]func(T), len(s.entries))
	for i, e := range s.entries {
		fns[i] = e.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of subscribers
func (s *Subscribers[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
