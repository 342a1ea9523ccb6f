// Package signal provides a typed observer list.
//
// A Signal delivers each emitted value synchronously, on the emitting
// goroutine, to every connected slot in connection order. The slot list is
// snapshotted under a lock and the slots run outside it, so a slot may
// connect or disconnect other slots (including itself) while being called.
package signal

import "sync"

// Key identifies a connected slot.
type Key uint64

type slot[T any] struct {
	key Key
	fn  func(T)
}

// Signal is a list of callbacks invoked on Emit. The zero value is ready to use.
type Signal[T any] struct {
	mu    sync.Mutex
	next  Key
	slots []slot[T]
}

// Connect registers fn and returns a key that can be passed to Disconnect.
func (s *Signal[T]) Connect(fn func(T)) Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.slots = append(s.slots, slot[T]{key: s.next, fn: fn})

	return s.next
}

// Disconnect removes the slot registered under key.
// It reports whether the slot was connected.
func (s *Signal[T]) Disconnect(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sl := range s.slots {
		if sl.key == key {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)

			return true
		}
	}

	return false
}

// DisconnectAll removes every slot.
func (s *Signal[T]) DisconnectAll() {
	s.mu.Lock()
	s.slots = nil
	s.mu.Unlock()
}

// Emit calls every connected slot with v.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	slots := s.slots
	s.mu.Unlock()

	for _, sl := range slots {
		sl.fn(v)
	}
}

// Len returns the number of connected slots.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.slots)
}
