package event

import (
	"sync"

	"github.com/trexis-racing/roster/pkg/safe"
)

/**
 * @file: subject.go
 * @description: value holder that replays its current value to new subscribers
 */

// Handler receives every value published after (and including) subscription.
type Handler[T any] func(value T)

// Subject holds a current value and broadcasts changes to subscribers.
// Handlers run synchronously on the publishing goroutine, in subscription order.
// A panicking handler is logged and does not stop the others.
type Subject[T any] struct {
	mu       sync.RWMutex
	value    T
	version  uint64
	nextId   int
	handlers map[int]Handler[T]
	order    []int
}

func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{
		value:    initial,
		handlers: make(map[int]Handler[T]),
	}
}

// Value returns the most recently published value.
func (s *Subject[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Next stores value then notifies subscribers. When a handler publishes a
// newer value, the remaining handlers of this round are skipped since the
// nested round already delivered the newer value to them.
func (s *Subject[T]) Next(value T) {
	s.mu.Lock()
	s.value = value
	s.version++
	version := s.version
	handlers := s.snapshot()
	s.mu.Unlock()

	for _, h := range handlers {
		if s.stale(version) {
			return
		}
		safe.Do("subject handler", func() { h(value) })
	}
}

func (s *Subject[T]) stale(version uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version != version
}

// Subscribe registers h, immediately replays the current value to it and
// returns a function that removes the subscription.
func (s *Subject[T]) Subscribe(h Handler[T]) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextId
	s.nextId++
	s.handlers[id] = h
	s.order = append(s.order, id)
	current := s.value
	s.mu.Unlock()

	safe.Do("subject handler", func() { h(current) })

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.handlers, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Subject[T]) snapshot() []Handler[T] {
	handlers := make([]Handler[T], 0, len(s.order))
	for _, id := range s.order {
		handlers = append(handlers, s.handlers[id])
	}
	return handlers
}
