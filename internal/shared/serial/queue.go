// Package serial runs mutations one at a time per key, in issue order.
package serial

import (
	"context"
	"sync"
)

// Queue serializes work per key. Work on different keys runs concurrently.
// Callers waiting on the same key are released first-in first-out, in the
// order they called Do.
type Queue struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	waiters []chan struct{}
}

// New constructs an empty Queue.
func New() *Queue {
	return &Queue{slots: make(map[string]*slot)}
}

// Do runs fn once every earlier Do for key has finished. It returns ctx.Err()
// without running fn if ctx ends while waiting.
func (q *Queue) Do(ctx context.Context, key string, fn func() error) error {
	q.mu.Lock()
	s, busy := q.slots[key]
	if !busy {
		q.slots[key] = &slot{}
		q.mu.Unlock()
	} else {
		turn := make(chan struct{})
		s.waiters = append(s.waiters, turn)
		q.mu.Unlock()

		select {
		case <-turn:
		case <-ctx.Done():
			if q.withdraw(key, turn) {
				return ctx.Err()
			}
			// The turn was handed over while we were giving up; pass it on.
			q.release(key)
			return ctx.Err()
		}
	}
	defer q.release(key)

	return fn()
}

// Pending reports how many calls are running or waiting on key.
func (q *Queue) Pending(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if s, ok := q.slots[key]; ok {
		return 1 + len(s.waiters)
	}
	return 0
}

func (q *Queue) release(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.slots[key]
	if s == nil {
		return
	}
	if len(s.waiters) == 0 {
		delete(q.slots, key)
		return
	}
	next := s.waiters[0]
	s.waiters = s.waiters[1:]
	close(next)
}

// withdraw removes turn from the wait list. It reports false when turn was
// already handed over.
func (q *Queue) withdraw(key string, turn chan struct{}) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.slots[key]
	if s == nil {
		return false
	}
	for i, w := range s.waiters {
		if w == turn {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return true
		}
	}
	return false
}
