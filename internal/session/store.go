package session

import (
	"context"
	"sync"
	"time"
)

// Record is what the session store keeps per signed-in session.
type Record struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists session records and one-time OAuth state nonces.
type Store interface {
	Put(ctx context.Context, rec Record, ttl time.Duration) error
	Get(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	PutState(ctx context.Context, state string, ttl time.Duration) error
	// ConsumeState removes state and reports whether it was present.
	ConsumeState(ctx context.Context, state string) (bool, error)
}

type expiring[T any] struct {
	value T
	exp   time.Time
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]expiring[Record]
	states   map[string]time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		sessions: make(map[string]expiring[Record]),
		states:   make(map[string]time.Time),
	}
}

func (s *MemoryStore) Put(ctx context.Context, rec Record, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[rec.ID] = expiring[Record]{value: rec, exp: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.sessions[id]
	if !ok {
		return Record{}, ErrSessionNotFound
	}
	if s.now().After(item.exp) {
		delete(s.sessions, id)
		return Record{}, ErrSessionNotFound
	}
	return item.value, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) PutState(ctx context.Context, state string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.states[state] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ConsumeState(ctx context.Context, state string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	exp, ok := s.states[state]
	if ok {
		delete(s.states, state)
	}
	s.mu.Unlock()
	return ok && !s.now().After(exp), nil
}
