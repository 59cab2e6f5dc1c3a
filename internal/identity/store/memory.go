package store

import (
	"context"
	"sync"

	"mintgate/internal/identity/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// InMemoryStore keeps participant records in a map guarded by a mutex.
// Suitable for tests and single-node runs; use PostgresStore for durability.
type InMemoryStore struct {
	mu           sync.RWMutex
	participants map[domain.Address]*models.Participant
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		participants: make(map[domain.Address]*models.Participant),
	}
}

// Create inserts a new participant record.
// Returns sentinel.ErrConflict when the address is already registered.
func (s *InMemoryStore) Create(_ context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[p.Address]; exists {
		return sentinel.ErrConflict
	}
	s.participants[p.Address] = p.Clone()
	return nil
}

// Get returns the participant for an address.
// Returns sentinel.ErrNotFound when the address is unknown.
func (s *InMemoryStore) Get(_ context.Context, address domain.Address) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.participants[address]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// Execute runs validate-then-mutate atomically: the lock is held across both
// callbacks so no other operation can observe or interleave a half-applied
// change.
func (s *InMemoryStore) Execute(
	_ context.Context,
	address domain.Address,
	validate func(*models.Participant) error,
	apply func(*models.Participant),
) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.participants[address]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	apply(p)
	return p.Clone(), nil
}

// List returns all registered participants.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p.Clone())
	}
	return out, nil
}
