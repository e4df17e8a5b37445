package tokencache

import (
	"context"
	"sync"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
	"github.com/ewilliams-labs/popularity/internal/core/ports"
)

// MemoryStore is a process-local TokenStore.
type MemoryStore struct {
	mu     sync.Mutex
	tokens *domain.TokenSet
	saves  int
}

var _ ports.TokenStore = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with initial, which may be nil.
func NewMemoryStore(initial *domain.TokenSet) *MemoryStore {
	s := &MemoryStore{}
	if initial != nil {
		t := *initial
		s.tokens = &t
	}
	return s
}

func (s *MemoryStore) Load(ctx context.Context) (*domain.TokenSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return nil, nil
	}
	t := *s.tokens
	return &t, nil
}

func (s *MemoryStore) Save(ctx context.Context, tokens domain.TokenSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = &tokens
	s.saves++
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
