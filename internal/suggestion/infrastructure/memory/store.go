package memory

import (
	"context"
	"sync"

	suggestion "chargemap/internal/suggestion/domain"
)

// Store keeps suggestions in process memory.
type Store struct {
	mu    sync.Mutex
	items []suggestion.Suggestion
}

// NewStore constructs a Store seeded with items.
func NewStore(items ...suggestion.Suggestion) *Store {
	return &Store{items: clone(items)}
}

// Load returns a copy of the stored list.
func (s *Store) Load(ctx context.Context) ([]suggestion.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items), nil
}

// Save replaces the stored list.
func (s *Store) Save(ctx context.Context, items []suggestion.Suggestion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = clone(items)
	return nil
}

func clone(items []suggestion.Suggestion) []suggestion.Suggestion {
	out := make([]suggestion.Suggestion, len(items))
	copy(out, items)
	return out
}
