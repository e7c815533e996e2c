package shop

import (
	"context"
	"slices"
	"sync"
)

// Repository persists each shopper's cart lines in insertion order.
type Repository interface {
	Load(ctx context.Context, userID string) ([]Line, error)
	Save(ctx context.Context, userID string, lines []Line) error
}

// MemoryRepository keeps carts in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string][]Line
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: map[string][]Line{}}
}

func (r *MemoryRepository) Load(_ context.Context, userID string) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.carts[userID]), nil
}

func (r *MemoryRepository) Save(_ context.Context, userID string, lines []Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(lines) == 0 {
		delete(r.carts, userID)
		return nil
	}
	r.carts[userID] = slices.Clone(lines)
	return nil
}
