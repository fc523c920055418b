package review

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for review storage
type Store interface {
	// Insert stores a review, assigning ID and CreatedAt when unset, and
	// returns the stored record.
	Insert(ctx context.Context, rec Review) (Review, error)
	// ListAll returns all reviews ordered newest first. Repeated calls with
	// no intervening inserts return the same order.
	ListAll(ctx context.Context) ([]Review, error)
}

// InMemoryStore is an in-memory implementation of Store for local
// development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	reviews []Review
}

// NewInMemoryStore creates a new in-memory review store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Insert appends a review.
func (s *InMemoryStore) Insert(ctx context.Context, rec Review) (Review, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.reviews = append(s.reviews, rec)
	s.mu.Unlock()

	return rec, nil
}

// ListAll returns reviews newest first.
func (s *InMemoryStore) ListAll(ctx context.Context) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Review, 0, len(s.reviews))
	for i := len(s.reviews) - 1; i >= 0; i-- {
		out = append(out, s.reviews[i])
	}
	return out, nil
}
