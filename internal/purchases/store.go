// Package purchases implements the simulated course purchase flow and the
// learning dashboard built on top of it.
package purchases

import (
	"context"
	"sync"
)

// Store is the ephemeral key-value boundary for purchase and login state. It
// survives reloads within a client context and is cleared on logout; nothing
// else in the engine reads or writes it.
type Store interface {
	PurchasedCourses(ctx context.Context, userID string) ([]string, error)
	AddPurchase(ctx context.Context, userID, courseID string) error
	SetLoggedIn(ctx context.Context, userID string, loggedIn bool) error
	IsLoggedIn(ctx context.Context, userID string) (bool, error)
	// ClearUser removes everything stored for the user (logout).
	ClearUser(ctx context.Context, userID string) error
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu        sync.RWMutex
	purchases map[string][]string
	loggedIn  map[string]bool
}

// NewMemoryStore creates a new in-memory purchase store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		purchases: make(map[string][]string),
		loggedIn:  make(map[string]bool),
	}
}

func (s *MemoryStore) PurchasedCourses(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.purchases[userID]...), nil
}

func (s *MemoryStore) AddPurchase(_ context.Context, userID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.purchases[userID] {
		if id == courseID {
			return nil
		}
	}
	s.purchases[userID] = append(s.purchases[userID], courseID)
	return nil
}

func (s *MemoryStore) SetLoggedIn(_ context.Context, userID string, loggedIn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn[userID] = loggedIn
	return nil
}

func (s *MemoryStore) IsLoggedIn(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn[userID], nil
}

func (s *MemoryStore) ClearUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.purchases, userID)
	delete(s.loggedIn, userID)
	return nil
}
