package ledger

import (
	"context"
	"sync"
)

// DraftStore persists exactly one active draft per user. Load always yields
// a usable draft: unknown users get a fresh empty one. The store performs no
// cross-call locking of its own; the conversation layer serializes events
// per user.
type DraftStore interface {
	// Load returns the user's draft, or an empty draft when none is stored.
	Load(ctx context.Context, userID int64) (*Draft, error)
	// Save stores the provided draft for the user.
	Save(ctx context.Context, userID int64, draft *Draft) error
	// Clear removes the user's draft.
	Clear(ctx context.Context, userID int64) error
}

// MemoryStore is an in-process DraftStore used in tests and single-instance
// deployments without Redis.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[int64]*Draft
}

// NewMemoryStore returns an empty in-memory draft store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[int64]*Draft)}
}

// Load returns a copy of the stored draft so callers cannot mutate shared state.
func (s *MemoryStore) Load(ctx context.Context, userID int64) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.drafts[userID]
	if !ok {
		return NewDraft(), nil
	}

	copied := *stored
	return &copied, nil
}

// Save stores a copy of the draft for the user.
func (s *MemoryStore) Save(ctx context.Context, userID int64, draft *Draft) error {
	if draft == nil {
		draft = NewDraft()
	}

	copied := *draft

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = &copied
	return nil
}

// Clear removes the user's draft.
func (s *MemoryStore) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, userID)
	return nil
}
