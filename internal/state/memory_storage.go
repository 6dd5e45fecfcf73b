package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps conversation states in process memory. Suitable for
// tests and single-instance deployments without Redis.
type MemoryStorage struct {
	mu            sync.RWMutex
	conversations map[int64]*Conversation
}

// NewMemoryStorage returns an empty in-memory Storage implementation.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{conversations: make(map[int64]*Conversation)}
}

// GetState returns the stored conversation or ErrStateNotFound when absent.
func (s *MemoryStorage) GetState(ctx context.Context, userID int64) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[userID]
	if !ok {
		return nil, ErrStateNotFound
	}

	copied := *conv
	return &copied, nil
}

// SetState saves a copy of the provided conversation.
func (s *MemoryStorage) SetState(ctx context.Context, userID int64, conv *Conversation) error {
	conv.UpdatedAt = time.Now().UTC()
	copied := *conv

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[userID] = &copied
	return nil
}

// ClearState removes the conversation for the given user.
func (s *MemoryStorage) ClearState(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, userID)
	return nil
}
