package idempotency

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Execution statuses stored per key.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Record is the persisted outcome of one keyed execution.
type Record struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response,omitempty"`
}

// Store persists execution records and per-key locks.
type Store interface {
	Lock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, key string, record *Record, ttl time.Duration) error
	ReleaseLock(ctx context.Context, key string) error
}

// MemoryStore is an in-process Store for deployments without Redis. Records
// expire lazily on read; a Cleaner must sweep the rest, because update keys
// are unique and are essentially never read again.
type MemoryStore struct {
	mu      sync.Mutex
	locks   map[string]time.Time
	records map[string]memoryRecord
}

type memoryRecord struct {
	record    Record
	expiresAt time.Time
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:   make(map[string]time.Time),
		records: make(map[string]memoryRecord),
	}
}

func (s *MemoryStore) Lock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, held := s.locks[key]; held && time.Now().Before(deadline) {
		return false, nil
	}

	s.locks[key] = time.Now().Add(lockTTL)
	return true, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[key]
	if !ok {
		return nil, nil
	}

	if time.Now().After(stored.expiresAt) {
		delete(s.records, key)
		return nil, nil
	}

	copied := stored.record
	return &copied, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, record *Record, ttl time.Duration) error {
	if record == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = memoryRecord{
		record:    *record,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) ReleaseLock(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locks, key)
	return nil
}

// Cleanup evicts expired records and locks.
func (s *MemoryStore) Cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, stored := range s.records {
		if now.After(stored.expiresAt) {
			delete(s.records, key)
		}
	}

	for key, deadline := range s.locks {
		if now.After(deadline) {
			delete(s.locks, key)
		}
	}
}
