package state

import (
	"context"
	"errors"
)

// Counter reports how many conversations are currently open per state name.
type Counter interface {
	CountByState(ctx context.Context) (map[string]int, error)
}

// CountByState iterates the in-memory conversations.
func (s *MemoryStorage) CountByState(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, conv := range s.conversations {
		counts[string(conv.Current)]++
	}

	return counts, nil
}

// CountByState scans the conversation keyspace. The scan is incremental so
// large deployments do not block Redis.
func (s *RedisStorage) CountByState(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)

	var cursor uint64
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, convScanPattern, cleanerScanBatchCount).Result()
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			userID, err := extractUserID(key)
			if err != nil {
				continue
			}

			conv, err := s.GetState(ctx, userID)
			if err != nil {
				if errors.Is(err, ErrStateNotFound) {
					continue
				}
				return nil, err
			}

			counts[string(conv.Current)]++
		}

		if nextCursor == 0 {
			return counts, nil
		}
		cursor = nextCursor
	}
}
