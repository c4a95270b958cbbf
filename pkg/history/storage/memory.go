package storage

import (
	"context"
	"sort"
	"sync"

	"mosaic-hq/bento/pkg/history"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// It is intended for tests and development, not production.
type MemoryStorage struct {
	runs map[string]*history.Run
	mu   sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		runs: make(map[string]*history.Run),
	}
}

// Store persists a run record to memory.
func (s *MemoryStorage) Store(ctx context.Context, run *history.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCopy := *run
	s.runs[run.ID] = &runCopy

	return nil
}

// Query retrieves runs matching the query filters, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *history.Query) ([]*history.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*history.Run
	for _, run := range s.runs {
		if query.Matches(run) {
			runCopy := *run
			results = append(results, &runCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RecordedAt.After(results[j].RecordedAt)
	})

	start := query.Offset
	if start > len(results) {
		return []*history.Run{}, nil
	}
	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return results[start:end], nil
}

// Count returns the number of runs matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *history.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, run := range s.runs {
		if query.Matches(run) {
			count++
		}
	}

	return count, nil
}

// Delete removes runs matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *history.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, run := range s.runs {
		if query.Matches(run) {
			delete(s.runs, id)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases resources. It is a no-op for memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}
