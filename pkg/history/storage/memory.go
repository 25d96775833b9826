package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"mercator-hq/texsolve/pkg/history"
)

// MemoryStorage implements history.Storage with an in-memory map.
// Records are lost when the process exits.
type MemoryStorage struct {
	records map[string]*history.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*history.Record),
	}
}

// Backend returns the backend name.
func (s *MemoryStorage) Backend() string {
	return "memory"
}

// Store persists a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return history.NewStorageError("memory", "store", errDuplicateID(record.ID))
	}
	recordCopy := *record
	s.records[record.ID] = &recordCopy
	return nil
}

// Get returns a copy of the record with the given ID.
func (s *MemoryStorage) Get(ctx context.Context, id string) (*history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, history.ErrNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

// Query retrieves records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *history.Query) ([]*history.Record, error) {
	s.mu.RLock()
	results := []*history.Record{}
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}
	s.mu.RUnlock()

	sortRecords(results, query.SortBy, query.SortOrder)

	start := query.Offset
	if start > len(results) {
		return []*history.Record{}, nil
	}
	results = results[start:]
	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}
	return results, nil
}

// Count returns the number of records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *history.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *history.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*history.Record)
	return nil
}

// Size returns the number of stored records.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func matchesQuery(record *history.Record, query *history.Query) bool {
	if query.StartTime != nil && record.CreatedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.CreatedAt.After(*query.EndTime) {
		return false
	}
	if len(query.IDs) > 0 {
		found := false
		for _, id := range query.IDs {
			if id == record.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if query.Status != "" && record.Status != query.Status {
		return false
	}
	if query.ErrorType != "" && record.ErrorType != query.ErrorType {
		return false
	}
	if query.Origin != "" && record.Origin != query.Origin {
		return false
	}
	if query.InputHash != "" && record.InputHash != query.InputHash {
		return false
	}
	return true
}

// sortRecords orders records the same way the SQL backends do: by the sort
// column, then by ID, descending unless order is "asc".
func sortRecords(records []*history.Record, by, order string) {
	asc := strings.EqualFold(order, "asc")
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		var less, equal bool
		if by == "duration" {
			less, equal = a.Duration < b.Duration, a.Duration == b.Duration
		} else {
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if equal {
			less = a.ID < b.ID
			if a.ID == b.ID {
				return false
			}
		}
		if asc {
			return less
		}
		return !less
	})
}
