package store

import (
	"sync"

	"github.com/go-scripts/extract/internal/types"
)

// Store deduplicates listing records across all workers for the lifetime of
// one run. First record seen for a property id wins.
type Store struct {
	records map[string]types.ListingRecord
	mu      sync.Mutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		records: make(map[string]types.ListingRecord),
	}
}

// TryAdd stores the record and returns true iff its property id has not been
// seen before in this run. The check and insert happen under one lock, so
// among concurrent calls with the same id exactly one succeeds.
func (s *Store) TryAdd(record types.ListingRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.records[record.PropertyID]; seen {
		return false
	}

	s.records[record.PropertyID] = record
	return true
}

// Seen reports whether a property id has been accepted.
func (s *Store) Seen(propertyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[propertyID]
	return ok
}

// Len returns the number of distinct records accepted so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
