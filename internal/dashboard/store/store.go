package store

import (
	"sync"

	"resa/internal/dashboard"
)

// Store is the authoritative in-memory collection of reservation records
// backing the dashboard. It keeps insertion order with the newest record
// at the head and guarantees at most one record per id.
type Store struct {
	mu      sync.RWMutex
	order   []string
	records map[string]dashboard.Reservation
}

func New() *Store {
	return &Store{
		records: make(map[string]dashboard.Reservation),
	}
}

// ReplaceAll swaps the entire collection for the given records, keeping
// their order. Duplicate ids keep the first occurrence.
func (s *Store) ReplaceAll(records []dashboard.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = s.order[:0]
	s.records = make(map[string]dashboard.Reservation, len(records))

	for _, r := range records {
		if _, ok := s.records[r.ID]; ok {
			continue
		}

		s.order = append(s.order, r.ID)
		s.records[r.ID] = r
	}
}

// Upsert inserts the record at the head when its id is new, or replaces
// the stored record in place when it is already present. It reports
// whether the id existed before the call.
func (s *Store) Upsert(r dashboard.Reservation) (existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.ID]; ok {
		s.records[r.ID] = r
		return true
	}

	s.order = append([]string{r.ID}, s.order...)
	s.records[r.ID] = r

	return false
}

// Remove deletes the record with the given id, reporting whether it was
// present. Removing an absent id is a no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return false
	}

	delete(s.records, id)
	for i, stored := range s.order {
		if stored == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return true
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (dashboard.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	return r, ok
}

// Snapshot returns a copy of the collection in store order. Callers may
// mutate the returned slice freely.
func (s *Store) Snapshot() []dashboard.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]dashboard.Reservation, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.records[id])
	}

	return snapshot
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}
