// Package store holds the client-side mirror of the backend's expense
// records. It is the only shared state in the process: the session
// coordinator writes it after a confirmed backend response, everything
// else reads snapshots.
package store

import (
	"sync"

	"outgo/internal/core"
)

// RecordStore is an ordered sequence of expense records keyed by id.
// Order is insertion order as received from the backend. Mutators
// return the new snapshot so callers recompute derived views from it
// explicitly; there is no hidden reactivity.
type RecordStore struct {
	mu    sync.Mutex
	items []core.Expense
	index map[string]int
}

func New() *RecordStore {
	return &RecordStore{index: make(map[string]int)}
}

// ReplaceAll swaps the full record set, as after a load from the
// backend.
func (s *RecordStore) ReplaceAll(records []core.Expense) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Expense(nil), records...)
	s.reindex()
	return s.snapshot()
}

// Upsert replaces the record with a matching id in place, or appends it
// when the id is new.
func (s *RecordStore) Upsert(record core.Expense) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[record.ID]; ok {
		s.items[i] = record
	} else {
		s.items = append(s.items, record)
		s.index[record.ID] = len(s.items) - 1
	}
	return s.snapshot()
}

// Remove deletes the record with the given id, preserving the order of
// the rest. Unknown ids are a no-op.
func (s *RecordStore) Remove(id string) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return s.snapshot()
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindex()
	return s.snapshot()
}

// All returns a copy of the current record sequence.
func (s *RecordStore) All() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Get returns the record with the given id.
func (s *RecordStore) Get(id string) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return core.Expense{}, false
	}
	return s.items[i], true
}

// Len returns the number of records.
func (s *RecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *RecordStore) snapshot() []core.Expense {
	return append([]core.Expense(nil), s.items...)
}

func (s *RecordStore) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, e := range s.items {
		s.index[e.ID] = i
	}
}
