package store

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store with the same version semantics as PGStore.
// Handler tests use it in place of a live Postgres.
type MemStore struct {
	mu      sync.Mutex
	columns map[string][]string
	tables  map[string]*Snapshot

	// FailWrites makes every WriteTable return the given error, for
	// store-unavailable tests.
	FailWrites error
}

func NewMemStore(columns map[string][]string) *MemStore {
	return &MemStore{columns: columns, tables: map[string]*Snapshot{}}
}

func (s *MemStore) ReadTable(_ context.Context, name string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols, ok := s.columns[name]
	if !ok {
		return nil, ErrUnknownTable
	}
	if t, ok := s.tables[name]; ok {
		return t.Clone(), nil
	}
	return &Snapshot{Table: name, Columns: append([]string(nil), cols...)}, nil
}

func (s *MemStore) WriteTable(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites != nil {
		return s.FailWrites
	}
	if _, ok := s.columns[snap.Table]; !ok {
		return ErrUnknownTable
	}
	var current int64
	if t, ok := s.tables[snap.Table]; ok {
		current = t.Version
	}
	if current != snap.Version {
		return ErrStaleSnapshot
	}
	cp := snap.Clone()
	cp.Version = current + 1
	s.tables[snap.Table] = cp
	return nil
}
