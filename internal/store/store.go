// Package store is the boundary to the external table store. Tables are flat
// lists of named-column rows, read whole and replaced whole; there are no
// partial updates.
package store

import (
	"context"
	"errors"
)

var (
	// ErrStaleSnapshot means another writer replaced the table since this
	// snapshot was read. The caller re-reads and retries the edit.
	ErrStaleSnapshot = errors.New("snapshot version is stale")
	// ErrUnknownTable means the table name has no canonical column set
	// registered, so a read cannot synthesize an empty snapshot for it.
	ErrUnknownTable = errors.New("unknown table")
)

// Row is one sheet row, column name -> raw cell text. Cells are untyped here;
// the ledger coercion layer owns all parsing.
type Row map[string]string

// Snapshot is the full state of one table at a point in time. Version is the
// optimistic-concurrency token: writes carry the version observed at read
// time and are rejected when it no longer matches.
type Snapshot struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Version int64    `json:"version"`
}

// Clone deep-copies the snapshot so callers can mutate freely.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cp := &Snapshot{
		Table:   s.Table,
		Columns: append([]string(nil), s.Columns...),
		Rows:    make([]Row, 0, len(s.Rows)),
		Version: s.Version,
	}
	for _, r := range s.Rows {
		rr := make(Row, len(r))
		for k, v := range r {
			rr[k] = v
		}
		cp.Rows = append(cp.Rows, rr)
	}
	return cp
}

// Store reads and replaces whole tables.
//
// ReadTable returns the current state of the named table; a table that does
// not exist yet reads as an empty snapshot with the canonical columns, not as
// an error. WriteTable replaces the table wholesale and bumps the version;
// a stale snapshot version yields ErrStaleSnapshot and changes nothing.
type Store interface {
	ReadTable(ctx context.Context, name string) (*Snapshot, error)
	WriteTable(ctx context.Context, snap *Snapshot) error
}
