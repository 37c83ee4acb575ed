package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = map[string][]string{"orders": {"Order ID", "Name"}}

func TestReadTable_AbsentTableIsEmptyNotError(t *testing.T) {
	s := NewMemStore(testColumns)
	snap, err := s.ReadTable(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order ID", "Name"}, snap.Columns)
	assert.Empty(t, snap.Rows)
	assert.Equal(t, int64(0), snap.Version)
}

func TestReadTable_UnknownTable(t *testing.T) {
	s := NewMemStore(testColumns)
	_, err := s.ReadTable(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestWriteTable_VersionBumpsOnEachWrite(t *testing.T) {
	s := NewMemStore(testColumns)
	ctx := context.Background()

	snap, err := s.ReadTable(ctx, "orders")
	require.NoError(t, err)
	snap.Rows = []Row{{"Order ID": "a", "Name": "Abel"}}
	require.NoError(t, s.WriteTable(ctx, snap))

	snap, err = s.ReadTable(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "Abel", snap.Rows[0]["Name"])
}

func TestWriteTable_StaleVersionRejected(t *testing.T) {
	s := NewMemStore(testColumns)
	ctx := context.Background()

	first, _ := s.ReadTable(ctx, "orders")
	second := first.Clone()

	require.NoError(t, s.WriteTable(ctx, first))
	// second writer still holds version 0: last write must NOT win
	err := s.WriteTable(ctx, second)
	assert.ErrorIs(t, err, ErrStaleSnapshot)

	snap, _ := s.ReadTable(ctx, "orders")
	assert.Equal(t, int64(1), snap.Version, "stale write must not bump the version")
}

func TestWriteTable_FailureLeavesStateUntouched(t *testing.T) {
	s := NewMemStore(testColumns)
	ctx := context.Background()

	snap, _ := s.ReadTable(ctx, "orders")
	snap.Rows = []Row{{"Order ID": "a"}}
	require.NoError(t, s.WriteTable(ctx, snap))

	s.FailWrites = errors.New("store offline")
	next, _ := s.ReadTable(ctx, "orders")
	next.Rows = append(next.Rows, Row{"Order ID": "b"})
	require.Error(t, s.WriteTable(ctx, next))

	after, _ := s.ReadTable(ctx, "orders")
	assert.Len(t, after.Rows, 1)
	assert.Equal(t, int64(1), after.Version)
}

func TestClone_IsDeep(t *testing.T) {
	orig := &Snapshot{Table: "orders", Columns: []string{"A"}, Rows: []Row{{"A": "1"}}}
	cp := orig.Clone()
	cp.Rows[0]["A"] = "2"
	cp.Columns[0] = "B"
	assert.Equal(t, "1", orig.Rows[0]["A"])
	assert.Equal(t, "A", orig.Columns[0])
}
