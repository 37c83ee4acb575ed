package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps each table cell-faithful in Postgres: one row per sheet row,
// the cells as a jsonb map, plus a per-table version counter.
type PGStore struct {
	db *pgxpool.Pool
	// canonical column set per table name, used to synthesize empty reads
	columns map[string][]string
}

func NewPGStore(db *pgxpool.Pool, columns map[string][]string) *PGStore {
	return &PGStore{db: db, columns: columns}
}

// EnsureSchema creates the backing tables when they are missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_tables (
			name    TEXT PRIMARY KEY,
			version BIGINT NOT NULL DEFAULT 0
		)
	`); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_rows (
			table_name TEXT NOT NULL REFERENCES ledger_tables(name),
			row_idx    INT  NOT NULL,
			cells      JSONB NOT NULL,
			PRIMARY KEY (table_name, row_idx)
		)
	`)
	return err
}

func (s *PGStore) ReadTable(ctx context.Context, name string) (*Snapshot, error) {
	cols, ok := s.columns[name]
	if !ok {
		return nil, ErrUnknownTable
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snap := &Snapshot{Table: name, Columns: append([]string(nil), cols...)}

	err := s.db.QueryRow(ctx, `
		SELECT version FROM ledger_tables WHERE name=$1
	`, name).Scan(&snap.Version)
	if err == pgx.ErrNoRows {
		// table not created yet: empty snapshot with canonical columns
		return snap, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT cells FROM ledger_rows WHERE table_name=$1 ORDER BY row_idx
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var r Row
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		snap.Rows = append(snap.Rows, r)
	}
	return snap, rows.Err()
}

func (s *PGStore) WriteTable(ctx context.Context, snap *Snapshot) error {
	if _, ok := s.columns[snap.Table]; !ok {
		return ErrUnknownTable
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO ledger_tables (name, version) VALUES ($1, 0)
		ON CONFLICT (name) DO NOTHING
	`, snap.Table); err != nil {
		return err
	}

	var current int64
	if err := tx.QueryRow(ctx, `
		SELECT version FROM ledger_tables WHERE name=$1 FOR UPDATE
	`, snap.Table).Scan(&current); err != nil {
		return err
	}
	if current != snap.Version {
		return ErrStaleSnapshot
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM ledger_rows WHERE table_name=$1
	`, snap.Table); err != nil {
		return err
	}
	for i, r := range snap.Rows {
		cells, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO ledger_rows (table_name, row_idx, cells)
			VALUES ($1,$2,$3)
		`, snap.Table, i, cells); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE ledger_tables SET version = version + 1 WHERE name=$1
	`, snap.Table); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
