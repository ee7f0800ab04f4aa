// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refdata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/seqatlas/pkg/types"
)

const dbFile = "reference.db"

// Store persists reference-collection snapshots in a local SQLite database
// so repeated runs skip the download while the snapshot is fresh.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// NewStore opens or creates the snapshot database at dir/reference.db and
// creates the schema if it does not exist. ttl bounds snapshot freshness;
// Load reports anything older as not fresh.
func NewStore(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}

	s := &Store{db: db, ttl: ttl}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			accession TEXT PRIMARY KEY,
			x REAL NOT NULL,
			y REAL NOT NULL,
			country TEXT,
			year INTEGER,
			host TEXT,
			lineage TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			fetched_at TEXT NOT NULL,
			entry_count INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored snapshot with entries in one transaction.
// Readers either see the previous snapshot or the new one, never a mix.
func (s *Store) Save(ctx context.Context, entries []types.ReferenceEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing old snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO entries (accession, x, y, country, year, host, lineage)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.Accession, e.Coordinates.X, e.Coordinates.Y,
			e.Metadata.Country, e.Metadata.Year, e.Metadata.Host, e.Metadata.Lineage,
		)
		if err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.Accession, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, fetched_at, entry_count) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET fetched_at=excluded.fetched_at, entry_count=excluded.entry_count`,
		time.Now().UTC().Format(time.RFC3339Nano), len(entries),
	)
	if err != nil {
		return fmt.Errorf("updating snapshot metadata: %w", err)
	}

	return tx.Commit()
}

// Load returns the stored snapshot and whether it is still within the
// freshness window. A missing or expired snapshot returns fresh=false with
// no error; only real database failures return an error.
func (s *Store) Load(ctx context.Context) ([]types.ReferenceEntry, bool, error) {
	var fetchedAtStr string
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, entry_count FROM snapshot_meta WHERE id = 1`,
	).Scan(&fetchedAtStr, &count)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading snapshot metadata: %w", err)
	}

	fetchedAt, err := time.Parse(time.RFC3339Nano, fetchedAtStr)
	if err != nil {
		return nil, false, fmt.Errorf("parsing snapshot timestamp: %w", err)
	}
	if s.ttl > 0 && time.Since(fetchedAt) > s.ttl {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT accession, x, y, country, year, host, lineage FROM entries ORDER BY accession`)
	if err != nil {
		return nil, false, fmt.Errorf("reading snapshot entries: %w", err)
	}
	defer rows.Close()

	entries := make([]types.ReferenceEntry, 0, count)
	for rows.Next() {
		var e types.ReferenceEntry
		err := rows.Scan(&e.Accession, &e.Coordinates.X, &e.Coordinates.Y,
			&e.Metadata.Country, &e.Metadata.Year, &e.Metadata.Host, &e.Metadata.Lineage)
		if err != nil {
			return nil, false, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, true, nil
}
