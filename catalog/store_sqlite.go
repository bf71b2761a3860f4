package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteCatalogSchema = `
CREATE TABLE IF NOT EXISTS mof_records (
	position INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	formula TEXT NOT NULL,
	surface_area REAL NOT NULL
);`

// SQLiteStoreConfig configures the SQLite-backed catalog store.
type SQLiteStoreConfig struct {
	DSN string
}

// SQLiteStore reads MOF records from a SQLite database. A freshly created
// database is seeded with the built-in catalog so the search tool behaves the
// same regardless of backing store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite catalog store.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("catalog: sqlite store dsn is required")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("catalog: sqlite store open: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: sqlite store set WAL mode: %w", err)
	}

	if _, err := db.Exec(sqliteCatalogSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: sqlite store create schema: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.seedIfEmpty(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// List returns the records in catalog (insertion) order.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, formula, surface_area FROM mof_records ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("catalog: sqlite list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Name, &r.Formula, &r.SurfaceArea); err != nil {
			return nil, fmt.Errorf("catalog: sqlite scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: sqlite rows: %w", err)
	}
	return out, nil
}

// Upsert inserts or replaces one record.
func (s *SQLiteStore) Upsert(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO mof_records (name, formula, surface_area) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET formula = excluded.formula, surface_area = excluded.surface_area`,
		r.Name, r.Formula, r.SurfaceArea)
	if err != nil {
		return fmt.Errorf("catalog: sqlite upsert %q: %w", r.Name, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) seedIfEmpty() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM mof_records").Scan(&count); err != nil {
		return fmt.Errorf("catalog: sqlite count: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, r := range SeedRecords() {
		if _, err := s.db.Exec(
			"INSERT INTO mof_records (name, formula, surface_area) VALUES (?, ?, ?)",
			r.Name, r.Formula, r.SurfaceArea); err != nil {
			return fmt.Errorf("catalog: sqlite seed %q: %w", r.Name, err)
		}
	}
	return nil
}
