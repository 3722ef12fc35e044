package warnings

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS warnings (
	employee   TEXT PRIMARY KEY,
	warnings   INTEGER NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps warning counts in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("warnings: open sqlite: %w", err)
	}
	// One writer; the pure-Go driver serializes anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("warnings: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the stored count, 0 when the employee has no row.
func (s *SQLiteStore) Get(employee string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT warnings FROM warnings WHERE employee = ?`, Normalize(employee)).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	stored, ok := storedCount(n)
	if !ok {
		return 0, fmt.Errorf("%w: employee %q has warnings %d", ErrMalformed, Normalize(employee), n)
	}
	return stored, nil
}

// Set upserts the count for employee.
func (s *SQLiteStore) Set(employee string, warnings int) error {
	if err := validCount(warnings); err != nil {
		return err
	}
	_, err := s.db.Exec(`
INSERT INTO warnings (employee, warnings, updated_at) VALUES (?, ?, ?)
ON CONFLICT(employee) DO UPDATE SET warnings = excluded.warnings, updated_at = excluded.updated_at`,
		Normalize(employee), warnings, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("warnings: upsert: %w", err)
	}
	return nil
}

// List returns every row ordered by employee.
func (s *SQLiteStore) List() ([]Record, error) {
	rows, err := s.db.Query(`SELECT employee, warnings FROM warnings ORDER BY employee`)
	if err != nil {
		return nil, fmt.Errorf("warnings: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Employee, &r.Warnings); err != nil {
			return nil, fmt.Errorf("warnings: scan: %w", err)
		}
		n, ok := storedCount(r.Warnings)
		if !ok {
			continue
		}
		r.Warnings = n
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
