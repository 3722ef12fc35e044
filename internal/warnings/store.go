// Package warnings persists the per-employee warning counter.
//
// The counter is keyed by lower-cased employee identity. Read-modify-write
// is not atomic across processes: two sessions for the same employee can
// race. Deployments run one session per machine.
package warnings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxWarnings is the count at which an employee is blocked.
const MaxWarnings = 2

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

var (
	// ErrInvalidCount is returned by Set for counts outside [0, MaxWarnings].
	ErrInvalidCount = errors.New("warning count out of range")
	// ErrMalformed is returned by Get when the stored row cannot be used.
	// Callers treat the employee as having no warnings.
	ErrMalformed = errors.New("malformed warning record")
)

// Record is one stored row.
type Record struct {
	Employee string `json:"employee"`
	Warnings int    `json:"warnings"`
}

// Store is a durable employee → warning count mapping.
type Store interface {
	// Get returns the count for employee, 0 when absent.
	Get(employee string) (int, error)
	// Set overwrites the count for employee.
	Set(employee string, warnings int) error
	// List returns every stored row ordered by employee.
	List() ([]Record, error)
	Close() error
}

// Normalize returns the storage key for an employee identity.
func Normalize(employee string) string {
	return strings.ToLower(strings.TrimSpace(employee))
}

// storedCount maps a persisted count to the value callers see. Counts
// above MaxWarnings (older tools kept incrementing past the block) read as
// MaxWarnings so a blocked employee stays blocked; negatives are malformed.
func storedCount(n int) (int, bool) {
	if n < 0 {
		return 0, false
	}
	if n > MaxWarnings {
		return MaxWarnings, true
	}
	return n, true
}

func validCount(n int) error {
	if n < 0 || n > MaxWarnings {
		return fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	return nil
}

// Open returns a store for the named backend at path.
func Open(backend, path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("warnings: create directory: %w", err)
		}
	}
	switch backend {
	case BackendCSV, "":
		return NewCSVStore(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("warnings: unknown backend %q", backend)
	}
}
