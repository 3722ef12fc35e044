package warnings

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var csvHeader = []string{"employee", "warnings"}

// CSVStore keeps warning counts in a two-column CSV file. Rewrites go
// through a temp file and rename so readers never see a partial table.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore returns a store backed by path. The file is created on the
// first Set.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string { return s.path }

// row is a raw table row; count is kept as text so unparsable values of
// other employees survive a rewrite untouched.
type row struct {
	employee string
	count    string
}

func (s *CSVStore) readRows() ([]row, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("warnings: read %s: %w", s.path, err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("warnings: parse %s: %w", s.path, err)
	}

	var rows []row
	for i, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), csvHeader[0]) {
			continue
		}
		rw := row{employee: Normalize(rec[0])}
		if len(rec) > 1 {
			rw.count = strings.TrimSpace(rec[1])
		}
		rows = append(rows, rw)
	}
	return rows, nil
}

// Get returns the stored count. A missing file or row yields 0. A count
// above MaxWarnings yields MaxWarnings. A row whose count is negative or not
// an integer yields 0 and ErrMalformed.
func (s *CSVStore) Get(employee string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	key := Normalize(employee)
	for _, rw := range rows {
		if rw.employee != key {
			continue
		}
		n, err := strconv.Atoi(rw.count)
		if err != nil {
			return 0, fmt.Errorf("%w: employee %q has warnings %q", ErrMalformed, key, rw.count)
		}
		n, ok := storedCount(n)
		if !ok {
			return 0, fmt.Errorf("%w: employee %q has warnings %q", ErrMalformed, key, rw.count)
		}
		return n, nil
	}
	return 0, nil
}

// Set rewrites the table with employee's count replaced or appended.
// Duplicate rows for the same employee collapse into one.
func (s *CSVStore) Set(employee string, warnings int) error {
	if err := validCount(warnings); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return err
	}

	key := Normalize(employee)
	value := strconv.Itoa(warnings)
	out := make([]row, 0, len(rows)+1)
	found := false
	for _, rw := range rows {
		if rw.employee == key {
			if found {
				continue
			}
			rw.count = value
			found = true
		}
		out = append(out, rw)
	}
	if !found {
		out = append(out, row{employee: key, count: value})
	}
	return s.writeAtomic(out)
}

// List returns all rows with a parsable count, sorted by employee.
func (s *CSVStore) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rw := range rows {
		n, err := strconv.Atoi(rw.count)
		if err != nil {
			continue
		}
		n, ok := storedCount(n)
		if !ok {
			continue
		}
		out = append(out, Record{Employee: rw.employee, Warnings: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Employee < out[j].Employee })
	return out, nil
}

// Close is a no-op; the file is opened per operation.
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) writeAtomic(rows []row) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, rw := range rows {
		if err := w.Write([]string{rw.employee, rw.count}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("warnings: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("warnings: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("warnings: replace %s: %w", s.path, err)
	}
	return nil
}
