// Package audit appends one CSV row per monitoring cycle. The core never
// reads the log back; Tail exists for operators.
package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Log is an append-only CSV audit log.
type Log struct {
	path string
	file *os.File
	w    *csv.Writer
	mu   sync.Mutex
}

// Open opens (or creates) an audit log file for appending. A header row is
// written when the file is new or empty.
func Open(path string) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}

	needHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}

	l := &Log{path: path, file: file, w: csv.NewWriter(file)}
	if needHeader {
		if err := l.write(Header); err != nil {
			file.Close()
			return nil, err
		}
	}
	return l, nil
}

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Record appends entry. A zero Timestamp is set to now.
func (l *Log) Record(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write(entry.record())
}

func (l *Log) write(rec []string) error {
	if err := l.w.Write(rec); err != nil {
		return fmt.Errorf("audit: write entry: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("audit: write entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("audit: sync: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
