package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/trustwatch/internal/scoring"
)

// Tail returns the last n entries of the log at path, oldest first.
// Rows that cannot be parsed are skipped.
func Tail(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var entries []Entry
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("audit: read %s: %w", path, err)
		}
		e, ok := parseRecord(rec)
		if !ok {
			continue
		}
		entries = append(entries, e)
		if n > 0 && len(entries) > n {
			entries = entries[1:]
		}
	}
	return entries, nil
}

func parseRecord(rec []string) (Entry, bool) {
	if len(rec) < len(Header) {
		return Entry{}, false
	}
	ts, err := time.ParseInLocation(TimestampFormat, rec[0], time.Local)
	if err != nil {
		return Entry{}, false
	}
	ints := make([]int, 3)
	for i := range ints {
		v, err := strconv.Atoi(rec[2+i])
		if err != nil {
			return Entry{}, false
		}
		ints[i] = v
	}
	var reasons []string
	if rec[5] != "" {
		reasons = strings.Split(rec[5], scoring.ReasonSeparator)
	}
	return Entry{
		Timestamp: ts,
		Employee:  rec[1],
		Behavior:  ints[0],
		Email:     ints[1],
		Trust:     ints[2],
		Reasons:   reasons,
	}, true
}
