// Package detector tracks access times of sensitive files and reports
// every advance between polls.
package detector

import (
	"path/filepath"
	"time"
)

// Prober reads a file's last access time. ok is false when the path does
// not exist or cannot be inspected.
type Prober interface {
	LastAccess(path string) (atime time.Time, ok bool, err error)
}

// Event is one observed access of a watched file.
type Event struct {
	Path       string
	Name       string // base name, used in reason tags
	AccessedAt time.Time
	Previous   time.Time // zero when the file was absent at seed time
}

// Detector holds the per-session baseline. Not safe for concurrent use;
// a session polls it from a single goroutine.
type Detector struct {
	prober   Prober
	paths    []string
	baseline map[string]time.Time
}

// New builds a detector and seeds the baseline from the prober. Paths that
// do not exist start at the zero time.
func New(prober Prober, paths []string) *Detector {
	d := &Detector{
		prober:   prober,
		baseline: make(map[string]time.Time, len(paths)),
	}
	for _, p := range paths {
		if _, dup := d.baseline[p]; dup {
			continue
		}
		d.paths = append(d.paths, p)
		d.baseline[p] = time.Time{}
		if t, ok, err := prober.LastAccess(p); err == nil && ok {
			d.baseline[p] = t
		}
	}
	return d
}

// Paths returns the watched paths in configuration order.
func (d *Detector) Paths() []string {
	out := make([]string, len(d.paths))
	copy(out, d.paths)
	return out
}

// Baseline returns the last observed access time for path.
func (d *Detector) Baseline(path string) time.Time {
	return d.baseline[path]
}

// Poll checks every watched path once. An event is emitted when the
// access time moved past the baseline; the baseline is then set to the
// observed time whether or not an event fired. Missing or unreadable paths
// are skipped and keep their baseline.
func (d *Detector) Poll() []Event {
	var events []Event
	for _, p := range d.paths {
		t, ok, err := d.prober.LastAccess(p)
		if err != nil || !ok {
			continue
		}
		prev := d.baseline[p]
		if t.After(prev) {
			events = append(events, Event{
				Path:       p,
				Name:       filepath.Base(p),
				AccessedAt: t,
				Previous:   prev,
			})
		}
		d.baseline[p] = t
	}
	return events
}
