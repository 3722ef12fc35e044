package scoring

import (
	"fmt"
	"time"
)

// Window is a daily office-hours window [Start, End) expressed as offsets
// from local midnight. Start after End wraps midnight; Start == End covers
// the whole day.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// ParseWindow parses two "15:04" (or "15:04:05") clock strings.
func ParseWindow(start, end string) (Window, error) {
	s, err := parseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("office hours start: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("office hours end: %w", err)
	}
	return Window{Start: s, End: e}, nil
}

// ParseAt resolves an evaluation time: empty means now, RFC3339 is taken
// as is, and a clock time ("15:04" or "15:04:05") means that time today in
// now's location.
func ParseAt(v string, now time.Time) (time.Time, error) {
	if v == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	tod, err := parseClock(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want RFC3339 or HH:MM)", v)
	}
	h, m, sec := int(tod/time.Hour), int(tod%time.Hour/time.Minute), int(tod%time.Minute/time.Second)
	return time.Date(now.Year(), now.Month(), now.Day(), h, m, sec, 0, now.Location()), nil
}

func parseClock(v string) (time.Duration, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid clock time %q (want HH:MM)", v)
}

// Contains reports whether t's local time of day falls inside the window.
func (w Window) Contains(t time.Time) bool {
	tod := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())

	switch {
	case w.Start == w.End:
		return true
	case w.Start < w.End:
		return tod >= w.Start && tod < w.End
	default:
		return tod >= w.Start || tod < w.End
	}
}

func (w Window) String() string {
	return fmt.Sprintf("%s-%s", clockString(w.Start), clockString(w.End))
}

func clockString(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%02d:%02d", h, m)
}
