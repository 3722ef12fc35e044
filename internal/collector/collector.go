// Package collector provides the signal probes a monitoring session polls
// each cycle: presence, file access, login identity and the clock.
package collector

import (
	"context"
	"time"
)

// PresenceProbe reports how many faces are currently visible.
type PresenceProbe interface {
	FaceCount(ctx context.Context) (int, error)
}

// FileProbe reports the last access time of a path. ok is false when the
// path does not exist.
type FileProbe interface {
	LastAccess(path string) (t time.Time, ok bool, err error)
}

// IdentityProbe reports the login name of the current OS user.
type IdentityProbe interface {
	CurrentUser() (string, error)
}

// Clock returns the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
