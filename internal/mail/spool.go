package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Spool reads incoming mail from a directory of .eml files and writes
// outgoing mail as .eml files into an outbox. It lets a station run without
// Gmail, with a local MTA or a test harness filling the inbox.
type Spool struct {
	Inbox  string
	Outbox string
	From   string
	now    func() time.Time
}

// NewSpool returns a spool over the given directories.
func NewSpool(inbox, outbox, from string) *Spool {
	return &Spool{Inbox: inbox, Outbox: outbox, From: from, now: time.Now}
}

// RecentBodies returns the bodies of the newest max .eml files, newest
// first. Files that fail to parse are skipped; an unreadable inbox is an
// error.
func (s *Spool) RecentBodies(ctx context.Context, max int) ([]string, error) {
	entries, err := os.ReadDir(s.Inbox)
	if err != nil {
		return nil, fmt.Errorf("mail: read spool inbox: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var files []candidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".eml") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{path: filepath.Join(s.Inbox, e.Name()), mod: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod.Equal(files[j].mod) {
			return files[i].path > files[j].path
		}
		return files[i].mod.After(files[j].mod)
	})
	if max > 0 && len(files) > max {
		files = files[:max]
	}

	bodies := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(f.path)
		if err != nil {
			continue
		}
		email, err := ParseEmail(raw)
		if err != nil {
			continue
		}
		bodies = append(bodies, email.Body)
	}
	return bodies, nil
}

// Send writes msg into the outbox as <unix-nanos>-<uuid>.eml.
func (s *Spool) Send(ctx context.Context, msg Message) error {
	now := s.now()
	_, err := writeSpoolFile(s.Outbox, now, msg.RFC822(s.From, now))
	return err
}

// Deliver drops a raw incoming message into the inbox. Messages that do
// not parse are rejected so the monitor never reads them.
func (s *Spool) Deliver(raw []byte) (string, error) {
	if len(raw) > MaxDeliverySize {
		return "", fmt.Errorf("mail: message is %d bytes, limit %d", len(raw), MaxDeliverySize)
	}
	if _, err := ParseEmail(raw); err != nil {
		return "", fmt.Errorf("mail: reject delivery: %w", err)
	}
	return writeSpoolFile(s.Inbox, s.now(), raw)
}

// MaxDeliverySize bounds messages accepted by Deliver.
const MaxDeliverySize = 25 << 20

func writeSpoolFile(dir string, now time.Time, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("mail: create spool dir: %w", err)
	}
	name := fmt.Sprintf("%d-%s.eml", now.UnixNano(), uuid.NewString())
	path := filepath.Join(dir, name)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", fmt.Errorf("mail: write spool message: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("mail: publish spool message: %w", err)
	}
	return path, nil
}
