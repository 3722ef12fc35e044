package mail

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEML(t *testing.T, dir, name, body string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	raw := "From: x@example.com\r\nSubject: s\r\n\r\n" + body
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestSpoolRecentBodiesNewestFirst(t *testing.T) {
	inbox := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeEML(t, inbox, "a.eml", "oldest", base)
	writeEML(t, inbox, "b.eml", "middle", base.Add(time.Minute))
	writeEML(t, inbox, "c.eml", "newest", base.Add(2*time.Minute))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("ignored"), 0o600))

	s := NewSpool(inbox, t.TempDir(), "")
	bodies, err := s.RecentBodies(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "middle"}, bodies)
}

func TestSpoolSkipsUnparsable(t *testing.T) {
	inbox := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "bad.eml"), []byte("garbage without headers"), 0o600))
	writeEML(t, inbox, "good.eml", "fine", time.Now())

	bodies, err := NewSpool(inbox, "", "").RecentBodies(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"fine"}, bodies)
}

func TestSpoolMissingInboxIsError(t *testing.T) {
	_, err := NewSpool(filepath.Join(t.TempDir(), "nope"), "", "").RecentBodies(context.Background(), 5)
	assert.Error(t, err)
}

func TestSpoolSendWritesEML(t *testing.T) {
	outbox := filepath.Join(t.TempDir(), "outbox")
	s := NewSpool(t.TempDir(), outbox, "monitor@example.com")

	err := s.Send(context.Background(), Message{
		To:      "admin@example.com",
		Subject: "Warning: alice",
		Body:    "line one\nline two",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(outbox)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".eml"))

	raw, err := os.ReadFile(filepath.Join(outbox, entries[0].Name()))
	require.NoError(t, err)
	email, err := ParseEmail(raw)
	require.NoError(t, err)
	assert.Equal(t, "monitor@example.com", email.From)
	assert.Equal(t, "Warning: alice", email.Subject)
	assert.Equal(t, "line one\r\nline two", email.Body)
}

func TestSpoolDeliverFeedsRecentBodies(t *testing.T) {
	inbox := filepath.Join(t.TempDir(), "inbox")
	s := NewSpool(inbox, t.TempDir(), "")

	path, err := s.Deliver([]byte("From: hr@example.com\r\nSubject: hi\r\n\r\nyour otp is 1234"))
	require.NoError(t, err)
	assert.Equal(t, inbox, filepath.Dir(path))

	bodies, err := s.RecentBodies(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"your otp is 1234"}, bodies)
}

func TestSpoolDeliverRejectsGarbage(t *testing.T) {
	inbox := t.TempDir()
	s := NewSpool(inbox, t.TempDir(), "")

	_, err := s.Deliver([]byte("garbage without headers"))
	assert.Error(t, err)

	entries, err := os.ReadDir(inbox)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
