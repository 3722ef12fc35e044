package escalation

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/trustwatch/internal/warnings"
)

type memStore struct {
	counts map[string]int
	getErr error
	setErr error
	sets   int
}

func newMemStore() *memStore { return &memStore{counts: map[string]int{}} }

func (s *memStore) Get(employee string) (int, error) {
	if s.getErr != nil {
		return 0, s.getErr
	}
	return s.counts[strings.ToLower(employee)], nil
}

func (s *memStore) Set(employee string, n int) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.counts[strings.ToLower(employee)] = n
	return nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFirstTriggerWarns(t *testing.T) {
	store := newMemStore()
	m := NewMachine("alice", store, quietLogger())
	require.Equal(t, Clean, m.State())

	tr, err := m.Evaluate(true)
	require.NoError(t, err)

	assert.Equal(t, ActionWarn, tr.Action)
	assert.Equal(t, Warned, tr.To)
	assert.Equal(t, 1, tr.Warnings)
	assert.False(t, tr.Terminate)
	assert.Equal(t, 1, store.counts["alice"])
}

func TestSecondTriggerBlocksAndTerminates(t *testing.T) {
	store := newMemStore()
	store.counts["alice"] = 1
	m := NewMachine("Alice", store, quietLogger())
	require.Equal(t, Warned, m.State())

	tr, err := m.Evaluate(true)
	require.NoError(t, err)

	assert.Equal(t, ActionBlock, tr.Action)
	assert.Equal(t, Blocked, tr.To)
	assert.Equal(t, 2, tr.Warnings)
	assert.True(t, tr.Terminate)
	assert.Equal(t, 2, store.counts["alice"])
}

func TestNoTriggerNoChange(t *testing.T) {
	store := newMemStore()
	m := NewMachine("alice", store, quietLogger())

	tr, err := m.Evaluate(false)
	require.NoError(t, err)

	assert.Equal(t, ActionNone, tr.Action)
	assert.False(t, tr.Changed())
	assert.Zero(t, store.sets)
}

func TestTransitionsAreMonotone(t *testing.T) {
	m := NewMachine("alice", newMemStore(), quietLogger())

	var seen []State
	for _, trig := range []bool{false, true, false, false, true} {
		tr, err := m.Evaluate(trig)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, int(tr.To), int(tr.From))
		assert.LessOrEqual(t, int(tr.To)-int(tr.From), 1, "never skips a state")
		seen = append(seen, tr.To)
	}
	assert.Equal(t, []State{Clean, Warned, Warned, Warned, Blocked}, seen)
}

func TestAlreadyBlockedTerminatesWithoutWrite(t *testing.T) {
	store := newMemStore()
	store.counts["alice"] = 2
	m := NewMachine("alice", store, quietLogger())

	tr, err := m.Evaluate(true)
	require.NoError(t, err)

	assert.Equal(t, ActionNone, tr.Action)
	assert.True(t, tr.Terminate)
	assert.Zero(t, store.sets)
}

func TestLegacyCountAboveBlockStaysBlocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warnings.csv")
	require.NoError(t, os.WriteFile(path, []byte("Employee,Warnings\nJohn_Doe,3\n"), 0o600))
	store := warnings.NewCSVStore(path)

	m := NewMachine("john_doe", store, quietLogger())
	require.Equal(t, Blocked, m.State())

	tr, err := m.Evaluate(true)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, tr.Action)
	assert.True(t, tr.Terminate)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Employee,Warnings\nJohn_Doe,3\n", string(data))
}

func TestUnreadableRecordStartsClean(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("garbage")

	m := NewMachine("alice", store, quietLogger())
	assert.Equal(t, Clean, m.State())
}

func TestPersistFailureStillAdvances(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("disk full")
	m := NewMachine("alice", store, quietLogger())

	tr, err := m.Evaluate(true)
	assert.Error(t, err)
	assert.Equal(t, ActionWarn, tr.Action)
	assert.Equal(t, Warned, m.State())
}

func TestStateFor(t *testing.T) {
	assert.Equal(t, Clean, StateFor(-3))
	assert.Equal(t, Clean, StateFor(0))
	assert.Equal(t, Warned, StateFor(1))
	assert.Equal(t, Blocked, StateFor(2))
	assert.Equal(t, Blocked, StateFor(9))
	assert.Equal(t, "WARNED", Warned.String())
}
