package detector

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	times map[string]time.Time
	errs  map[string]error
}

func (f *fakeProber) LastAccess(path string) (time.Time, bool, error) {
	if err := f.errs[path]; err != nil {
		return time.Time{}, false, err
	}
	t, ok := f.times[path]
	return t, ok, nil
}

var t0 = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func TestSeedFromProber(t *testing.T) {
	p := &fakeProber{times: map[string]time.Time{"/data/payroll.xlsx": t0}}

	d := New(p, []string{"/data/payroll.xlsx", "/data/missing.doc"})

	assert.Equal(t, t0, d.Baseline("/data/payroll.xlsx"))
	assert.True(t, d.Baseline("/data/missing.doc").IsZero())
}

func TestNoEventWhenUnchanged(t *testing.T) {
	p := &fakeProber{times: map[string]time.Time{"/data/payroll.xlsx": t0}}
	d := New(p, []string{"/data/payroll.xlsx"})

	for i := 0; i < 3; i++ {
		assert.Empty(t, d.Poll())
	}
}

func TestEventOncePerAdvance(t *testing.T) {
	p := &fakeProber{times: map[string]time.Time{"/data/payroll.xlsx": t0}}
	d := New(p, []string{"/data/payroll.xlsx"})

	p.times["/data/payroll.xlsx"] = t0.Add(time.Minute)
	events := d.Poll()
	require.Len(t, events, 1)
	assert.Equal(t, "payroll.xlsx", events[0].Name)
	assert.Equal(t, t0, events[0].Previous)
	assert.Equal(t, t0.Add(time.Minute), d.Baseline("/data/payroll.xlsx"))

	assert.Empty(t, d.Poll(), "same timestamp must not re-fire")

	p.times["/data/payroll.xlsx"] = t0.Add(2 * time.Minute)
	assert.Len(t, d.Poll(), 1)
}

func TestBaselineFollowsBackwardsClock(t *testing.T) {
	p := &fakeProber{times: map[string]time.Time{"/x": t0}}
	d := New(p, []string{"/x"})

	p.times["/x"] = t0.Add(-time.Hour)
	assert.Empty(t, d.Poll())
	assert.Equal(t, t0.Add(-time.Hour), d.Baseline("/x"))

	p.times["/x"] = t0.Add(-30 * time.Minute)
	assert.Len(t, d.Poll(), 1)
}

func TestMissingPathNeverFires(t *testing.T) {
	p := &fakeProber{times: map[string]time.Time{}}
	d := New(p, []string{"/gone"})

	assert.Empty(t, d.Poll())
	assert.True(t, d.Baseline("/gone").IsZero())
}

func TestFileCreatedAfterSeedFires(t *testing.T) {
	p := &fakeProber{times: map[string]time.Time{}}
	d := New(p, []string{"/late.txt"})

	p.times["/late.txt"] = t0
	events := d.Poll()
	require.Len(t, events, 1)
	assert.True(t, events[0].Previous.IsZero())
}

func TestProbeErrorSkipsPath(t *testing.T) {
	p := &fakeProber{
		times: map[string]time.Time{"/ok": t0, "/denied": t0},
		errs:  map[string]error{},
	}
	d := New(p, []string{"/ok", "/denied"})

	p.times["/ok"] = t0.Add(time.Second)
	p.times["/denied"] = t0.Add(time.Second)
	p.errs["/denied"] = errors.New("permission denied")

	events := d.Poll()
	require.Len(t, events, 1)
	assert.Equal(t, "/ok", events[0].Path)
	assert.Equal(t, t0, d.Baseline("/denied"))
}

func TestDuplicatePathsWatchedOnce(t *testing.T) {
	p := &fakeProber{times: map[string]time.Time{"/a": t0}}
	d := New(p, []string{"/a", "/a"})

	assert.Equal(t, []string{"/a"}, d.Paths())
	p.times["/a"] = t0.Add(time.Second)
	assert.Len(t, d.Poll(), 1)
}
