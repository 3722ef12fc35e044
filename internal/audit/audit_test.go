package audit

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/trustwatch/internal/scoring"
)

func newTestLog(t *testing.T) (*Log, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "employee_log.csv")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	return l, path
}

func testEntry(trust int, reasons ...string) Entry {
	return Entry{
		Timestamp: time.Date(2025, 6, 2, 9, 30, 0, 0, time.Local),
		Employee:  "john_doe",
		Behavior:  80,
		Email:     80,
		Trust:     trust,
		Reasons:   reasons,
	}
}

func TestHeaderWrittenOnce(t *testing.T) {
	l, path := newTestLog(t)
	if err := l.Record(testEntry(80)); err != nil {
		t.Fatal(err)
	}
	l.Close()

	l2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l2.Record(testEntry(70)); err != nil {
		t.Fatal(err)
	}
	l2.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "timestamp,employee"); got != 1 {
		t.Errorf("expected 1 header row, got %d\n%s", got, data)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 lines, got %d", len(lines))
	}
}

func TestRecordFormat(t *testing.T) {
	l, path := newTestLog(t)
	if err := l.Record(testEntry(60, "keyword:otp", "unusual-login-time")); err != nil {
		t.Fatal(err)
	}
	l.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := "2025-06-02 09:30:00,john_doe,80,80,60,keyword:otp; unusual-login-time"
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestEmptyReasonsColumn(t *testing.T) {
	l, path := newTestLog(t)
	l.Record(testEntry(90))
	l.Close()

	data, _ := os.ReadFile(path)
	if !strings.HasSuffix(strings.TrimSpace(string(data)), ",90,") {
		t.Errorf("expected trailing empty reasons column, got %q", data)
	}
}

func TestZeroTimestampFilled(t *testing.T) {
	l, path := newTestLog(t)
	e := testEntry(90)
	e.Timestamp = time.Time{}
	before := time.Now().Add(-time.Second)
	if err := l.Record(e); err != nil {
		t.Fatal(err)
	}
	l.Close()

	entries, err := Tail(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Timestamp.Before(before.Truncate(time.Second)) {
		t.Errorf("expected timestamp near now, got %+v", entries)
	}
}

func TestConcurrentRecords(t *testing.T) {
	l, path := newTestLog(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := l.Record(testEntry(i)); err != nil {
				t.Errorf("record %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	l.Close()

	entries, err := Tail(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 20 {
		t.Errorf("expected 20 entries, got %d", len(entries))
	}
}

func TestTailLastN(t *testing.T) {
	l, path := newTestLog(t)
	for i := 0; i < 5; i++ {
		l.Record(testEntry(i, "keyword:leak"))
	}
	l.Close()

	entries, err := Tail(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Trust != 3 || entries[1].Trust != 4 {
		t.Errorf("expected trust 3,4 got %d,%d", entries[0].Trust, entries[1].Trust)
	}
	if len(entries[1].Reasons) != 1 || entries[1].Reasons[0] != "keyword:leak" {
		t.Errorf("unexpected reasons %v", entries[1].Reasons)
	}
}

func TestTailMissingFile(t *testing.T) {
	if _, err := Tail(filepath.Join(t.TempDir(), "nope.csv"), 5); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReasonsColumnMatchesLogRendering(t *testing.T) {
	var reasons scoring.Reasons
	reasons.Add(scoring.KeywordTag("otp"))
	reasons.Add(scoring.TagUnusualTime)
	reasons.Add(scoring.FileAccessTag("salary.xlsx"))

	l, path := newTestLog(t)
	if err := l.Record(testEntry(10, reasons.Tags()...)); err != nil {
		t.Fatal(err)
	}
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), reasons.String()) {
		t.Errorf("reasons column should read %q, got:\n%s", reasons.String(), data)
	}

	entries, err := Tail(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || strings.Join(entries[0].Reasons, ",") != strings.Join(reasons.Tags(), ",") {
		t.Errorf("tail did not split reasons back: %+v", entries)
	}
}
