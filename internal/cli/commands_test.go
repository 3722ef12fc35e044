package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("version output is not JSON: %v\n%s", err, out)
	}
	if info["name"] != "trustwatch" || info["version"] != version {
		t.Errorf("unexpected version info: %v", info)
	}
}

func TestScore_CleanCycle(t *testing.T) {
	isolate(t)
	out, err := execute(t, "score", "--faces", "1", "--at", "10:00", "--expected", "alice")
	if err != nil {
		t.Fatal(err)
	}
	var rep scoreReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("score output is not JSON: %v\n%s", err, out)
	}
	if rep.BehaviorScore != 80 || rep.EmailScore != 100 || rep.TrustScore != 90 {
		t.Errorf("unexpected scores: %+v", rep)
	}
	if rep.Triggered || len(rep.Reasons) != 0 {
		t.Errorf("clean cycle should not trigger: %+v", rep)
	}
}

func TestScore_KeywordsAndWrongUser(t *testing.T) {
	isolate(t)
	out, err := execute(t, "score",
		"--faces", "0",
		"--body", "please send the OTP",
		"--body", "new password inside",
		"--at", "10:00",
		"--expected", "alice", "--actual", "mallory")
	if err != nil {
		t.Fatal(err)
	}
	var rep scoreReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("score output is not JSON: %v\n%s", err, out)
	}
	if !rep.Triggered {
		t.Errorf("expected trigger: %+v", rep)
	}
	if rep.TrustScore >= rep.Threshold {
		t.Errorf("trust %d should be below threshold %d", rep.TrustScore, rep.Threshold)
	}
	if !strings.Contains(strings.Join(rep.Reasons, ","), "wrong-user:mallory") {
		t.Errorf("missing wrong-user reason: %v", rep.Reasons)
	}
}

func TestScore_InvalidAt(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "score", "--at", "noon"); err == nil {
		t.Error("expected error for invalid --at")
	}
}

func TestWarnings_ShowListReset(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := writeSpoolConfig(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "warnings.csv"), []byte("bob,1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfg, "warnings", "show", "Bob")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "bob\t1\tWARNED") {
		t.Errorf("unexpected show output: %q", out)
	}

	out, err = execute(t, "--config", cfg, "warnings", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "EMPLOYEE") || !strings.Contains(out, "WARNED") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	if _, err := execute(t, "--config", cfg, "warnings", "reset", "bob"); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "--config", cfg, "warnings", "show", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "bob\t0\tCLEAN") {
		t.Errorf("reset did not clear warnings: %q", out)
	}
}

func TestMonitorOnce_WrongUserWarns(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := writeSpoolConfig(t, dir)
	employee := "trustwatch-nobody"

	out, err := execute(t, "--config", cfg, "monitor", "--once", "--employee", employee)
	if err != nil {
		t.Fatalf("monitor --once failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "state WARNED") {
		t.Errorf("expected WARNED after one triggered cycle:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "warnings.csv"))
	if err != nil {
		t.Fatalf("warnings not persisted: %v", err)
	}
	if !strings.Contains(string(data), employee+",1") {
		t.Errorf("expected %s,1 in warnings, got %q", employee, data)
	}

	outbox, err := os.ReadDir(filepath.Join(dir, "outbox"))
	if err != nil || len(outbox) != 1 {
		t.Fatalf("expected one alert in outbox, got %d (%v)", len(outbox), err)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "outbox", outbox[0].Name()))
	if !strings.Contains(string(raw), "To: admin@example.com") {
		t.Errorf("alert not addressed to admin:\n%s", raw)
	}

	out, err = execute(t, "--config", cfg, "audit", "tail")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, employee) || !strings.Contains(out, "wrong-user:") {
		t.Errorf("audit tail missing the cycle:\n%s", out)
	}
}

func TestMonitor_RequiresPresenceCommand(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mail:\n  backend: spool\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "--config", path, "monitor", "--once", "--employee", "alice")
	if err == nil || !strings.Contains(err.Error(), "presence.command") {
		t.Errorf("expected presence.command error, got %v", err)
	}
}

func TestAuditTail_Empty(t *testing.T) {
	isolate(t)
	out, err := execute(t, "audit", "tail", "--file", filepath.Join(t.TempDir(), "none.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No audit entries.") {
		t.Errorf("unexpected output: %q", out)
	}
}
