package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// execute runs the root command with args and returns combined output.
// Package-level flag variables are reset first because cobra keeps them
// between invocations.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags() {
	configPath, logLevel = "", ""
	initInstallSystemd, initForce = false, false
	monitorEmployee, monitorInterval, monitorMetricsAddr, monitorOnce = "", 0, "", false
	scoreFaces, scoreBodies, scoreAt, scoreExpected, scoreActual = 1, nil, "", "employee", ""
	tailLines, tailFile = 10, ""
}

// isolate points HOME at a temp dir and clears overrides from the
// environment.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"TRUSTWATCH_ADMIN_EMAIL", "TRUSTWATCH_EMPLOYEE",
		"TRUSTWATCH_GMAIL_CREDENTIALS", "TRUSTWATCH_GMAIL_TOKEN", "TRUSTWATCH_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return home
}

// writeSpoolConfig writes a config using the spool mail backend under dir.
func writeSpoolConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := `admin_email: admin@example.com
poll_interval: 1s
presence:
  command: echo 1
mail:
  backend: spool
  from: trustwatch@example.com
  spool:
    inbox: ` + filepath.Join(dir, "inbox") + `
    outbox: ` + filepath.Join(dir, "outbox") + `
warnings:
  backend: csv
  path: ` + filepath.Join(dir, "warnings.csv") + `
audit_log: ` + filepath.Join(dir, "audit.csv") + `
log:
  level: error
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "inbox"), 0o750); err != nil {
		t.Fatal(err)
	}
	return path
}
