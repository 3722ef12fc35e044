package systemd

import (
	"strings"
	"testing"
)

func TestMonitorTemplate(t *testing.T) {
	tmpl := MonitorTemplate("/opt/bin/trustwatch")

	for _, section := range []string{"[Unit]", "[Service]", "[Install]"} {
		if !strings.Contains(tmpl, section) {
			t.Errorf("template missing section %s", section)
		}
	}

	if !strings.Contains(tmpl, "ExecStart=/opt/bin/trustwatch monitor --employee %i") {
		t.Error("template missing monitor command")
	}
	if !strings.Contains(tmpl, "User=%i") {
		t.Error("session must run as the monitored employee")
	}
	// Blocked sessions exit cleanly and must not be restarted.
	if !strings.Contains(tmpl, "Restart=on-failure") {
		t.Error("template must restart on failure only")
	}

	for _, directive := range []string{"NoNewPrivileges=true", "PrivateTmp=true"} {
		if !strings.Contains(tmpl, directive) {
			t.Errorf("template missing security directive %s", directive)
		}
	}
}

func TestMonitorTemplateDefaultBinary(t *testing.T) {
	tmpl := MonitorTemplate("")
	if !strings.Contains(tmpl, "ExecStart=/usr/local/bin/trustwatch monitor") {
		t.Errorf("expected default binary path, got:\n%s", tmpl)
	}
}
