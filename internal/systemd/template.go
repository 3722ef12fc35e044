package systemd

import (
	"path/filepath"
	"strings"
)

// UnitName is the installed name of the monitoring template unit.
const UnitName = "trustwatch@.service"

// UnitDir is where system units are installed.
var UnitDir = "/etc/systemd/system"

// StateDir holds the install-time unit hash.
var StateDir = "/var/lib/trustwatch"

// UnitPath returns the installed unit file path.
func UnitPath() string { return filepath.Join(UnitDir, UnitName) }

// HashPath returns where the install-time unit hash is recorded.
func HashPath() string { return filepath.Join(StateDir, HashFileName) }

// MonitorTemplate returns the trustwatch@.service template. The %i instance
// is the employee: the session runs as that user and monitors that name.
// binary is the absolute path of the trustwatch executable.
func MonitorTemplate(binary string) string {
	if binary == "" {
		binary = "/usr/local/bin/trustwatch"
	}
	var b strings.Builder
	b.WriteString(`[Unit]
Description=trustwatch monitoring session for %i
After=graphical.target network-online.target
Wants=network-online.target

[Service]
Type=simple
User=%i
`)
	b.WriteString("ExecStart=" + binary + " monitor --employee %i\n")
	// A blocked employee exits 0 and must stay down.
	b.WriteString(`Restart=on-failure
RestartSec=5
NoNewPrivileges=true
PrivateTmp=true
ProtectSystem=full

[Install]
WantedBy=multi-user.target
`)
	return b.String()
}
