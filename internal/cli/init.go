package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustwatch/internal/config"
	"github.com/ppiankov/trustwatch/internal/systemd"
)

var (
	initInstallSystemd bool
	initForce          bool
)

func init() {
	initCmd.Flags().BoolVar(&initInstallSystemd, "install-systemd", false, "Install the trustwatch@.service template unit (requires root)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap trustwatch configuration and optional systemd integration",
	Long: `Writes a commented default config (~/.trustwatch/config.yaml unless --config
is given) and creates the mail spool directories it names.

With --install-systemd: installs a trustwatch@.service template so a session
can be started per employee via:
  systemctl enable --now trustwatch@<employee>`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	var created []string

	path := resolvedConfigPath()
	wrote, err := writeIfMissing(path, config.DefaultConfigYAML())
	if err != nil {
		return err
	}
	if wrote {
		created = append(created, path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("written config does not load: %w", err)
	}
	for _, dir := range []string{cfg.Mail.Spool.Inbox, cfg.Mail.Spool.Outbox} {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create spool directory %s: %w", dir, err)
		}
		created = append(created, dir)
	}

	if initInstallSystemd {
		unitPath, err := installUnit()
		if err != nil {
			return err
		}
		created = append(created, unitPath)
	}

	fmt.Fprintln(out, "trustwatch init complete.")
	fmt.Fprintln(out)
	if len(created) > 0 {
		fmt.Fprintln(out, "Created:")
		for _, p := range created {
			fmt.Fprintf(out, "  %s\n", p)
		}
	} else {
		fmt.Fprintln(out, "All files already exist (use --force to overwrite).")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  edit %s (admin_email, presence.command, sensitive_files)\n", path)
	if cfg.Mail.Backend == config.MailGmail {
		fmt.Fprintln(out, "  trustwatch mail auth")
	}
	fmt.Fprintln(out, "  trustwatch monitor --employee <name> --once")
	if initInstallSystemd {
		fmt.Fprintln(out, "  sudo systemctl enable --now trustwatch@<employee>")
	}
	return nil
}

// installUnit writes the template unit, records its hash and reloads systemd.
func installUnit() (string, error) {
	if runtime.GOOS != "linux" {
		return "", fmt.Errorf("--install-systemd is only supported on Linux")
	}
	if os.Geteuid() != 0 {
		return "", fmt.Errorf("--install-systemd requires root; run with sudo")
	}

	binary, err := os.Executable()
	if err != nil {
		binary = ""
	}
	unitPath := systemd.UnitPath()
	if err := os.WriteFile(unitPath, []byte(systemd.MonitorTemplate(binary)), 0o644); err != nil {
		return "", fmt.Errorf("write systemd unit: %w", err)
	}
	if err := os.MkdirAll(systemd.StateDir, 0o755); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	if err := systemd.RecordUnitHash(unitPath, systemd.HashPath()); err != nil {
		return "", fmt.Errorf("record unit hash: %w", err)
	}

	if err := exec.Command("systemctl", "daemon-reload").Run(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: systemctl daemon-reload failed: %v\n", err)
	}
	return unitPath, nil
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
