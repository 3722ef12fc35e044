package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustwatch/internal/audit"
	"github.com/ppiankov/trustwatch/internal/scoring"
)

var (
	tailLines int
	tailFile  string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show")
	auditTailCmd.Flags().StringVar(&tailFile, "file", "", "Audit log path (default: audit_log from config)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for inspecting the per-cycle CSV audit log.",
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show recent audit log entries",
	Args:  cobra.NoArgs,
	RunE:  runAuditTail,
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	path := tailFile
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.AuditLog
	}

	entries, err := audit.Tail(path, tailLines)
	if errors.Is(err, fs.ErrNotExist) {
		entries, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No audit entries.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tEMPLOYEE\tBEHAVIOR\tEMAIL\tTRUST\tREASONS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			e.Timestamp.Format(audit.TimestampFormat), e.Employee,
			e.Behavior, e.Email, e.Trust,
			strings.Join(e.Reasons, scoring.ReasonSeparator))
	}
	return w.Flush()
}
