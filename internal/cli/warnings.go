package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustwatch/internal/escalation"
	"github.com/ppiankov/trustwatch/internal/warnings"
)

func init() {
	rootCmd.AddCommand(warningsCmd)
	warningsCmd.AddCommand(warningsShowCmd)
	warningsCmd.AddCommand(warningsListCmd)
	warningsCmd.AddCommand(warningsResetCmd)
}

var warningsCmd = &cobra.Command{
	Use:   "warnings",
	Short: "Inspect and reset warning records",
	Long:  "Warning records hold each employee's persistent count (0 CLEAN, 1 WARNED, 2 BLOCKED).",
}

var warningsShowCmd = &cobra.Command{
	Use:   "show <employee>",
	Short: "Show one employee's warning count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWarnings(func(store warnings.Store) error {
			n, err := store.Get(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", warnings.Normalize(args[0]), n, escalation.StateFor(n))
			return nil
		})
	},
}

var warningsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored warning record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWarnings(func(store warnings.Store) error {
			recs, err := store.List()
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No warning records.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMPLOYEE\tWARNINGS\tSTATE")
			for _, r := range recs {
				fmt.Fprintf(w, "%s\t%d\t%s\n", r.Employee, r.Warnings, escalation.StateFor(r.Warnings))
			}
			return w.Flush()
		})
	},
}

var warningsResetCmd = &cobra.Command{
	Use:   "reset <employee>",
	Short: "Reset an employee to CLEAN",
	Long:  "Sets the warning count to 0. A running session for the same employee keeps its in-memory state.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWarnings(func(store warnings.Store) error {
			if err := store.Set(args[0], 0); err != nil {
				return fmt.Errorf("reset %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s to CLEAN\n", warnings.Normalize(args[0]))
			return nil
		})
	},
}

func withWarnings(fn func(warnings.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openWarnings(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
