package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := map[string]string{
			"version": version,
			"name":    "trustwatch",
		}
		out, _ := json.MarshalIndent(info, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	},
}
