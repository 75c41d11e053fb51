package commands

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/agentmd/internal/version"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print version information",
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeReport(cmd.OutOrStdout(), version.Get())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().String("format", "text", "output format: text, json, jsonl, yaml")
}
