package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set from main via Execute (goreleaser ldflags).
var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rdtrack %s (commit %s, built %s)\n", buildVersion, buildCommit, buildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
