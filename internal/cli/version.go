package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "phoenix %s (commit %s, built %s)\n",
			version.Version, version.CommitSHA, version.BuildDate)
	},
}
