package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/version"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "phoenix",
	Short: "Guided recovery subtasks in the terminal",
	Long: `Phoenix walks you through short multi-step subtasks, keeps your answers
on this device, and records completion with the Phoenix service.

Run without arguments to open the subtask list.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	Args:          cobra.NoArgs,
	RunE:          runHome,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/phoenix/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(openCmd, listCmd, showCmd, loginCmd, logoutCmd, versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runHome(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return errors.New("phoenix needs an interactive terminal; try `phoenix list`")
	}
	app, err := Setup(cmd.Context(), cfgFile, logLevel)
	if err != nil {
		return err
	}
	defer app.Close()
	return runTUI(app, "")
}
