package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <subtask>",
	Short: "Open a subtask directly",
	Long:  `Open a subtask in the wizard, skipping the home list. Run "phoenix list" to see subtask keys.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return errors.New("phoenix open needs an interactive terminal")
	}
	app, err := Setup(cmd.Context(), cfgFile, logLevel)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.Catalog.Get(args[0]); err != nil {
		return err
	}
	return runTUI(app, args[0])
}
