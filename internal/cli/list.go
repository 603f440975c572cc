package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List subtasks and their local status",
	Long:  `List every subtask in the catalog with its status on this device: new, draft or done.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := Setup(cmd.Context(), cfgFile, logLevel)
		if err != nil {
			return err
		}
		defer app.Close()
		return writeList(cmd.Context(), cmd.OutOrStdout(), app)
	},
}

func writeList(ctx context.Context, out io.Writer, app *App) error {
	schemas := app.Catalog.Schemas()
	statuses := completion.Statuses(ctx, app.Store, schemas, app.Logger)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBTASK\tTITLE\tSTEPS\tSTATUS")
	for _, s := range schemas {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			s.Def.Key,
			s.Def.Title,
			s.Def.StepCount(),
			statuses[s.Def.Key],
		)
	}
	return w.Flush()
}
