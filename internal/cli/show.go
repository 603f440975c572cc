package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/completion"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/styles"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/tui/views"
	"github.com/pezhmanazar/phoenix-app-sub002/internal/wizard"
)

var showCmd = &cobra.Command{
	Use:   "show <subtask>",
	Short: "Print a subtask's saved answers",
	Long:  `Print the answers stored on this device for a subtask, step by step. Nothing is edited or sent.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := Setup(cmd.Context(), cfgFile, logLevel)
		if err != nil {
			return err
		}
		defer app.Close()

		schema, err := app.Catalog.Get(args[0])
		if err != nil {
			return err
		}
		ctrl, err := completion.Boot(cmd.Context(), app.Store, schema, app.Logger)
		if err != nil {
			return err
		}
		writeReview(cmd.OutOrStdout(), ctrl, time.Now())
		return nil
	},
}

// writeReview prints every step of ctrl with its answers.
func writeReview(out io.Writer, ctrl *wizard.Controller, now time.Time) {
	def := ctrl.Definition()

	fmt.Fprintln(out, styles.TitleStyle.Render(def.Title))
	if snap, ok := ctrl.Final(); ok {
		fmt.Fprintln(out, styles.LockedStyle.Render(fmt.Sprintf("Completed %s (%s)",
			snap.SavedAt.Local().Format("2006-01-02 15:04"), formatAge(snap.SavedAt, now))))
	} else {
		fmt.Fprintln(out, styles.WarningStyle.Render("Not completed yet"))
	}

	for i, step := range def.Steps {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styles.SectionStyle.Render(fmt.Sprintf("%d. %s", i+1, step.Title)))
		for _, spec := range step.Fields {
			v, _ := ctrl.Value(spec.Name)
			label := spec.Label
			if label == "" {
				label = spec.Name
			}
			fmt.Fprintf(out, "  %s: %s\n", label, formatValue(spec, v))
		}
	}

	if snap, ok := ctrl.Final(); ok && len(snap.Summary) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styles.SectionStyle.Render("Summary"))
		for _, line := range views.SummaryLines(snap.Summary) {
			fmt.Fprintln(out, "  "+line)
		}
	}
}

func formatValue(spec wizard.FieldSpec, v wizard.Value) string {
	if v.Empty() {
		return styles.SubtleStyle.Render("-")
	}
	switch spec.Kind {
	case wizard.KindSet:
		return strings.Join(v.Set, ", ")
	case wizard.KindScale:
		return fmt.Sprintf("%d (%d-%d)", v.Scale, spec.Min, spec.Max)
	case wizard.KindRecords:
		var parts []string
		for i, rec := range v.Records {
			var kv []string
			for _, sub := range spec.Subfields {
				kv = append(kv, sub+"="+rec[sub])
			}
			parts = append(parts, fmt.Sprintf("\n    %d. %s", i+1, strings.Join(kv, "  ")))
		}
		return strings.Join(parts, "")
	}
	return strings.TrimSpace(v.Text)
}

// formatAge returns a human-readable relative time string.
func formatAge(t, now time.Time) string {
	duration := now.Sub(t)

	if duration < time.Minute {
		return "just now"
	}

	minutes := int(duration.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(duration.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	return fmt.Sprintf("%dd ago", days)
}
