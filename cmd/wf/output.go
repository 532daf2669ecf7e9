package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
	"github.com/alfredjeanlab/widgetfactory/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// pass prints a "✓ ..." line to stdout.
func pass(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), ui.Pass(format, args...))
}

// notFound reports a missing widget or layout on stderr and returns
// errSilent; other errors pass through.
func notFound(cmd *cobra.Command, err error, what, name string) error {
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s not found: %s\n", what, name)
		return errSilent
	}
	return err
}

func formatPosition(p model.Position) string {
	return fmt.Sprintf("%d,%d %dx%d", p.X, p.Y, p.Width, p.Height)
}

// truncate shortens s to at most max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// printWidgetTable writes plain cells only; escape sequences would throw off
// tabwriter's column widths.
func printWidgetTable(w io.Writer, widgets []*model.Widget) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tLABEL\tPOSITION\tVISIBLE")
	for _, wd := range widgets {
		visible := "yes"
		if !wd.Visible {
			visible = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			wd.ID,
			wd.Type,
			truncate(wd.Label, 30),
			formatPosition(wd.Position),
			visible,
		)
	}
	tw.Flush()
}

func printLayoutHeader(w io.Writer, l *model.Layout) {
	fmt.Fprintf(w, "Name:        %s\n", l.Name)
	fmt.Fprintf(w, "Columns:     %d\n", l.Columns)
	fmt.Fprintf(w, "Row Height:  %dpx\n", l.RowHeight)
	if !l.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created At:  %s\n", l.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Widgets:     %d\n", len(l.Widgets))
}

// printLayoutSummaries writes one "  <name> <count> widgets  cols=<n>" row
// per layout.
func printLayoutSummaries(w io.Writer, layouts []*model.LayoutSummary) {
	if len(layouts) == 0 {
		fmt.Fprintln(w, "No layouts found.")
		return
	}
	for _, l := range layouts {
		fmt.Fprintf(w, "  %-30s %3d widgets  cols=%d\n", l.Name, l.WidgetCount, l.Columns)
	}
}
