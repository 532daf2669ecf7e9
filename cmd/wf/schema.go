package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/ui"
)

var schemaCmd = &cobra.Command{
	Use:         "schema [type]",
	Short:       "Print the config schema of one or every widget type",
	GroupID:     "widgets",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		types := model.ValidWidgetTypes()
		if len(args) == 1 {
			t := model.WidgetType(args[0])
			if !t.IsValid() {
				return fmt.Errorf("unknown widget type: %s", t)
			}
			types = []model.WidgetType{t}
		}

		schemas := make([]model.WidgetSchema, len(types))
		for i, t := range types {
			schemas[i] = model.SchemaFor(t)
		}

		if jsonOutput {
			if len(args) == 1 {
				return printJSON(cmd.OutOrStdout(), schemas[0])
			}
			return printJSON(cmd.OutOrStdout(), schemas)
		}
		for i, s := range schemas {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			printSchema(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

func printSchema(w io.Writer, s model.WidgetSchema) {
	fmt.Fprintln(w, ui.RenderAccent(string(s.Type)))
	if s.IsEmpty() {
		fmt.Fprintf(w, "  %s\n", ui.RenderMuted("(no schema)"))
		return
	}
	width := 0
	for _, f := range s.Fields {
		width = max(width, len(f.Name))
	}
	for _, f := range s.Fields {
		kinds := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			kinds[i] = string(k)
		}
		fmt.Fprintf(w, "  %-*s  %s\n", width, f.Name, strings.Join(kinds, " | "))
	}
}
