package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/widgetfactory/internal/backup"
	"github.com/alfredjeanlab/widgetfactory/internal/events"
	"github.com/alfredjeanlab/widgetfactory/internal/export"
	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
)

var createLayoutCmd = &cobra.Command{
	Use:     "create-layout <name>",
	Short:   "Create an empty layout",
	GroupID: "layouts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columns, _ := cmd.Flags().GetInt("columns")
		rowHeight, _ := cmd.Flags().GetInt("row-height")
		if columns <= 0 || rowHeight <= 0 {
			return fmt.Errorf("--columns and --row-height must be positive")
		}

		l := model.NewLayout(args[0])
		l.Columns = columns
		l.RowHeight = rowHeight

		ctx := cmd.Context()
		if err := widgetStore.SaveLayout(ctx, l); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Layout already exists: %s\n", l.Name)
				return errSilent
			}
			return err
		}
		publish(ctx, events.TopicLayoutSaved, events.LayoutSavedFrom(l))

		pass(cmd, "Layout '%s' created (id=%d)", l.Name, l.RowID)
		return nil
	},
}

var addToLayoutCmd = &cobra.Command{
	Use:     "add-to-layout <layout> <widget-id>",
	Short:   "Attach a stored widget to a layout",
	GroupID: "layouts",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, widgetID := args[0], args[1]
		ctx := cmd.Context()

		l, err := widgetStore.GetLayout(ctx, name)
		if err != nil {
			return notFound(cmd, err, "Layout", name)
		}
		if _, err := widgetStore.GetWidget(ctx, widgetID); err != nil {
			return notFound(cmd, err, "Widget", widgetID)
		}
		// Only the named widget is written; the rest of the layout is untouched.
		if err := widgetStore.AttachWidget(ctx, l.RowID, widgetID); err != nil {
			return err
		}
		publish(ctx, events.TopicWidgetAttached, events.WidgetAttached{WidgetID: widgetID, Layout: l.Name})

		pass(cmd, "Widget %s added to layout '%s'", widgetID, l.Name)
		return nil
	},
}

var removeFromLayoutCmd = &cobra.Command{
	Use:     "remove-from-layout <widget-id>",
	Short:   "Detach a widget from its layout (the widget is kept)",
	GroupID: "layouts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		widgetID := args[0]
		ctx := cmd.Context()

		if err := widgetStore.DetachWidget(ctx, widgetID); err != nil {
			return notFound(cmd, err, "Widget", widgetID)
		}
		publish(ctx, events.TopicWidgetDetached, events.WidgetDetached{WidgetID: widgetID})

		pass(cmd, "Widget %s removed from its layout", widgetID)
		return nil
	},
}

var showLayoutCmd = &cobra.Command{
	Use:     "show-layout <name>",
	Short:   "Show a layout and its widgets in grid order",
	GroupID: "layouts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := widgetStore.GetLayout(cmd.Context(), args[0])
		if err != nil {
			return notFound(cmd, err, "Layout", args[0])
		}

		if jsonOutput {
			out, err := export.Export(l, string(export.FormatJSON))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}

		w := cmd.OutOrStdout()
		printLayoutHeader(w, l)
		if len(l.Widgets) > 0 {
			fmt.Fprintln(w)
			printWidgetTable(w, l.Widgets)
		}
		return nil
	},
}

var listLayoutsCmd = &cobra.Command{
	Use:     "list-layouts",
	Short:   "List layouts with their widget counts",
	GroupID: "layouts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		layouts, err := widgetStore.ListLayouts(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			if layouts == nil {
				layouts = []*model.LayoutSummary{}
			}
			return printJSON(cmd.OutOrStdout(), layouts)
		}
		printLayoutSummaries(cmd.OutOrStdout(), layouts)
		return nil
	},
}

var exportLayoutCmd = &cobra.Command{
	Use:     "export-layout <layout>",
	Short:   "Render a layout as JSON, CSS grid rules or HTML",
	GroupID: "layouts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		format, err := export.ParseFormat(formatFlag)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return errSilent
		}

		ctx := cmd.Context()
		l, err := widgetStore.GetLayout(ctx, args[0])
		if err != nil {
			return notFound(cmd, err, "Layout", args[0])
		}

		content, err := export.Export(l, string(format))
		if err != nil {
			return err
		}

		if output == "" {
			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		}
		output = withFormatExt(output, format)

		var dest backup.Destination
		if backup.IsS3URL(output) {
			s3dest, err := backup.NewS3DestinationFromURL(ctx, output, cfg.S3.Region, cfg.S3.Endpoint)
			if err != nil {
				return err
			}
			dest = s3dest.WithContentType(format.ContentType())
		} else {
			dest = backup.NewFileDestination(output)
		}
		if err := dest.Write(ctx, []byte(content)); err != nil {
			return fmt.Errorf("export layout %q: %w", l.Name, err)
		}
		logger.Debug("layout exported", "layout", l.Name, "format", format, "dest", dest.String())

		pass(cmd, "Exported to %s", output)
		return nil
	},
}

// withFormatExt appends f's extension to a target that names none.
func withFormatExt(target string, f export.Format) string {
	if strings.HasSuffix(target, "/") || filepath.Ext(target) != "" {
		return target
	}
	if backup.IsS3URL(target) && !strings.Contains(strings.TrimPrefix(target, "s3://"), "/") {
		return target
	}
	return target + f.Ext()
}

var deleteLayoutCmd = &cobra.Command{
	Use:     "delete-layout <name>",
	Short:   "Delete a layout (its widgets are detached, not deleted)",
	GroupID: "layouts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		ctx := cmd.Context()

		deleted, err := widgetStore.DeleteLayout(ctx, name)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintf(cmd.ErrOrStderr(), "Layout not found: %s\n", name)
			return errSilent
		}
		publish(ctx, events.TopicLayoutDeleted, events.LayoutDeleted{Name: name})

		pass(cmd, "Deleted layout '%s'", name)
		return nil
	},
}

func init() {
	createLayoutCmd.Flags().Int("columns", model.DefaultColumns, "grid columns")
	createLayoutCmd.Flags().Int("row-height", model.DefaultRowHeight, "row height in pixels")

	formats := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		formats[i] = string(f)
	}
	exportLayoutCmd.Flags().String("format", string(export.FormatJSON), "output format ("+strings.Join(formats, ", ")+")")
	exportLayoutCmd.Flags().StringP("output", "o", "", "write to a file or s3://bucket/key instead of stdout; the format's extension is added when missing")
}
