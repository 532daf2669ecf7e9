package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/widgetfactory/internal/events"
	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/reactprops"
	"github.com/alfredjeanlab/widgetfactory/internal/ui"
)

var createWidgetCmd = &cobra.Command{
	Use:     "create-widget <type>",
	Short:   "Validate and store a new widget",
	GroupID: "widgets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label, _ := cmd.Flags().GetString("label")
		rawConfig, _ := cmd.Flags().GetString("config")
		x, _ := cmd.Flags().GetInt("x")
		y, _ := cmd.Flags().GetInt("y")
		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")

		config, err := model.ParseConfig([]byte(rawConfig))
		if err != nil {
			return fmt.Errorf("invalid --config: %w", err)
		}

		w := model.NewWidget(model.WidgetType(args[0]))
		w.Label = label
		w.Config = config
		w.Position = model.Position{X: x, Y: y, Width: width, Height: height}

		if errs := model.Validate(w); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  Error: %s\n", e)
			}
			return errSilent
		}

		ctx := cmd.Context()
		if err := widgetStore.SaveWidget(ctx, w, 0); err != nil {
			return err
		}
		publish(ctx, events.TopicWidgetCreated, events.WidgetCreated{Widget: w})

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), model.SerializeWidget(w))
		}
		pass(cmd, "Widget created: %s (%s)", w.ID, w.Type)
		return nil
	},
}

var getWidgetCmd = &cobra.Command{
	Use:     "get-widget <id>",
	Short:   "Print a stored widget as JSON",
	GroupID: "widgets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := widgetStore.GetWidget(cmd.Context(), args[0])
		if err != nil {
			return notFound(cmd, err, "Widget", args[0])
		}
		return printJSON(cmd.OutOrStdout(), model.SerializeWidget(w))
	},
}

var listWidgetsCmd = &cobra.Command{
	Use:     "list-widgets",
	Short:   "List stored widgets",
	GroupID: "widgets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, _ := cmd.Flags().GetStringSlice("type")
		unattached, _ := cmd.Flags().GetBool("unattached")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := model.WidgetFilter{Unattached: unattached, Limit: limit}
		for _, t := range types {
			filter.Type = append(filter.Type, model.WidgetType(t))
		}

		widgets, err := widgetStore.ListWidgets(cmd.Context(), filter)
		if err != nil {
			return err
		}

		if jsonOutput {
			out := make([]map[string]any, len(widgets))
			for i, w := range widgets {
				out[i] = model.SerializeWidget(w)
			}
			return printJSON(cmd.OutOrStdout(), out)
		}
		printWidgetTable(cmd.OutOrStdout(), widgets)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d widgets\n", len(widgets))
		return nil
	},
}

var deleteWidgetCmd = &cobra.Command{
	Use:     "delete-widget <id>",
	Short:   "Delete a widget",
	GroupID: "widgets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		deleted, err := widgetStore.DeleteWidget(ctx, args[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintf(cmd.ErrOrStderr(), "Widget not found: %s\n", args[0])
			return errSilent
		}
		publish(ctx, events.TopicWidgetDeleted, events.WidgetDeleted{WidgetID: args[0]})
		pass(cmd, "Deleted widget %s", args[0])
		return nil
	},
}

// validationReport is the --json output of validate.
type validationReport struct {
	WidgetID string   `json:"widget_id"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
}

var validateCmd = &cobra.Command{
	Use:     "validate <id>",
	Short:   "Check a stored widget against its type's schema",
	GroupID: "widgets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := widgetStore.GetWidget(cmd.Context(), args[0])
		if err != nil {
			return notFound(cmd, err, "Widget", args[0])
		}

		errs := model.Validate(w)
		if jsonOutput {
			if errs == nil {
				errs = []string{}
			}
			if err := printJSON(cmd.OutOrStdout(), validationReport{WidgetID: w.ID, Valid: len(errs) == 0, Errors: errs}); err != nil {
				return err
			}
		} else if len(errs) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Fail("%d issue(s):", len(errs)))
			for _, e := range errs {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", e)
			}
		} else {
			pass(cmd, "Widget %s is valid", w.ID)
		}
		if len(errs) > 0 {
			return errSilent
		}
		return nil
	},
}

var reactPropsCmd = &cobra.Command{
	Use:     "react-props <id>",
	Short:   "Print the React component projection of a widget",
	GroupID: "widgets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := widgetStore.GetWidget(cmd.Context(), args[0])
		if err != nil {
			return notFound(cmd, err, "Widget", args[0])
		}
		return printJSON(cmd.OutOrStdout(), reactprops.Generate(w))
	},
}

func init() {
	createWidgetCmd.Flags().String("label", "", "display label")
	createWidgetCmd.Flags().String("config", "{}", "config as a JSON object")
	createWidgetCmd.Flags().Int("x", 0, "grid column")
	createWidgetCmd.Flags().Int("y", 0, "grid row")
	createWidgetCmd.Flags().Int("width", 4, "width in columns")
	createWidgetCmd.Flags().Int("height", 2, "height in rows")

	listWidgetsCmd.Flags().StringSlice("type", nil, "filter by widget type (repeatable)")
	listWidgetsCmd.Flags().Bool("unattached", false, "only widgets not in any layout")
	listWidgetsCmd.Flags().Int("limit", 0, "maximum number of widgets (0 = all)")
}
