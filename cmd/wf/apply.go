package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/widgetfactory/internal/manifest"
	"github.com/alfredjeanlab/widgetfactory/internal/ui"
)

var applyCmd = &cobra.Command{
	Use:   "apply -f <file|dir|glob>...",
	Short: "Create or update layouts from manifest files",
	Long: `Load layout manifests (TOML, YAML or JSON) and upsert each layout with its
widgets. Every widget is validated before anything is written; a manifest
with an invalid widget is skipped as a whole.

Patterns may use ** to match nested directories. A directory argument
applies every manifest beneath it.`,
	GroupID: "layouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, _ := cmd.Flags().GetStringArray("file")
		prune, _ := cmd.Flags().GetBool("prune")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		patterns = append(patterns, args...)
		if len(patterns) == 0 {
			return fmt.Errorf("no manifests given (use -f)")
		}

		paths, err := manifest.Expand(patterns)
		if err != nil {
			return err
		}
		manifests, err := manifest.LoadAll(paths)
		if err != nil {
			return err
		}

		applier := manifest.NewApplier(widgetStore, publisher, logger)
		applier.Prune = prune
		applier.DryRun = dryRun

		results, applyErr := applier.ApplyAll(cmd.Context(), manifests)

		if jsonOutput {
			if results == nil {
				results = []*manifest.Result{}
			}
			if err := printJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
		} else {
			for _, res := range results {
				printApplyResult(cmd.OutOrStdout(), res, dryRun)
			}
		}

		if applyErr != nil {
			printApplyErrors(cmd.ErrOrStderr(), applyErr)
			return errSilent
		}
		return nil
	},
}

func printApplyResult(w io.Writer, res *manifest.Result, dryRun bool) {
	verb := "applied"
	if dryRun {
		verb = "would apply"
	}
	state := "updated"
	if res.LayoutCreated {
		state = "created"
	}
	line := ui.Pass("%s: layout '%s' %s (%s)", res.Path, res.Layout, verb, state)
	fmt.Fprintln(w, line)

	counts := []string{
		fmt.Sprintf("%d created", len(res.Created)),
		fmt.Sprintf("%d updated", len(res.Updated)),
	}
	if len(res.Detached) > 0 {
		counts = append(counts, fmt.Sprintf("%d detached", len(res.Detached)))
	}
	fmt.Fprintf(w, "    widgets: %s\n", ui.RenderMuted(strings.Join(counts, ", ")))
}

// printApplyErrors lists every failed manifest, with per-widget problems for
// validation failures.
func printApplyErrors(w io.Writer, err error) {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	for _, e := range errs {
		var invalid *manifest.InvalidError
		if !errors.As(e, &invalid) {
			fmt.Fprintln(w, ui.Fail("%v", e))
			continue
		}
		fmt.Fprintln(w, ui.Fail("%s: %d invalid widget(s)", invalid.Path, len(invalid.Problems)))
		ids := make([]string, 0, len(invalid.Problems))
		for id := range invalid.Problems {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			for _, p := range invalid.Problems[id] {
				fmt.Fprintf(w, "  - %s: %s\n", id, p)
			}
		}
	}
}

func init() {
	applyCmd.Flags().StringArrayP("file", "f", nil, "manifest file, directory or glob (repeatable)")
	applyCmd.Flags().Bool("prune", false, "detach widgets the manifest no longer lists")
	applyCmd.Flags().Bool("dry-run", false, "validate and report without writing")
}
