package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/widgetfactory/internal/backup"
	"github.com/alfredjeanlab/widgetfactory/internal/events"
	"github.com/alfredjeanlab/widgetfactory/internal/ui"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a JSONL snapshot of every layout and widget",
	Long: `Write a JSONL snapshot of every layout and widget.

The snapshot goes to stdout unless --output names a file or s3://bucket/key.
With --git-repo it is also committed to a local clone and pushed. Every
destination is attempted even when an earlier one fails.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		gitRepo, _ := cmd.Flags().GetString("git-repo")
		gitFile, _ := cmd.Flags().GetString("git-file")
		gitBranch, _ := cmd.Flags().GetString("git-branch")

		if gitRepo == "" {
			gitRepo = cfg.Backup.GitRepo
		}
		if gitFile == "" {
			gitFile = cfg.Backup.GitFile
		}
		if gitBranch == "" {
			gitBranch = cfg.Backup.GitBranch
		}

		ctx := cmd.Context()
		var dests []backup.Destination
		toStdout := false
		switch {
		case output == "" && gitRepo != "":
			// git only
		case output == "" || output == "-":
			toStdout = true
			dests = append(dests, &backup.WriterDestination{W: cmd.OutOrStdout()})
		case backup.IsS3URL(output):
			d, err := backup.NewS3DestinationFromURL(ctx, output, cfg.S3.Region, cfg.S3.Endpoint)
			if err != nil {
				return err
			}
			dests = append(dests, d)
		default:
			dests = append(dests, backup.NewFileDestination(output))
		}
		if gitRepo != "" {
			g := backup.NewGitDestination(gitRepo, gitFile, gitBranch)
			g.Output = cmd.ErrOrStderr()
			dests = append(dests, g)
		}

		sum, err := backup.Run(ctx, widgetStore, dests, logger)
		if sum == nil {
			return err
		}
		if len(sum.Destinations) > 0 {
			publish(ctx, events.TopicBackupCompleted, events.BackupCompleted{
				SnapshotID:  sum.SnapshotID,
				Destination: sum.Destinations[0],
				Layouts:     sum.Layouts,
				Widgets:     sum.Widgets,
			})
		}

		// Keep stdout clean when it carries the snapshot itself.
		var report io.Writer = cmd.OutOrStdout()
		if toStdout {
			report = cmd.ErrOrStderr()
		}
		if jsonOutput && !toStdout {
			if perr := printJSON(report, sum); perr != nil {
				return perr
			}
		} else {
			for _, d := range sum.Destinations {
				if d == "-" {
					continue
				}
				fmt.Fprintln(report, ui.Pass("Snapshot %s written to %s (%d layouts, %d widgets)",
					sum.SnapshotID, d, sum.Layouts, sum.Widgets))
			}
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return errSilent
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore -f <snapshot.jsonl|s3://bucket/key|->",
	Short: "Load a JSONL snapshot back into the store",
	Long: `Load a snapshot written by "wf backup". Layouts are matched by name and
widgets by ID; existing rows are updated and nothing is deleted. The whole
snapshot is applied in one transaction.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, _ := cmd.Flags().GetString("file")
		if src == "" {
			return fmt.Errorf("--file is required")
		}

		ctx := cmd.Context()
		var r io.Reader
		switch {
		case src == "-":
			r = cmd.InOrStdin()
		case backup.IsS3URL(src):
			d, err := backup.NewS3DestinationFromURL(ctx, src, cfg.S3.Region, cfg.S3.Endpoint)
			if err != nil {
				return err
			}
			body, err := d.Open(ctx)
			if err != nil {
				return err
			}
			defer body.Close()
			r = body
		default:
			f, err := os.Open(src)
			if err != nil {
				return fmt.Errorf("open snapshot: %w", err)
			}
			defer f.Close()
			r = f
		}

		res, err := backup.ImportJSONL(ctx, widgetStore, r)
		if err != nil {
			return fmt.Errorf("restore %s: %w", src, err)
		}
		logger.Info("restore completed", "snapshot", res.SnapshotID, "layouts", res.Layouts, "widgets", res.Widgets)
		publish(ctx, events.TopicRestoreCompleted, events.RestoreCompleted{
			Source:  src,
			Layouts: res.Layouts,
			Widgets: res.Widgets,
		})

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		pass(cmd, "Restored %d layouts, %d widgets from %s", res.Layouts, res.Widgets, src)
		return nil
	},
}

func init() {
	backupCmd.Flags().StringP("output", "o", "", `write to a file or s3://bucket/key ("-" for stdout)`)
	backupCmd.Flags().String("git-repo", "", "also commit the snapshot to this local git clone and push")
	backupCmd.Flags().String("git-file", "", "snapshot path inside the git repo (default widgets.jsonl)")
	backupCmd.Flags().String("git-branch", "", "branch to commit to (default main)")

	restoreCmd.Flags().StringP("file", "f", "", `snapshot file, s3://bucket/key or "-" for stdin`)
}
