package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultCommitMessage is used for snapshot commits.
const DefaultCommitMessage = "backup: update widget snapshot"

// GitDestination commits the snapshot to a file in a local clone and pushes
// it to the clone's origin. An unchanged snapshot makes no commit.
type GitDestination struct {
	repo   string
	file   string // relative to repo
	branch string

	// Message is the commit message; DefaultCommitMessage when empty.
	Message string
	// Output receives git's stdout and stderr. Defaults to os.Stderr.
	Output io.Writer
}

// NewGitDestination returns a destination writing file on branch of the
// existing clone at repo.
func NewGitDestination(repo, file, branch string) *GitDestination {
	return &GitDestination{repo: repo, file: file, branch: branch, Output: os.Stderr}
}

func (d *GitDestination) Write(ctx context.Context, data []byte) error {
	if err := d.git(ctx, "checkout", d.branch); err != nil {
		return err
	}
	// Fails harmlessly when origin has no such branch yet.
	_ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	if err := NewFileDestination(filepath.Join(d.repo, d.file)).Write(ctx, data); err != nil {
		return err
	}
	if err := d.git(ctx, "add", "--", d.file); err != nil {
		return err
	}

	changed, err := d.hasStagedChanges(ctx)
	if err != nil || !changed {
		return err
	}

	msg := d.Message
	if msg == "" {
		msg = DefaultCommitMessage
	}
	if err := d.git(ctx, "commit", "-m", msg); err != nil {
		return err
	}
	return d.git(ctx, "push", "origin", d.branch)
}

func (d *GitDestination) String() string {
	return "git:" + filepath.Join(d.repo, d.file) + "@" + d.branch
}

// hasStagedChanges reports whether the index differs from HEAD. git diff
// --quiet exits 1 for a difference; any other failure is an error.
func (d *GitDestination) hasStagedChanges(ctx context.Context) (bool, error) {
	err := d.command(ctx, "diff", "--cached", "--quiet").Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return false, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
		return true, nil
	}
	return false, fmt.Errorf("git diff: %w", err)
}

func (d *GitDestination) git(ctx context.Context, args ...string) error {
	if err := d.command(ctx, args...).Run(); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}

func (d *GitDestination) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	out := d.Output
	if out == nil {
		out = os.Stderr
	}
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd
}
