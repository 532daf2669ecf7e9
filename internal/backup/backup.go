// Package backup writes JSONL snapshots of every layout and widget to one or
// more destinations (local file, S3, git) and restores them.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/widgetfactory/internal/store"
)

// Destination is the interface for a backup target (file, S3, git, etc.).
type Destination interface {
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
	// String names the destination in logs and events.
	String() string
}

// Summary describes a completed backup run.
type Summary struct {
	SnapshotID   string   `json:"snapshot_id"`
	Layouts      int      `json:"layouts"`
	Widgets      int      `json:"widgets"`
	Bytes        int      `json:"bytes"`
	Destinations []string `json:"destinations"`
}

// Run exports the store once and writes the snapshot to every destination.
// A failing destination does not stop the others; all failures are returned
// joined.
func Run(ctx context.Context, s store.Store, destinations []Destination, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var buf bytes.Buffer
	snap, err := ExportJSONL(ctx, s, &buf)
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	data := buf.Bytes()

	sum := &Summary{
		SnapshotID: snap.SnapshotID,
		Layouts:    snap.LayoutCount,
		Widgets:    snap.WidgetCount,
		Bytes:      len(data),
	}

	var errs []error
	for _, dest := range destinations {
		if err := dest.Write(ctx, data); err != nil {
			logger.Error("backup destination write failed", "destination", dest.String(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", dest, err))
			continue
		}
		sum.Destinations = append(sum.Destinations, dest.String())
	}

	logger.Info("backup completed",
		"snapshot", sum.SnapshotID,
		"layouts", sum.Layouts,
		"widgets", sum.Widgets,
		"destinations", len(sum.Destinations),
		"bytes", sum.Bytes)
	return sum, errors.Join(errs...)
}
