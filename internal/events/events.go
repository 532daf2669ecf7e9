package events

import (
	"context"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
)

// Event topic constants
const (
	TopicWidgetCreated  = "widgets.widget.created"
	TopicWidgetUpdated  = "widgets.widget.updated"
	TopicWidgetDeleted  = "widgets.widget.deleted"
	TopicWidgetAttached = "widgets.widget.attached"
	TopicWidgetDetached = "widgets.widget.detached"

	TopicLayoutSaved   = "widgets.layout.saved"
	TopicLayoutDeleted = "widgets.layout.deleted"

	// Emitted once per successful `wf backup` / `wf restore`.
	TopicBackupCompleted  = "widgets.backup.completed"
	TopicRestoreCompleted = "widgets.restore.completed"

	// TopicAll matches every widgetfactory event.
	TopicAll = "widgets.>"
)

// Event types

type WidgetCreated struct {
	Widget *model.Widget `json:"widget"`
}

type WidgetUpdated struct {
	Widget *model.Widget `json:"widget"`
}

type WidgetDeleted struct {
	WidgetID string `json:"widget_id"`
}

type WidgetAttached struct {
	WidgetID string `json:"widget_id"`
	Layout   string `json:"layout"`
}

type WidgetDetached struct {
	WidgetID string `json:"widget_id"`
	Layout   string `json:"layout,omitempty"`
}

type LayoutSaved struct {
	Name        string `json:"name"`
	Columns     int    `json:"columns"`
	RowHeight   int    `json:"row_height"`
	WidgetCount int    `json:"widget_count"`
}

type LayoutDeleted struct {
	Name string `json:"name"`
}

type BackupCompleted struct {
	SnapshotID  string `json:"snapshot_id"`
	Destination string `json:"destination"`
	Layouts     int    `json:"layouts"`
	Widgets     int    `json:"widgets"`
}

type RestoreCompleted struct {
	Source  string `json:"source"`
	Layouts int    `json:"layouts"`
	Widgets int    `json:"widgets"`
}

// LayoutSavedFrom summarizes l for a TopicLayoutSaved event.
func LayoutSavedFrom(l *model.Layout) LayoutSaved {
	return LayoutSaved{
		Name:        l.Name,
		Columns:     l.Columns,
		RowHeight:   l.RowHeight,
		WidgetCount: len(l.Widgets),
	}
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
