package store

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
)

var (
	// ErrNotFound is returned when a widget or layout does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when inserting a layout whose name is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the persistence interface for widgets and layouts.
type Store interface {
	// Widgets
	GetWidget(ctx context.Context, widgetID string) (*model.Widget, error)
	// SaveWidget inserts w, or updates it when it is already stored. A
	// non-zero layoutID attaches the widget; zero leaves attachment as is.
	SaveWidget(ctx context.Context, w *model.Widget, layoutID int64) error
	DeleteWidget(ctx context.Context, widgetID string) (bool, error)
	ListWidgets(ctx context.Context, filter model.WidgetFilter) ([]*model.Widget, error)

	// Layouts
	// SaveLayout inserts or updates l and saves every widget it holds,
	// attached to l.
	SaveLayout(ctx context.Context, l *model.Layout) error
	GetLayout(ctx context.Context, name string) (*model.Layout, error)
	ListLayouts(ctx context.Context) ([]*model.LayoutSummary, error)
	ListLayoutWidgets(ctx context.Context, layoutID int64) ([]*model.Widget, error)
	DeleteLayout(ctx context.Context, name string) (bool, error)

	// Attachment
	AttachWidget(ctx context.Context, layoutID int64, widgetID string) error
	DetachWidget(ctx context.Context, widgetID string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
