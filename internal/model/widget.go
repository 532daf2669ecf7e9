package model

import (
	"time"

	"github.com/alfredjeanlab/widgetfactory/internal/idgen"
)

// Position places a widget on the grid: X, Y is the origin cell and
// Width, Height the span in cells.
type Position struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultPosition is used when a widget is created without a position.
func DefaultPosition() Position {
	return Position{X: 0, Y: 0, Width: 4, Height: 2}
}

// Widget is a single typed UI element with configuration and grid position.
type Widget struct {
	ID        string     `json:"widget_id"`
	Type      WidgetType `json:"widget_type"`
	Label     string     `json:"label"`
	Config    Config     `json:"config"`
	Position  Position   `json:"position"`
	Visible   bool       `json:"visible"`
	CreatedAt time.Time  `json:"created_at"`

	// RowID is the storage handle, zero until the widget is first saved.
	RowID int64 `json:"-"`
}

// NewWidget returns an unsaved widget of type t with a fresh ID and defaults.
func NewWidget(t WidgetType) *Widget {
	return &Widget{
		ID:        idgen.WidgetID(),
		Type:      t,
		Config:    Config{},
		Position:  DefaultPosition(),
		Visible:   true,
		CreatedAt: Now(),
	}
}

// IsPersisted reports whether the widget has been saved.
func (w *Widget) IsPersisted() bool {
	return w.RowID != 0
}

// ShortID returns the first 8 characters of the widget ID.
func (w *Widget) ShortID() string {
	r := []rune(w.ID)
	if len(r) <= 8 {
		return w.ID
	}
	return string(r[:8])
}

// WidgetFilter narrows Store.ListWidgets.
type WidgetFilter struct {
	Type       []WidgetType
	Unattached bool
	Limit      int
}

// Now returns the current time in UTC without a monotonic clock reading.
func Now() time.Time {
	return time.Now().UTC().Round(0)
}
