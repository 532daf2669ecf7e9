package model

import (
	"strings"
	"time"
)

// Default layout grid settings.
const (
	DefaultColumns   = 12
	DefaultRowHeight = 60
)

// Layout is a named, ordered collection of widgets sharing one grid.
type Layout struct {
	Name      string    `json:"name"`
	Columns   int       `json:"columns"`
	RowHeight int       `json:"row_height"`
	Widgets   []*Widget `json:"widgets"`
	CreatedAt time.Time `json:"created_at"`

	// RowID is the storage handle, zero until the layout is first saved.
	RowID int64 `json:"-"`
}

// NewLayout returns an unsaved, empty layout with default grid settings.
func NewLayout(name string) *Layout {
	return &Layout{
		Name:      name,
		Columns:   DefaultColumns,
		RowHeight: DefaultRowHeight,
		Widgets:   []*Widget{},
		CreatedAt: Now(),
	}
}

// IsPersisted reports whether the layout has been saved.
func (l *Layout) IsPersisted() bool {
	return l.RowID != 0
}

// Slug returns the name lower-cased with spaces replaced by hyphens.
func (l *Layout) Slug() string {
	return strings.ToLower(strings.ReplaceAll(l.Name, " ", "-"))
}

// Add appends w to the layout unless a widget with the same ID is present.
func (l *Layout) Add(w *Widget) {
	for _, existing := range l.Widgets {
		if existing.ID == w.ID {
			return
		}
	}
	l.Widgets = append(l.Widgets, w)
}

// LayoutSummary is a layout row with its attached widget count.
type LayoutSummary struct {
	Name        string    `json:"name"`
	Columns     int       `json:"columns"`
	RowHeight   int       `json:"row_height"`
	CreatedAt   time.Time `json:"created_at"`
	WidgetCount int       `json:"widget_count"`
}
