package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/widgetfactory/internal/idgen"
	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
)

// FormatVersion is written into every snapshot header.
const FormatVersion = "1"

// Record type discriminators.
const (
	recordHeader = "header"
	recordLayout = "layout"
	recordWidget = "widget"
)

// Header is the first JSONL record written by ExportJSONL.
type Header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	SnapshotID  string    `json:"snapshot_id"`
	Timestamp   time.Time `json:"timestamp"`
	LayoutCount int       `json:"layout_count"`
	WidgetCount int       `json:"widget_count"`
}

// record wraps a single JSONL line with a type discriminator. Widget records
// name the layout they belong to, if any.
type record struct {
	Type   string `json:"type"`
	Layout string `json:"layout,omitempty"`
	Data   any    `json:"data"`
}

// layoutData is the payload of a layout record.
type layoutData struct {
	Name      string    `json:"name"`
	Columns   int       `json:"columns"`
	RowHeight int       `json:"row_height"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportJSONL writes all layouts and widgets from the store as JSONL to w.
// Layouts come first, sorted by name, followed by each layout's widgets in
// grid order and finally the unattached widgets in creation order.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) (*Header, error) {
	summaries, err := s.ListLayouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}

	layouts := make([]*model.Layout, 0, len(summaries))
	widgetCount := 0
	for _, sum := range summaries {
		l, err := s.GetLayout(ctx, sum.Name)
		if err != nil {
			return nil, fmt.Errorf("get layout %q: %w", sum.Name, err)
		}
		layouts = append(layouts, l)
		widgetCount += len(l.Widgets)
	}

	loose, err := s.ListWidgets(ctx, model.WidgetFilter{Unattached: true})
	if err != nil {
		return nil, fmt.Errorf("list unattached widgets: %w", err)
	}
	widgetCount += len(loose)

	snapshotID, err := idgen.SnapshotID()
	if err != nil {
		return nil, err
	}
	h := &Header{
		Version:     FormatVersion,
		Type:        recordHeader,
		SnapshotID:  snapshotID,
		Timestamp:   model.Now(),
		LayoutCount: len(layouts),
		WidgetCount: widgetCount,
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(h); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}

	for _, l := range layouts {
		data := layoutData{Name: l.Name, Columns: l.Columns, RowHeight: l.RowHeight, CreatedAt: l.CreatedAt}
		if err := enc.Encode(record{Type: recordLayout, Data: data}); err != nil {
			return nil, fmt.Errorf("encode layout %q: %w", l.Name, err)
		}
	}

	for _, l := range layouts {
		for _, wd := range l.Widgets {
			if err := enc.Encode(record{Type: recordWidget, Layout: l.Name, Data: model.SerializeWidget(wd)}); err != nil {
				return nil, fmt.Errorf("encode widget %s: %w", wd.ID, err)
			}
		}
	}

	for _, wd := range loose {
		if err := enc.Encode(record{Type: recordWidget, Data: model.SerializeWidget(wd)}); err != nil {
			return nil, fmt.Errorf("encode widget %s: %w", wd.ID, err)
		}
	}

	return h, nil
}
