// Package sqlutil holds row scanning and encoding shared by the SQL backends.
package sqlutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
)

// WidgetColumns is the column list used for SELECT statements on the widgets
// table, in the order ScanWidget expects.
const WidgetColumns = `id, layout_id, widget_id, widget_type, label, config,
	pos_x, pos_y, pos_width, pos_height, visible, created_at`

// LayoutColumns is the column list ScanLayout expects.
const LayoutColumns = `id, name, columns, row_height, created_at`

// Executor is the interface satisfied by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type Scannable interface {
	Scan(dest ...any) error
}

// ScanWidget scans a single row into a model.Widget. The attached layout's
// row ID is returned alongside, zero when unattached.
func ScanWidget(row Scannable) (*model.Widget, int64, error) {
	var (
		w        model.Widget
		layoutID sql.NullInt64
		label    sql.NullString
		config   []byte
	)
	err := row.Scan(
		&w.RowID,
		&layoutID,
		&w.ID,
		&w.Type,
		&label,
		&config,
		&w.Position.X,
		&w.Position.Y,
		&w.Position.Width,
		&w.Position.Height,
		&w.Visible,
		&w.CreatedAt,
	)
	if err != nil {
		return nil, 0, err
	}
	w.Label = label.String
	w.CreatedAt = w.CreatedAt.UTC()

	w.Config = model.Config{}
	if len(config) > 0 {
		cfg, err := model.ParseConfig(config)
		if err != nil {
			return nil, 0, fmt.Errorf("decode config of widget %s: %w", w.ID, err)
		}
		w.Config = cfg
	}
	return &w, layoutID.Int64, nil
}

// ScanWidgets drains rows into widgets. It closes rows.
func ScanWidgets(rows *sql.Rows) ([]*model.Widget, error) {
	defer rows.Close()

	widgets := []*model.Widget{}
	for rows.Next() {
		w, _, err := ScanWidget(rows)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return widgets, nil
}

// ScanLayout scans a single row into a model.Layout with no widgets.
func ScanLayout(row Scannable) (*model.Layout, error) {
	l := model.Layout{Widgets: []*model.Widget{}}
	if err := row.Scan(&l.RowID, &l.Name, &l.Columns, &l.RowHeight, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}

// ScanLayoutSummaries drains rows of name, columns, row_height, created_at
// and widget_count. It closes rows.
func ScanLayoutSummaries(rows *sql.Rows) ([]*model.LayoutSummary, error) {
	defer rows.Close()

	summaries := []*model.LayoutSummary{}
	for rows.Next() {
		var s model.LayoutSummary
		if err := rows.Scan(&s.Name, &s.Columns, &s.RowHeight, &s.CreatedAt, &s.WidgetCount); err != nil {
			return nil, err
		}
		s.CreatedAt = s.CreatedAt.UTC()
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// EncodeConfig returns the JSON text stored in the config column.
func EncodeConfig(c model.Config) ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// NullRowID maps a zero row ID to SQL NULL.
func NullRowID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// CreatedAt returns t, or the current time when t is zero.
func CreatedAt(t time.Time) time.Time {
	if t.IsZero() {
		return model.Now()
	}
	return t.UTC()
}

// NotFound maps sql.ErrNoRows to store.ErrNotFound, wrapped with what.
func NotFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return err
}

// SnapshotRowIDs records the row IDs of l and its widgets. The returned func
// puts them back, for use after a rolled back save.
func SnapshotRowIDs(l *model.Layout) (restore func()) {
	layoutID := l.RowID
	widgetIDs := make(map[*model.Widget]int64, len(l.Widgets))
	for _, w := range l.Widgets {
		widgetIDs[w] = w.RowID
	}
	return func() {
		l.RowID = layoutID
		for w, id := range widgetIDs {
			w.RowID = id
		}
	}
}

// RequireRow returns store.ErrNotFound, wrapped with what, when res
// affected no rows.
func RequireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}
