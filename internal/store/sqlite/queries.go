package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
	"github.com/alfredjeanlab/widgetfactory/internal/store/sqlutil"
)

type executor = sqlutil.Executor

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func querySaveWidget(ctx context.Context, db executor, w *model.Widget, layoutID int64) error {
	config, err := sqlutil.EncodeConfig(w.Config)
	if err != nil {
		return err
	}
	now := model.Now()
	w.CreatedAt = sqlutil.CreatedAt(w.CreatedAt)

	if !w.IsPersisted() {
		err := db.QueryRowContext(ctx, `
			INSERT INTO widgets (
				widget_id, layout_id, widget_type, label, config,
				pos_x, pos_y, pos_width, pos_height, visible, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(widget_id) DO UPDATE SET
				layout_id = COALESCE(excluded.layout_id, widgets.layout_id),
				widget_type = excluded.widget_type,
				label = excluded.label,
				config = excluded.config,
				pos_x = excluded.pos_x,
				pos_y = excluded.pos_y,
				pos_width = excluded.pos_width,
				pos_height = excluded.pos_height,
				visible = excluded.visible,
				updated_at = excluded.updated_at
			RETURNING id`,
			w.ID,
			sqlutil.NullRowID(layoutID),
			string(w.Type),
			w.Label,
			string(config),
			w.Position.X,
			w.Position.Y,
			w.Position.Width,
			w.Position.Height,
			w.Visible,
			w.CreatedAt,
			now,
		).Scan(&w.RowID)
		if err != nil {
			return fmt.Errorf("insert widget %s: %w", w.ID, err)
		}
		return nil
	}

	res, err := db.ExecContext(ctx, `
		UPDATE widgets SET
			layout_id = COALESCE(?, layout_id),
			widget_type = ?, label = ?, config = ?,
			pos_x = ?, pos_y = ?, pos_width = ?, pos_height = ?,
			visible = ?, updated_at = ?
		WHERE id = ?`,
		sqlutil.NullRowID(layoutID),
		string(w.Type),
		w.Label,
		string(config),
		w.Position.X,
		w.Position.Y,
		w.Position.Width,
		w.Position.Height,
		w.Visible,
		now,
		w.RowID,
	)
	if err != nil {
		return fmt.Errorf("update widget %s: %w", w.ID, err)
	}
	return sqlutil.RequireRow(res, "widget "+w.ID)
}

func queryGetWidget(ctx context.Context, db executor, widgetID string) (*model.Widget, error) {
	row := db.QueryRowContext(ctx, `SELECT `+sqlutil.WidgetColumns+` FROM widgets WHERE widget_id = ?`, widgetID)
	w, _, err := sqlutil.ScanWidget(row)
	if err != nil {
		return nil, sqlutil.NotFound(err, "widget "+widgetID)
	}
	return w, nil
}

func queryDeleteWidget(ctx context.Context, db executor, widgetID string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM widgets WHERE widget_id = ?`, widgetID)
	if err != nil {
		return false, fmt.Errorf("delete widget %s: %w", widgetID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete widget %s: %w", widgetID, err)
	}
	return n > 0, nil
}

func queryListWidgets(ctx context.Context, db executor, filter model.WidgetFilter) ([]*model.Widget, error) {
	var (
		where []string
		args  []any
	)

	if len(filter.Type) > 0 {
		placeholders := make([]string, len(filter.Type))
		for i, t := range filter.Type {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, "widget_type IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.Unattached {
		where = append(where, "layout_id IS NULL")
	}

	query := `SELECT ` + sqlutil.WidgetColumns + ` FROM widgets`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list widgets: %w", err)
	}
	return sqlutil.ScanWidgets(rows)
}

func querySaveLayout(ctx context.Context, db executor, l *model.Layout) error {
	now := model.Now()

	if !l.IsPersisted() {
		l.CreatedAt = sqlutil.CreatedAt(l.CreatedAt)
		err := db.QueryRowContext(ctx, `
			INSERT INTO layouts (name, columns, row_height, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`,
			l.Name, l.Columns, l.RowHeight, l.CreatedAt, now,
		).Scan(&l.RowID)
		if isUniqueViolation(err) {
			return fmt.Errorf("layout %q: %w", l.Name, store.ErrAlreadyExists)
		}
		if err != nil {
			return fmt.Errorf("insert layout %q: %w", l.Name, err)
		}
	} else {
		res, err := db.ExecContext(ctx, `
			UPDATE layouts SET name = ?, columns = ?, row_height = ?, updated_at = ?
			WHERE id = ?`,
			l.Name, l.Columns, l.RowHeight, now, l.RowID,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("layout %q: %w", l.Name, store.ErrAlreadyExists)
		}
		if err != nil {
			return fmt.Errorf("update layout %q: %w", l.Name, err)
		}
		if err := sqlutil.RequireRow(res, fmt.Sprintf("layout %q", l.Name)); err != nil {
			return err
		}
	}

	for _, w := range l.Widgets {
		if err := querySaveWidget(ctx, db, w, l.RowID); err != nil {
			return err
		}
	}
	return nil
}

func queryGetLayout(ctx context.Context, db executor, name string) (*model.Layout, error) {
	row := db.QueryRowContext(ctx, `SELECT `+sqlutil.LayoutColumns+` FROM layouts WHERE name = ?`, name)
	l, err := sqlutil.ScanLayout(row)
	if err != nil {
		return nil, sqlutil.NotFound(err, fmt.Sprintf("layout %q", name))
	}

	widgets, err := queryListLayoutWidgets(ctx, db, l.RowID)
	if err != nil {
		return nil, err
	}
	l.Widgets = widgets
	return l, nil
}

func queryListLayoutWidgets(ctx context.Context, db executor, layoutID int64) ([]*model.Widget, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+sqlutil.WidgetColumns+` FROM widgets
		WHERE layout_id = ?
		ORDER BY pos_y, pos_x, id`, layoutID)
	if err != nil {
		return nil, fmt.Errorf("list layout widgets: %w", err)
	}
	return sqlutil.ScanWidgets(rows)
}

func queryListLayouts(ctx context.Context, db executor) ([]*model.LayoutSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT l.name, l.columns, l.row_height, l.created_at, COUNT(w.id) AS widget_count
		FROM layouts l
		LEFT JOIN widgets w ON w.layout_id = l.id
		GROUP BY l.id
		ORDER BY l.name`)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	return sqlutil.ScanLayoutSummaries(rows)
}

func queryDeleteLayout(ctx context.Context, db executor, name string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete layout %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete layout %q: %w", name, err)
	}
	return n > 0, nil
}

func queryAttachWidget(ctx context.Context, db executor, layoutID int64, widgetID string) error {
	res, err := db.ExecContext(ctx, `UPDATE widgets SET layout_id = ?, updated_at = ? WHERE widget_id = ?`,
		layoutID, model.Now(), widgetID)
	if err != nil {
		return fmt.Errorf("attach widget %s: %w", widgetID, err)
	}
	return sqlutil.RequireRow(res, "widget "+widgetID)
}

func queryDetachWidget(ctx context.Context, db executor, widgetID string) error {
	res, err := db.ExecContext(ctx, `UPDATE widgets SET layout_id = NULL, updated_at = ? WHERE widget_id = ?`,
		model.Now(), widgetID)
	if err != nil {
		return fmt.Errorf("detach widget %s: %w", widgetID, err)
	}
	return sqlutil.RequireRow(res, "widget "+widgetID)
}
