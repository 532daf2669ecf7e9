package backup

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
)

// maxLine bounds a single JSONL record.
const maxLine = 4 << 20

// RestoreResult counts what ImportJSONL wrote.
type RestoreResult struct {
	SnapshotID string `json:"snapshot_id"`
	Layouts    int    `json:"layouts"`
	Widgets    int    `json:"widgets"`
}

// inRecord is a record as read back, with the payload left undecoded.
type inRecord struct {
	Type   string          `json:"type"`
	Layout string          `json:"layout"`
	Data   json.RawMessage `json:"data"`
}

// ImportJSONL reads a snapshot written by ExportJSONL and upserts every
// layout and widget in a single transaction. Existing layouts are matched by
// name and existing widgets by widget ID; nothing is deleted.
func ImportJSONL(ctx context.Context, s store.Store, r io.Reader) (*RestoreResult, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, fmt.Errorf("read header: empty snapshot")
	}
	var h Header
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if h.Type != recordHeader {
		return nil, fmt.Errorf("decode header: first record has type %q", h.Type)
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %q", h.Version)
	}

	var records []inRecord
	line := 1
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec inRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	res := &RestoreResult{SnapshotID: h.SnapshotID}
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		res.Layouts, res.Widgets = 0, 0
		layoutIDs := make(map[string]int64)
		for i, rec := range records {
			switch rec.Type {
			case recordLayout:
				l, err := restoreLayout(ctx, tx, rec.Data)
				if err != nil {
					return fmt.Errorf("record %d: %w", i+2, err)
				}
				layoutIDs[l.Name] = l.RowID
				res.Layouts++
			case recordWidget:
				if err := restoreWidget(ctx, tx, rec, layoutIDs); err != nil {
					return fmt.Errorf("record %d: %w", i+2, err)
				}
				res.Widgets++
			default:
				return fmt.Errorf("record %d: unknown record type %q", i+2, rec.Type)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func restoreLayout(ctx context.Context, tx store.Store, raw json.RawMessage) (*model.Layout, error) {
	var d layoutData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if d.Name == "" {
		return nil, fmt.Errorf("decode layout: missing name")
	}

	l, err := tx.GetLayout(ctx, d.Name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		l = model.NewLayout(d.Name)
		if !d.CreatedAt.IsZero() {
			l.CreatedAt = d.CreatedAt.UTC()
		}
	case err != nil:
		return nil, err
	}
	if d.Columns > 0 {
		l.Columns = d.Columns
	}
	if d.RowHeight > 0 {
		l.RowHeight = d.RowHeight
	}
	// Widgets are restored from their own records.
	l.Widgets = nil
	if err := tx.SaveLayout(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func restoreWidget(ctx context.Context, tx store.Store, rec inRecord, layoutIDs map[string]int64) error {
	w, err := model.DeserializeWidget(rec.Data)
	if err != nil {
		return err
	}

	var layoutID int64
	if rec.Layout != "" {
		id, ok := layoutIDs[rec.Layout]
		if !ok {
			l, err := tx.GetLayout(ctx, rec.Layout)
			if err != nil {
				return fmt.Errorf("widget %s: layout %q: %w", w.ID, rec.Layout, err)
			}
			id = l.RowID
			layoutIDs[rec.Layout] = id
		}
		layoutID = id
	}
	return tx.SaveWidget(ctx, w, layoutID)
}
