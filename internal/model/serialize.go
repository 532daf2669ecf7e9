package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/alfredjeanlab/widgetfactory/internal/idgen"
)

// timestampLayouts are accepted for created_at, in order. The last one is
// the naive ISO form written by older exports.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// SerializeWidget converts w to a JSON-compatible map with the keys
// widget_id, widget_type, label, config, position, visible and created_at.
func SerializeWidget(w *Widget) map[string]any {
	cfg := w.Config
	if cfg == nil {
		cfg = Config{}
	}
	return map[string]any{
		"widget_id":   w.ID,
		"widget_type": string(w.Type),
		"label":       w.Label,
		"config":      cfg,
		"position": map[string]any{
			"x":      w.Position.X,
			"y":      w.Position.Y,
			"width":  w.Position.Width,
			"height": w.Position.Height,
		},
		"visible":    w.Visible,
		"created_at": w.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// DeserializeWidget decodes a widget from JSON text, applying the same
// defaults as WidgetFromMap.
func DeserializeWidget(data []byte) (*Widget, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode widget: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("decode widget: expected a JSON object")
	}
	return WidgetFromMap(m)
}

// WidgetFromMap builds a widget from a parsed object. Missing keys default to
// a fresh ID, empty label and config, position 0/0/4/2, visible and now.
// widget_type is required.
func WidgetFromMap(m map[string]any) (*Widget, error) {
	rawType, ok := m["widget_type"]
	if !ok || rawType == nil {
		return nil, fmt.Errorf("decode widget: widget_type is required")
	}
	typ, ok := rawType.(string)
	if !ok {
		return nil, fmt.Errorf("decode widget: widget_type must be a string, got %T", rawType)
	}

	w := &Widget{
		ID:       idgen.WidgetID(),
		Type:     WidgetType(typ),
		Config:   Config{},
		Position: DefaultPosition(),
		Visible:  true,
	}

	if raw, ok := m["widget_id"]; ok && raw != nil {
		id, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("decode widget: widget_id must be a string, got %T", raw)
		}
		w.ID = id
	}
	if raw, ok := m["label"]; ok && raw != nil {
		label, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("decode widget: label must be a string, got %T", raw)
		}
		w.Label = label
	}
	if raw, ok := m["config"]; ok && raw != nil {
		cfg, err := configFrom(raw)
		if err != nil {
			return nil, fmt.Errorf("decode widget: %w", err)
		}
		w.Config = cfg
	}
	if raw, ok := m["position"]; ok && raw != nil {
		pos, err := positionFrom(raw)
		if err != nil {
			return nil, fmt.Errorf("decode widget: %w", err)
		}
		w.Position = pos
	}
	if raw, ok := m["visible"]; ok && raw != nil {
		visible, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("decode widget: visible must be a boolean, got %T", raw)
		}
		w.Visible = visible
	}

	w.CreatedAt = Now()
	if raw, ok := m["created_at"]; ok && raw != nil {
		t, err := timestampFrom(raw)
		if err != nil {
			return nil, fmt.Errorf("decode widget: %w", err)
		}
		w.CreatedAt = t
	}

	return w, nil
}

func configFrom(raw any) (Config, error) {
	switch c := raw.(type) {
	case Config:
		return c.Clone(), nil
	case map[string]Value:
		return Config(c).Clone(), nil
	case map[string]any:
		return ConfigOf(c)
	}
	return nil, fmt.Errorf("config must be an object, got %T", raw)
}

func positionFrom(raw any) (Position, error) {
	switch p := raw.(type) {
	case Position:
		return p, nil
	case map[string]any:
		pos := DefaultPosition()
		for key, dst := range map[string]*int{"x": &pos.X, "y": &pos.Y, "width": &pos.Width, "height": &pos.Height} {
			v, ok := p[key]
			if !ok || v == nil {
				continue
			}
			n, err := intFrom(v)
			if err != nil {
				return Position{}, fmt.Errorf("position.%s: %w", key, err)
			}
			*dst = n
		}
		return pos, nil
	}
	return Position{}, fmt.Errorf("position must be an object, got %T", raw)
}

func intFrom(raw any) (int, error) {
	switch n := raw.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("must be an integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("must be an integer, got %s", n)
		}
		return int(f), nil
	}
	return 0, fmt.Errorf("must be an integer, got %T", raw)
}

func timestampFrom(raw any) (time.Time, error) {
	switch t := raw.(type) {
	case time.Time:
		return t.UTC().Round(0), nil
	case string:
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("created_at: unrecognized timestamp %q", t)
	}
	return time.Time{}, fmt.Errorf("created_at must be a string, got %T", raw)
}
