// Package manifest loads declarative layout files (TOML, YAML or JSON) and
// applies them to a store.
//
// A manifest names one layout and lists its widgets:
//
//	[layout]
//	name = "dashboard"
//	columns = 12
//
//	[[widgets]]
//	id = "revenue-chart"
//	type = "chart"
//	label = "Revenue"
//	position = { x = 0, y = 0, width = 8, height = 4 }
//	config = { chartType = "line", data = [1, 2, 3] }
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
)

// Manifest is a single layout file.
type Manifest struct {
	Layout  LayoutSpec   `toml:"layout" yaml:"layout" json:"layout"`
	Widgets []WidgetSpec `toml:"widgets" yaml:"widgets" json:"widgets"`

	// Path is the file the manifest was read from.
	Path string `toml:"-" yaml:"-" json:"-"`
}

// LayoutSpec holds the layout settings. Zero Columns and RowHeight fall back
// to the model defaults.
type LayoutSpec struct {
	Name      string `toml:"name" yaml:"name" json:"name"`
	Columns   int    `toml:"columns" yaml:"columns" json:"columns"`
	RowHeight int    `toml:"row_height" yaml:"row_height" json:"row_height"`
}

// WidgetSpec declares one widget. An empty ID gets a fresh one on apply.
type WidgetSpec struct {
	ID       string         `toml:"id" yaml:"id" json:"id"`
	Type     string         `toml:"type" yaml:"type" json:"type"`
	Label    string         `toml:"label" yaml:"label" json:"label"`
	Config   map[string]any `toml:"config" yaml:"config" json:"config"`
	Position *PositionSpec  `toml:"position" yaml:"position" json:"position"`
	Visible  *bool          `toml:"visible" yaml:"visible" json:"visible"`
}

// PositionSpec fields left unset keep the default position's values.
type PositionSpec struct {
	X      *int `toml:"x" yaml:"x" json:"x"`
	Y      *int `toml:"y" yaml:"y" json:"y"`
	Width  *int `toml:"width" yaml:"width" json:"width"`
	Height *int `toml:"height" yaml:"height" json:"height"`
}

// Extensions lists the file extensions Load understands.
var Extensions = []string{".toml", ".yaml", ".yml", ".json"}

// IsManifest reports whether path has a manifest extension.
func IsManifest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads and decodes the manifest at path, choosing the decoder by file
// extension. Unknown keys are rejected.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse decodes a manifest in the format named by ext (".toml", ".yaml",
// ".yml" or ".json").
func Parse(data []byte, ext string) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		var unknown []string
		for _, k := range md.Undecoded() {
			// Nested tables under a widget's config are free-form.
			if len(k) > 2 && k[0] == "widgets" && k[1] == "config" {
				continue
			}
			unknown = append(unknown, k.String())
		}
		if len(unknown) > 0 {
			return nil, fmt.Errorf("decode toml: unknown keys %s", strings.Join(unknown, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest extension %q (use %s)", ext, strings.Join(Extensions, ", "))
	}

	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) check() error {
	if strings.TrimSpace(m.Layout.Name) == "" {
		return errors.New("layout.name is required")
	}
	if m.Layout.Columns < 0 || m.Layout.RowHeight < 0 {
		return errors.New("layout.columns and layout.row_height must not be negative")
	}
	seen := make(map[string]bool)
	for i, w := range m.Widgets {
		if w.Type == "" {
			return fmt.Errorf("widgets[%d]: type is required", i)
		}
		if w.ID == "" {
			continue
		}
		if seen[w.ID] {
			return fmt.Errorf("widgets[%d]: duplicate id %q", i, w.ID)
		}
		seen[w.ID] = true
	}
	return nil
}

// NewLayout returns an unsaved layout carrying the manifest's settings.
func (m *Manifest) NewLayout() *model.Layout {
	l := model.NewLayout(m.Layout.Name)
	m.applySettings(l)
	return l
}

func (m *Manifest) applySettings(l *model.Layout) {
	if m.Layout.Columns > 0 {
		l.Columns = m.Layout.Columns
	}
	if m.Layout.RowHeight > 0 {
		l.RowHeight = m.Layout.RowHeight
	}
}

// Widget builds an unsaved widget from the spec.
func (s WidgetSpec) Widget() (*model.Widget, error) {
	w := model.NewWidget(model.WidgetType(s.Type))
	if s.ID != "" {
		w.ID = s.ID
	}
	w.Label = s.Label
	if s.Config != nil {
		cfg, err := model.ConfigOf(s.Config)
		if err != nil {
			return nil, fmt.Errorf("widget %s: %w", w.ID, err)
		}
		w.Config = cfg
	}
	if p := s.Position; p != nil {
		for _, f := range []struct {
			src *int
			dst *int
		}{
			{p.X, &w.Position.X},
			{p.Y, &w.Position.Y},
			{p.Width, &w.Position.Width},
			{p.Height, &w.Position.Height},
		} {
			if f.src != nil {
				*f.dst = *f.src
			}
		}
	}
	if s.Visible != nil {
		w.Visible = *s.Visible
	}
	return w, nil
}

// LoadAll loads every manifest in paths, sorted by layout name.
func LoadAll(paths []string) ([]*Manifest, error) {
	var (
		out   []*Manifest
		owner = make(map[string]string)
	)
	for _, p := range paths {
		m, err := Load(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := owner[m.Layout.Name]; ok {
			return nil, fmt.Errorf("layout %q is declared in both %s and %s", m.Layout.Name, prev, p)
		}
		owner[m.Layout.Name] = p
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Layout.Name < out[j].Layout.Name })
	return out, nil
}
