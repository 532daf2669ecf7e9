// Package export renders layouts as JSON, CSS grid rules or HTML scaffolding.
package export

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/reactprops"
)

// Format is an export output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSS  Format = "css"
	FormatHTML Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSS, FormatHTML}

// Ext returns the file extension conventionally used for f.
func (f Format) Ext() string {
	return "." + string(f)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSS:
		return "text/css"
	case FormatHTML:
		return "text/html"
	}
	return "application/octet-stream"
}

// UnsupportedFormatError is returned for an unrecognized format token.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %s (use json, css, or html)", e.Format)
}

// ParseFormat validates a format token.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSS, FormatHTML:
		return f, nil
	}
	return "", &UnsupportedFormatError{Format: s}
}

// Export renders l in the given format. Widgets appear in l.Widgets order.
func Export(l *model.Layout, format string) (string, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	switch f {
	case FormatJSON:
		return renderJSON(l)
	case FormatCSS:
		return renderCSS(l), nil
	default:
		return renderHTML(l), nil
	}
}

type layoutDocument struct {
	Name      string           `json:"name"`
	Columns   int              `json:"columns"`
	RowHeight int              `json:"row_height"`
	Widgets   []map[string]any `json:"widgets"`
}

func renderJSON(l *model.Layout) (string, error) {
	doc := layoutDocument{
		Name:      l.Name,
		Columns:   l.Columns,
		RowHeight: l.RowHeight,
		Widgets:   make([]map[string]any, 0, len(l.Widgets)),
	}
	for _, w := range l.Widgets {
		doc.Widgets = append(doc.Widgets, model.SerializeWidget(w))
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode layout %s: %w", l.Name, err)
	}
	return string(data), nil
}

func gridColumn(p model.Position) string {
	return fmt.Sprintf("grid-column: %d / span %d;", p.X+1, p.Width)
}

func gridRow(p model.Position) string {
	return fmt.Sprintf("grid-row: %d / span %d;", p.Y+1, p.Height)
}

func renderCSS(l *model.Layout) string {
	lines := []string{
		fmt.Sprintf("/* Layout: %s */", l.Name),
		fmt.Sprintf(".layout-%s {", l.Slug()),
		"  display: grid;",
		fmt.Sprintf("  grid-template-columns: repeat(%d, 1fr);", l.Columns),
		fmt.Sprintf("  row-gap: %dpx;", l.RowHeight),
		"}",
		"",
	}
	for _, w := range l.Widgets {
		lines = append(lines,
			fmt.Sprintf(".widget-%s {", w.ShortID()),
			"  "+gridColumn(w.Position),
			"  "+gridRow(w.Position),
			"}",
			"",
		)
	}
	return strings.Join(lines, "\n")
}

func renderHTML(l *model.Layout) string {
	rows := []string{
		fmt.Sprintf("<!-- Layout: %s -->", commentSafe(l.Name)),
		fmt.Sprintf(`<div class="grid-layout" data-columns="%d">`, l.Columns),
	}
	for _, w := range l.Widgets {
		component := reactprops.Generate(w).ComponentName
		style := gridColumn(w.Position) + " " + gridRow(w.Position)
		rows = append(rows, fmt.Sprintf(
			`  <div class="widget widget-%s" data-id="%s" style="%s"><!-- %s --></div>`,
			html.EscapeString(string(w.Type)),
			html.EscapeString(w.ID),
			style,
			component,
		))
	}
	rows = append(rows, "</div>")
	return strings.Join(rows, "\n")
}

// commentSafe keeps s from terminating an HTML comment early.
func commentSafe(s string) string {
	return strings.ReplaceAll(s, "--", "- -")
}
