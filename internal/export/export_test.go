package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
)

func testLayout() *model.Layout {
	l := model.NewLayout("Main Dashboard")
	b := model.NewWidget(model.TypeButton)
	b.ID = "aaaaaaaa-1111-4111-8111-111111111111"
	b.Config = model.Config{"label": model.String("Go")}
	b.Position = model.Position{X: 0, Y: 0, Width: 3, Height: 1}
	c := model.NewWidget(model.TypeChart)
	c.ID = "bbbbbbbb-2222-4222-8222-222222222222"
	c.Position = model.Position{X: 3, Y: 1, Width: 9, Height: 4}
	l.Add(b)
	l.Add(c)
	return l
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"json", "css", "html"} {
		f, err := ParseFormat(s)
		if err != nil || string(f) != s {
			t.Errorf("ParseFormat(%q) = %q, %v", s, f, err)
		}
	}

	_, err := ParseFormat("xml")
	var ufe *UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected *UnsupportedFormatError, got %T", err)
	}
	if ufe.Format != "xml" {
		t.Errorf("Format = %q", ufe.Format)
	}
	if err.Error() != "unsupported export format: xml (use json, css, or html)" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	if _, err := Export(testLayout(), "JSON"); err == nil {
		t.Error("format tokens are case-sensitive")
	}
}

func TestExport_JSON(t *testing.T) {
	l := model.NewLayout("dashboard")
	w := model.NewWidget(model.TypeButton)
	w.Config = model.Config{"label": model.String("Go")}
	l.Add(w)

	out, err := Export(l, "json")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(out, "\n  \"name\": \"dashboard\"") {
		t.Errorf("expected two-space indentation, got:\n%s", out)
	}

	var doc struct {
		Name      string            `json:"name"`
		Columns   int               `json:"columns"`
		RowHeight int               `json:"row_height"`
		Widgets   []json.RawMessage `json:"widgets"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Name != "dashboard" || doc.Columns != 12 || doc.RowHeight != 60 {
		t.Errorf("unexpected header %+v", doc)
	}
	if len(doc.Widgets) != 1 {
		t.Fatalf("got %d widgets, want 1", len(doc.Widgets))
	}
	got, err := model.DeserializeWidget(doc.Widgets[0])
	if err != nil {
		t.Fatalf("DeserializeWidget: %v", err)
	}
	if got.ID != w.ID || got.Type != model.TypeButton {
		t.Errorf("unexpected widget %+v", got)
	}
}

func TestExport_JSONEmptyLayout(t *testing.T) {
	out, err := Export(model.NewLayout("empty"), "json")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(out, `"widgets": []`) {
		t.Errorf("expected empty widgets array, got:\n%s", out)
	}
}

func TestExport_CSS(t *testing.T) {
	out, err := Export(testLayout(), "css")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := strings.Join([]string{
		"/* Layout: Main Dashboard */",
		".layout-main-dashboard {",
		"  display: grid;",
		"  grid-template-columns: repeat(12, 1fr);",
		"  row-gap: 60px;",
		"}",
		"",
		".widget-aaaaaaaa {",
		"  grid-column: 1 / span 3;",
		"  grid-row: 1 / span 1;",
		"}",
		"",
		".widget-bbbbbbbb {",
		"  grid-column: 4 / span 9;",
		"  grid-row: 2 / span 4;",
		"}",
		"",
	}, "\n")
	if out != want {
		t.Errorf("CSS mismatch\ngot:\n%s\nwant:\n%s", out, want)
	}
}

func TestExport_CSSEmptyLayout(t *testing.T) {
	out, err := Export(model.NewLayout("empty"), "css")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(out, "grid-template-columns") {
		t.Error("expected grid-template-columns")
	}
	if strings.Contains(out, "grid-column:") {
		t.Error("expected no widget rules")
	}
}

func TestExport_CSSMultiByteID(t *testing.T) {
	l := model.NewLayout("intl")
	w := model.NewWidget(model.TypeText)
	w.ID = "abcdefgé-rest"
	l.Add(w)

	out, err := Export(l, "css")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !utf8.ValidString(out) {
		t.Fatalf("CSS output is not valid UTF-8: %q", out)
	}
	if !strings.Contains(out, ".widget-abcdefgé {") {
		t.Errorf("expected rune-truncated selector, got:\n%s", out)
	}
}

func TestExport_HTML(t *testing.T) {
	l := testLayout()
	out, err := Export(l, "html")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(out, "<!-- Layout: Main Dashboard -->\n") {
		t.Errorf("missing layout comment:\n%s", out)
	}
	if !strings.HasSuffix(out, "</div>") {
		t.Errorf("missing closing div:\n%s", out)
	}
	if !strings.Contains(out, "<!-- Button --></div>") || !strings.Contains(out, "<!-- Chart --></div>") {
		t.Errorf("missing component comments:\n%s", out)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	grid := doc.Find("div.grid-layout")
	if grid.Length() != 1 {
		t.Fatalf("found %d grid containers", grid.Length())
	}
	if cols, _ := grid.Attr("data-columns"); cols != "12" {
		t.Errorf("data-columns = %q", cols)
	}

	widgets := grid.Find("div.widget")
	if widgets.Length() != 2 {
		t.Fatalf("found %d widgets, want 2", widgets.Length())
	}
	first := widgets.First()
	if !first.HasClass("widget-button") {
		t.Error("first widget missing widget-button class")
	}
	if id, _ := first.Attr("data-id"); id != l.Widgets[0].ID {
		t.Errorf("data-id = %q", id)
	}
	if style, _ := first.Attr("style"); style != "grid-column: 1 / span 3; grid-row: 1 / span 1;" {
		t.Errorf("style = %q", style)
	}
	if style, _ := widgets.Eq(1).Attr("style"); style != "grid-column: 4 / span 9; grid-row: 2 / span 4;" {
		t.Errorf("style = %q", style)
	}
}

func TestExport_HTMLEscapesAttributes(t *testing.T) {
	l := model.NewLayout("x")
	w := model.NewWidget(model.WidgetType(`bad"type`))
	w.ID = `id"><script>`
	l.Add(w)
	out, err := Export(l, "html")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("unescaped attribute in:\n%s", out)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if id, _ := doc.Find("div.widget").Attr("data-id"); id != w.ID {
		t.Errorf("data-id = %q, want %q", id, w.ID)
	}
	if !strings.Contains(out, "<!-- Widget -->") {
		t.Error("unknown type should fall back to Widget")
	}
}

func TestFormat_Metadata(t *testing.T) {
	if FormatCSS.Ext() != ".css" || FormatHTML.ContentType() != "text/html" {
		t.Error("unexpected format metadata")
	}
}
