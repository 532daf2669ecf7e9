package model

import (
	"testing"
)

func TestWidgetType_IsValid(t *testing.T) {
	for _, tc := range []struct {
		typ  WidgetType
		want bool
	}{
		{TypeButton, true},
		{TypeTabs, true},
		{TypeAccordion, true},
		{TypeForm, true},
		{WidgetType("Button"), false},
		{WidgetType("spinner"), false},
		{WidgetType(""), false},
	} {
		if got := tc.typ.IsValid(); got != tc.want {
			t.Errorf("WidgetType(%q).IsValid() = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestValidWidgetTypes_SortedAndComplete(t *testing.T) {
	types := ValidWidgetTypes()
	if len(types) != 20 {
		t.Fatalf("got %d types, want 20", len(types))
	}
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Errorf("types not sorted at %d: %q >= %q", i, types[i-1], types[i])
		}
	}
	for _, typ := range types {
		if !typ.IsValid() {
			t.Errorf("listed type %q is not valid", typ)
		}
	}
}

func TestSchemaFor(t *testing.T) {
	for _, tc := range []struct {
		typ    WidgetType
		fields []string
	}{
		{TypeButton, []string{"label", "variant", "disabled"}},
		{TypeInput, []string{"placeholder", "type", "required", "maxLength"}},
		{TypeSlider, []string{"min", "max", "step", "value"}},
		{TypeTooltip, []string{"content", "placement"}},
		{TypeTabs, []string{"items", "activeIndex"}},
		{TypeAccordion, nil},
		{WidgetType("spinner"), nil},
	} {
		s := SchemaFor(tc.typ)
		if len(s.Fields) != len(tc.fields) {
			t.Errorf("SchemaFor(%q) has %d fields, want %d", tc.typ, len(s.Fields), len(tc.fields))
			continue
		}
		for i, name := range tc.fields {
			if s.Fields[i].Name != name {
				t.Errorf("SchemaFor(%q).Fields[%d] = %q, want %q", tc.typ, i, s.Fields[i].Name, name)
			}
		}
		if s.IsEmpty() != (len(tc.fields) == 0) {
			t.Errorf("SchemaFor(%q).IsEmpty() = %v", tc.typ, s.IsEmpty())
		}
	}
}

func TestSchemaFor_ReturnsCopy(t *testing.T) {
	s := SchemaFor(TypeButton)
	s.Fields[0].Name = "mutated"
	if got := SchemaFor(TypeButton).Fields[0].Name; got != "label" {
		t.Errorf("schema table mutated through returned copy: %q", got)
	}
}

func TestFieldDef_NumberAcceptsIntAndFloat(t *testing.T) {
	var def FieldDef
	for _, f := range SchemaFor(TypeSlider).Fields {
		if f.Name == "step" {
			def = f
		}
	}
	if def.Name == "" {
		t.Fatal("slider schema missing step")
	}
	if !def.Accepts(KindInteger) || !def.Accepts(KindFloat) {
		t.Error("step should accept integer and float")
	}
	if def.Accepts(KindString) {
		t.Error("step should not accept string")
	}
}

func TestNewWidget_Defaults(t *testing.T) {
	w := NewWidget(TypeButton)
	if w.ID == "" {
		t.Error("expected generated ID")
	}
	if w.Position != (Position{X: 0, Y: 0, Width: 4, Height: 2}) {
		t.Errorf("Position = %+v, want 0/0/4/2", w.Position)
	}
	if !w.Visible {
		t.Error("expected visible by default")
	}
	if w.Config == nil || len(w.Config) != 0 {
		t.Errorf("Config = %v, want empty", w.Config)
	}
	if w.IsPersisted() {
		t.Error("new widget should not be persisted")
	}
	if w.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestWidget_ShortID(t *testing.T) {
	w := &Widget{ID: "0123456789abcdef"}
	if got := w.ShortID(); got != "01234567" {
		t.Errorf("ShortID() = %q", got)
	}
	w.ID = "abc"
	if got := w.ShortID(); got != "abc" {
		t.Errorf("ShortID() = %q", got)
	}
	w.ID = "abcdefgé-rest"
	if got := w.ShortID(); got != "abcdefgé" {
		t.Errorf("ShortID() = %q, want abcdefgé", got)
	}
	w.ID = "日本語のウィジェット"
	if got := w.ShortID(); got != "日本語のウィジェ" {
		t.Errorf("ShortID() = %q", got)
	}
}

func TestLayout_AddDedupes(t *testing.T) {
	l := NewLayout("Main Dashboard")
	a := NewWidget(TypeButton)
	b := NewWidget(TypeText)
	l.Add(a)
	l.Add(b)
	l.Add(a)
	if len(l.Widgets) != 2 {
		t.Fatalf("got %d widgets, want 2", len(l.Widgets))
	}
	if l.Widgets[0].ID != a.ID || l.Widgets[1].ID != b.ID {
		t.Errorf("unexpected widget order: %v", l.Widgets)
	}
}

func TestLayout_Defaults(t *testing.T) {
	l := NewLayout("x")
	if l.Columns != 12 || l.RowHeight != 60 {
		t.Errorf("got columns=%d row_height=%d, want 12/60", l.Columns, l.RowHeight)
	}
	if l.Widgets == nil {
		t.Error("expected non-nil widgets slice")
	}
}

func TestLayout_Slug(t *testing.T) {
	for _, tc := range []struct{ name, want string }{
		{"dashboard", "dashboard"},
		{"Main Dashboard", "main-dashboard"},
		{"A B  C", "a-b--c"},
	} {
		l := NewLayout(tc.name)
		if got := l.Slug(); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
