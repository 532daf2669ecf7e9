package model

import "sort"

// GridColumns is the column count position bounds are checked against.
// Bounds do not follow a layout's configured Columns.
const GridColumns = 12

// WidgetType names a kind of UI widget.
type WidgetType string

const (
	TypeButton    WidgetType = "button"
	TypeInput     WidgetType = "input"
	TypeText      WidgetType = "text"
	TypeImage     WidgetType = "image"
	TypeChart     WidgetType = "chart"
	TypeTable     WidgetType = "table"
	TypeCard      WidgetType = "card"
	TypeModal     WidgetType = "modal"
	TypeDropdown  WidgetType = "dropdown"
	TypeCheckbox  WidgetType = "checkbox"
	TypeSlider    WidgetType = "slider"
	TypeProgress  WidgetType = "progress"
	TypeBadge     WidgetType = "badge"
	TypeAvatar    WidgetType = "avatar"
	TypeTooltip   WidgetType = "tooltip"
	TypeTabs      WidgetType = "tabs"
	TypeAccordion WidgetType = "accordion"
	TypeNavbar    WidgetType = "navbar"
	TypeSidebar   WidgetType = "sidebar"
	TypeForm      WidgetType = "form"
)

// String returns the string representation of the widget type.
func (t WidgetType) String() string {
	return string(t)
}

// IsValid checks whether the widget type is one of the enumerated types.
// Accordion, navbar, sidebar and form are valid but carry no schema.
func (t WidgetType) IsValid() bool {
	switch t {
	case TypeButton, TypeInput, TypeText, TypeImage, TypeChart, TypeTable,
		TypeCard, TypeModal, TypeDropdown, TypeCheckbox, TypeSlider,
		TypeProgress, TypeBadge, TypeAvatar, TypeTooltip, TypeTabs,
		TypeAccordion, TypeNavbar, TypeSidebar, TypeForm:
		return true
	}
	return false
}

// ValidWidgetTypes returns every enumerated widget type, sorted by name.
func ValidWidgetTypes() []WidgetType {
	types := []WidgetType{
		TypeButton, TypeInput, TypeText, TypeImage, TypeChart, TypeTable,
		TypeCard, TypeModal, TypeDropdown, TypeCheckbox, TypeSlider,
		TypeProgress, TypeBadge, TypeAvatar, TypeTooltip, TypeTabs,
		TypeAccordion, TypeNavbar, TypeSidebar, TypeForm,
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// FieldDef describes one expected config field of a widget type.
// A field with more than one kind accepts any of them.
type FieldDef struct {
	Name  string `json:"name"`
	Kinds []Kind `json:"kinds"`
}

// Accepts reports whether a value of kind k satisfies the field.
func (d FieldDef) Accepts(k Kind) bool {
	for _, want := range d.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

// WidgetSchema is the ordered set of expected config fields for a type.
type WidgetSchema struct {
	Type   WidgetType `json:"type"`
	Fields []FieldDef `json:"fields,omitempty"`
}

// IsEmpty reports whether the schema declares no fields.
func (s WidgetSchema) IsEmpty() bool {
	return len(s.Fields) == 0
}

var (
	str     = []Kind{KindString}
	integer = []Kind{KindInteger}
	boolean = []Kind{KindBoolean}
	list    = []Kind{KindList}
	number  = []Kind{KindInteger, KindFloat}
)

func fields(pairs ...any) []FieldDef {
	defs := make([]FieldDef, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		defs = append(defs, FieldDef{Name: pairs[i].(string), Kinds: pairs[i+1].([]Kind)})
	}
	return defs
}

var schemas = map[WidgetType][]FieldDef{
	TypeButton:   fields("label", str, "variant", str, "disabled", boolean),
	TypeInput:    fields("placeholder", str, "type", str, "required", boolean, "maxLength", integer),
	TypeText:     fields("content", str, "size", str, "weight", str, "color", str),
	TypeImage:    fields("src", str, "alt", str, "width", integer, "height", integer),
	TypeChart:    fields("chartType", str, "data", list, "title", str, "showLegend", boolean),
	TypeTable:    fields("columns", list, "rows", list, "sortable", boolean, "paginate", boolean),
	TypeCard:     fields("title", str, "body", str, "footer", str, "elevation", integer),
	TypeModal:    fields("title", str, "content", str, "closable", boolean),
	TypeDropdown: fields("options", list, "placeholder", str, "multiple", boolean),
	TypeCheckbox: fields("label", str, "checked", boolean, "indeterminate", boolean),
	TypeSlider:   fields("min", number, "max", number, "step", number, "value", number),
	TypeProgress: fields("value", number, "max", number, "label", str, "color", str),
	TypeBadge:    fields("text", str, "color", str, "size", str),
	TypeAvatar:   fields("src", str, "name", str, "size", str),
	TypeTooltip:  fields("content", str, "placement", str),
	TypeTabs:     fields("items", list, "activeIndex", integer),
}

// SchemaFor returns the config schema of t. Unknown and schema-less types
// get an empty schema.
func SchemaFor(t WidgetType) WidgetSchema {
	defs := schemas[t]
	out := make([]FieldDef, len(defs))
	copy(out, defs)
	return WidgetSchema{Type: t, Fields: out}
}
