// Package reactprops projects widgets into React component props,
// PropTypes declarations and defaultProps.
package reactprops

import (
	"strings"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
)

// FallbackComponent names the component of types without a mapping.
const FallbackComponent = "Widget"

// AriaLabelProp is injected when the widget has a label.
const AriaLabelProp = "aria-label"

var componentNames = map[model.WidgetType]string{
	model.TypeButton:   "Button",
	model.TypeInput:    "Input",
	model.TypeText:     "Typography",
	model.TypeImage:    "Image",
	model.TypeChart:    "Chart",
	model.TypeTable:    "DataTable",
	model.TypeCard:     "Card",
	model.TypeModal:    "Modal",
	model.TypeDropdown: "Select",
	model.TypeCheckbox: "Checkbox",
	model.TypeSlider:   "Slider",
	model.TypeProgress: "ProgressBar",
	model.TypeBadge:    "Badge",
	model.TypeAvatar:   "Avatar",
	model.TypeTooltip:  "Tooltip",
	model.TypeTabs:     "Tabs",
}

var propTypeNames = map[model.Kind]string{
	model.KindString:  "PropTypes.string",
	model.KindInteger: "PropTypes.number",
	model.KindFloat:   "PropTypes.number",
	model.KindBoolean: "PropTypes.bool",
	model.KindList:    "PropTypes.array",
	model.KindObject:  "PropTypes.object",
}

const anyPropType = "PropTypes.any"

// Projection is the React-facing view of a widget.
type Projection struct {
	ComponentName string            `json:"componentName"`
	Props         model.Config      `json:"props"`
	PropTypes     map[string]string `json:"propTypes"`
	DefaultProps  model.Config      `json:"defaultProps"`
	Position      model.Position    `json:"position"`
}

// ComponentName returns the suggested React component for t.
func ComponentName(t model.WidgetType) string {
	if name, ok := componentNames[t]; ok {
		return name
	}
	return FallbackComponent
}

// PropType returns the PropTypes declaration for a schema field.
// Fields accepting several kinds join their declarations with " || ".
func PropType(def model.FieldDef) string {
	if len(def.Kinds) == 0 {
		return anyPropType
	}
	parts := make([]string, len(def.Kinds))
	for i, k := range def.Kinds {
		pt, ok := propTypeNames[k]
		if !ok {
			pt = anyPropType
		}
		parts[i] = pt
	}
	return strings.Join(parts, " || ")
}

// Generate projects w. It never fails, whether or not w is valid.
//
// defaultProps echoes each non-null config value as its own default; it does
// not carry schema-declared defaults.
func Generate(w *model.Widget) *Projection {
	props := make(model.Config, len(w.Config)+3)
	for k, v := range w.Config {
		props[k] = v
	}
	props["visible"] = model.Bool(w.Visible)
	props["id"] = model.String(w.ID)
	if w.Label != "" {
		props[AriaLabelProp] = model.String(w.Label)
	}

	propTypes := map[string]string{
		"id":      "PropTypes.string",
		"visible": "PropTypes.bool",
	}
	for _, def := range model.SchemaFor(w.Type).Fields {
		propTypes[def.Name] = PropType(def)
	}

	defaults := model.Config{"visible": model.Bool(true)}
	for k, v := range w.Config {
		if v.IsNull() {
			continue
		}
		defaults[k] = v
	}

	return &Projection{
		ComponentName: ComponentName(w.Type),
		Props:         props,
		PropTypes:     propTypes,
		DefaultProps:  defaults,
		Position:      w.Position,
	}
}
