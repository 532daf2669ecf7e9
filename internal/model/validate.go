package model

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ValidationError holds the human-readable problems found with a widget.
type ValidationError struct {
	WidgetID string
	Errors   []string
}

// Error formats the validation error as a semicolon-separated list of messages.
func (e *ValidationError) Error() string {
	if e.WidgetID != "" {
		return "validation failed for " + e.WidgetID + ": " + strings.Join(e.Errors, "; ")
	}
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// ValidateWidget is Validate returning a *ValidationError, or nil if w is valid.
func ValidateWidget(w *Widget) error {
	errs := Validate(w)
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{WidgetID: w.ID, Errors: errs}
}

// Validate checks a widget against its type schema and the grid bounds.
// It returns every problem found; an unknown type short-circuits all other checks.
func Validate(w *Widget) []string {
	var errs []string

	if !w.Type.IsValid() {
		msg := fmt.Sprintf("Unknown widget type: %s", w.Type)
		if s := suggestType(w.Type); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return []string{msg}
	}

	// Config: only fields both present and declared are checked.
	for _, def := range SchemaFor(w.Type).Fields {
		val, ok := w.Config[def.Name]
		if !ok {
			continue
		}
		got := val.Kind
		if got == "" {
			got = KindNull
		}
		if def.Accepts(got) {
			continue
		}
		if len(def.Kinds) > 1 {
			errs = append(errs, fmt.Sprintf("'%s' must be one of (%s), got %s", def.Name, joinKinds(def.Kinds), got))
		} else {
			errs = append(errs, fmt.Sprintf("'%s' must be %s, got %s", def.Name, def.Kinds[0], got))
		}
	}

	p := w.Position
	if p.X < 0 || p.X > GridColumns {
		errs = append(errs, fmt.Sprintf("Position x=%d out of range [0,%d]", p.X, GridColumns))
	}
	if p.Width < 1 || p.Width > GridColumns {
		errs = append(errs, fmt.Sprintf("Width=%d out of range [1,%d]", p.Width, GridColumns))
	}
	if p.X+p.Width > GridColumns {
		errs = append(errs, fmt.Sprintf("Widget overflows grid: x(%d) + width(%d) > %d", p.X, p.Width, GridColumns))
	}
	if p.Height < 1 {
		errs = append(errs, fmt.Sprintf("Height must be >= 1, got %d", p.Height))
	}

	if w.ID == "" {
		errs = append(errs, "widget_id is required")
	}

	return errs
}

func joinKinds(kinds []Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

// suggestType returns the closest valid type within edit distance 2, or "".
func suggestType(t WidgetType) string {
	name := strings.ToLower(strings.TrimSpace(string(t)))
	if name == "" {
		return ""
	}
	best, bestDist := "", 3
	for _, valid := range ValidWidgetTypes() {
		d := levenshtein.ComputeDistance(name, string(valid))
		if d < bestDist {
			best, bestDist = string(valid), d
		}
	}
	return best
}
