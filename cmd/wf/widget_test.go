package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store/sqlite"
)

func TestCreateWidget_AndGet(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("create-widget", "button", "--label", "Submit",
		"--config", `{"label":"Submit","variant":"primary"}`)
	assert.Regexp(t, `^✓ Widget created: [0-9a-f-]{36} \(button\)\n$`, out)

	id := env.createWidget("chart", "--config", `{"data":[1,2.5]}`, "--x", "4", "--width", "8")

	got := env.mustRun("get-widget", id)
	var w map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &w))
	assert.Equal(t, id, w["widget_id"])
	assert.Equal(t, "chart", w["widget_type"])
	assert.Equal(t, map[string]any{"x": 4.0, "y": 0.0, "width": 8.0, "height": 2.0}, w["position"])
	assert.Equal(t, map[string]any{"data": []any{1.0, 2.5}}, w["config"])
}

func TestCreateWidget_InvalidIsNotStored(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, err := env.run("create-widget", "button", "--x", "10", "--width", "5")
	require.ErrorIs(t, err, errSilent)
	assert.Contains(t, stderr, "  Error: Widget overflows grid: x(10) + width(5) > 12")

	_, stderr, err = env.run("create-widget", "buton")
	require.ErrorIs(t, err, errSilent)
	assert.Contains(t, stderr, `Unknown widget type: buton (did you mean "button"?)`)

	out := env.mustRun("list-widgets")
	assert.Contains(t, out, "0 widgets")
}

func TestCreateWidget_MalformedConfig(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run("create-widget", "text", "--config", "{not json")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errSilent))
	assert.Contains(t, err.Error(), "invalid --config")
}

func TestGetWidget_NotFound(t *testing.T) {
	env := newTestEnv(t)
	for _, cmd := range []string{"get-widget", "validate", "react-props"} {
		_, stderr, err := env.run(cmd, "w-missing")
		require.ErrorIs(t, err, errSilent, cmd)
		assert.Equal(t, "Widget not found: w-missing\n", stderr, cmd)
	}
}

func TestValidate(t *testing.T) {
	env := newTestEnv(t)
	id := env.createWidget("slider", "--config", `{"min":0,"max":1.5}`)

	out := env.mustRun("validate", id)
	assert.Equal(t, "✓ Widget "+id+" is valid\n", out)

	out = env.mustRun("--json", "validate", id)
	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, validationReport{WidgetID: id, Valid: true, Errors: []string{}}, report)
}

func TestValidate_ReportsIssues(t *testing.T) {
	env := newTestEnv(t)

	// Stored directly so the CLI's create-time validation is bypassed.
	s, err := sqlite.New(env.db)
	require.NoError(t, err)
	w := model.NewWidget(model.TypeButton)
	w.Config = model.Config{"disabled": model.String("yes")}
	w.Position.X = 10
	w.Position.Width = 4
	require.NoError(t, s.SaveWidget(context.Background(), w, 0))
	require.NoError(t, s.Close())

	stdout, _, err := env.run("validate", w.ID)
	require.ErrorIs(t, err, errSilent)
	assert.Equal(t, "✗ 2 issue(s):\n"+
		"  - 'disabled' must be boolean, got string\n"+
		"  - Widget overflows grid: x(10) + width(4) > 12\n", stdout)

	stdout, _, err = env.run("--json", "validate", w.ID)
	require.ErrorIs(t, err, errSilent)
	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.False(t, report.Valid)
	assert.Len(t, report.Errors, 2)
}

func TestReactProps(t *testing.T) {
	env := newTestEnv(t)
	id := env.createWidget("button", "--label", "Go", "--config", `{"variant":"primary"}`)

	out := env.mustRun("react-props", id)
	var proj struct {
		Component string         `json:"componentName"`
		Props     map[string]any `json:"props"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &proj))
	assert.Equal(t, "Button", proj.Component)
	assert.Equal(t, id, proj.Props["id"])
	assert.Equal(t, true, proj.Props["visible"])
}

func TestDeleteWidget(t *testing.T) {
	env := newTestEnv(t)
	id := env.createWidget("text")

	out := env.mustRun("delete-widget", id)
	assert.Equal(t, "✓ Deleted widget "+id+"\n", out)

	_, stderr, err := env.run("delete-widget", id)
	require.ErrorIs(t, err, errSilent)
	assert.Equal(t, "Widget not found: "+id+"\n", stderr)
}

func TestListWidgets_Filters(t *testing.T) {
	env := newTestEnv(t)
	chart := env.createWidget("chart", "--label", "Revenue")
	text := env.createWidget("text", "--label", "Notes")
	attached := env.createWidget("chart", "--label", "Attached")
	env.mustRun("create-layout", "main")
	env.mustRun("add-to-layout", "main", attached)

	out := env.mustRun("list-widgets")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "POSITION")
	assert.Contains(t, out, "0,0 4x2")
	assert.Contains(t, out, "3 widgets")

	out = env.mustRun("list-widgets", "--type", "chart")
	assert.Contains(t, out, chart)
	assert.Contains(t, out, attached)
	assert.NotContains(t, out, text)

	out = env.mustRun("list-widgets", "--type", "chart", "--unattached")
	assert.Contains(t, out, chart)
	assert.NotContains(t, out, attached)
	assert.Contains(t, out, "1 widgets")

	out = env.mustRun("--json", "list-widgets", "--limit", "2")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 2)
}

func TestSchema(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("schema", "slider")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "slider", lines[0])
	assert.Equal(t, "  min    integer | float", lines[1])

	out = env.mustRun("schema", "form")
	assert.Equal(t, "form\n  (no schema)\n", out)

	out = env.mustRun("schema")
	assert.Contains(t, out, "accordion\n  (no schema)")
	assert.Contains(t, out, "tabs\n")

	out = env.mustRun("--json", "schema", "button")
	var s struct {
		Type   string `json:"type"`
		Fields []struct {
			Name  string   `json:"name"`
			Kinds []string `json:"kinds"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "button", s.Type)
	require.Len(t, s.Fields, 3)
	assert.Equal(t, "disabled", s.Fields[2].Name)
	assert.Equal(t, []string{"boolean"}, s.Fields[2].Kinds)

	_, _, err := env.run("schema", "widget")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown widget type: widget")
}
