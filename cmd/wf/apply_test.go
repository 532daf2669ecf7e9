package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const opsManifest = `
[layout]
name = "ops"
columns = 12
row_height = 80

[[widgets]]
id = "ops-revenue"
type = "chart"
label = "Revenue"
position = { x = 0, y = 0, width = 8, height = 4 }
config = { chartType = "line", data = [1, 2.5] }

[[widgets]]
id = "ops-refresh"
type = "button"
label = "Refresh"
position = { x = 8, width = 4 }
config = { variant = "primary" }
`

const opsManifestTrimmed = `
layout:
  name: ops
widgets:
  - id: ops-revenue
    type: chart
    config: {chartType: bar}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApply_CreateThenUpdate(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "layouts/ops.toml", opsManifest)

	out := env.mustRun("apply", "-f", dir)
	assert.Equal(t, "✓ "+path+": layout 'ops' applied (created)\n"+
		"    widgets: 2 created, 0 updated\n", out)

	out = env.mustRun("show-layout", "ops")
	assert.Contains(t, out, "Row Height:  80px\n")
	assert.Contains(t, out, "ops-revenue")
	assert.Contains(t, out, "ops-refresh")

	out = env.mustRun("apply", path)
	assert.Equal(t, "✓ "+path+": layout 'ops' applied (updated)\n"+
		"    widgets: 0 created, 2 updated\n", out)
}

func TestApply_Prune(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	full := writeFile(t, dir, "full/ops.toml", opsManifest)
	trimmed := writeFile(t, dir, "trimmed/ops.yaml", opsManifestTrimmed)
	env.mustRun("apply", "-f", full)

	out := env.mustRun("apply", "-f", trimmed, "--prune")
	assert.Contains(t, out, "widgets: 0 created, 1 updated, 1 detached")

	out = env.mustRun("list-widgets", "--unattached")
	assert.Contains(t, out, "ops-refresh")
	assert.NotContains(t, out, "ops-revenue")
}

func TestApply_DryRunWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	path := writeFile(t, t.TempDir(), "ops.toml", opsManifest)

	out := env.mustRun("apply", "-f", path, "--dry-run")
	assert.Contains(t, out, "layout 'ops' would apply (created)")

	_, stderr, err := env.run("show-layout", "ops")
	require.ErrorIs(t, err, errSilent)
	assert.Equal(t, "Layout not found: ops\n", stderr)
}

func TestApply_InvalidWidgetSkipsManifest(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{
  "layout": {"name": "bad"},
  "widgets": [
    {"id": "bad-chart", "type": "chart", "config": {"data": "not a list"}},
    {"id": "bad-wide", "type": "text", "position": {"x": 10, "width": 4}}
  ]
}`)
	writeFile(t, dir, "ops.toml", opsManifest)

	stdout, stderr, err := env.run("apply", "-f", filepath.Join(dir, "*"))
	require.ErrorIs(t, err, errSilent)
	assert.Contains(t, stdout, "layout 'ops' applied (created)")
	assert.Contains(t, stderr, "✗ "+filepath.Join(dir, "bad.json")+": 2 invalid widget(s)\n")
	assert.Contains(t, stderr, "  - bad-chart: 'data' must be list, got string\n")
	assert.Contains(t, stderr, "  - bad-wide: Widget overflows grid: x(10) + width(4) > 12\n")

	_, _, err = env.run("show-layout", "bad")
	require.ErrorIs(t, err, errSilent)
}

func TestApply_JSONOutput(t *testing.T) {
	env := newTestEnv(t)
	path := writeFile(t, t.TempDir(), "ops.toml", opsManifest)

	out := env.mustRun("--json", "apply", "-f", path)
	var results []struct {
		Layout        string   `json:"layout"`
		LayoutCreated bool     `json:"layout_created"`
		Created       []string `json:"created"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "ops", results[0].Layout)
	assert.True(t, results[0].LayoutCreated)
	assert.ElementsMatch(t, []string{"ops-revenue", "ops-refresh"}, results[0].Created)
}

func TestApply_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("apply")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no manifests given")

	_, _, err = env.run("apply", "-f", filepath.Join(t.TempDir(), "*.toml"))
	require.Error(t, err)
}
