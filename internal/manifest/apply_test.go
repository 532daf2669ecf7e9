package manifest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/widgetfactory/internal/events"
	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
	"github.com/alfredjeanlab/widgetfactory/internal/store/sqlite"
)

type published struct {
	topic string
	event any
}

// recordingPublisher captures events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic, event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.topic
	}
	return out
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "widgets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApplier(t *testing.T) (*Applier, store.Store, *recordingPublisher) {
	t.Helper()
	s := newTestStore(t)
	pub := &recordingPublisher{}
	return NewApplier(s, pub, slog.New(slog.NewTextHandler(io.Discard, nil))), s, pub
}

func mustParse(t *testing.T, data, ext string) *Manifest {
	t.Helper()
	m, err := Parse([]byte(data), ext)
	require.NoError(t, err)
	m.Path = "test" + ext
	return m
}

func TestApply_CreatesLayoutAndWidgets(t *testing.T) {
	ctx := context.Background()
	a, s, pub := newTestApplier(t)

	res, err := a.Apply(ctx, mustParse(t, dashboardTOML, ".toml"))
	require.NoError(t, err)
	require.True(t, res.LayoutCreated)
	require.ElementsMatch(t, []string{"revenue", "submit"}, res.Created)
	require.Empty(t, res.Updated)

	l, err := s.GetLayout(ctx, "dashboard")
	require.NoError(t, err)
	require.Equal(t, 80, l.RowHeight)
	require.Len(t, l.Widgets, 2)
	require.Equal(t, "revenue", l.Widgets[0].ID)
	require.Equal(t, "submit", l.Widgets[1].ID)
	require.False(t, l.Widgets[1].Visible)
	require.Equal(t, model.Float(2.5), l.Widgets[0].Config["data"].List[1])

	require.Equal(t, []string{
		events.TopicWidgetCreated, events.TopicWidgetCreated, events.TopicLayoutSaved,
	}, pub.topics())
}

func TestApply_IsIdempotentAndUpdates(t *testing.T) {
	ctx := context.Background()
	a, s, pub := newTestApplier(t)

	_, err := a.Apply(ctx, mustParse(t, dashboardTOML, ".toml"))
	require.NoError(t, err)
	first, err := s.GetWidget(ctx, "revenue")
	require.NoError(t, err)

	// Same layout from YAML with a new label.
	m := mustParse(t, dashboardYAML, ".yaml")
	m.Widgets[0].Label = "Revenue (EUR)"
	res, err := a.Apply(ctx, m)
	require.NoError(t, err)
	require.False(t, res.LayoutCreated)
	require.Empty(t, res.Created)
	require.ElementsMatch(t, []string{"revenue", "submit"}, res.Updated)

	got, err := s.GetWidget(ctx, "revenue")
	require.NoError(t, err)
	require.Equal(t, "Revenue (EUR)", got.Label)
	require.True(t, first.CreatedAt.Equal(got.CreatedAt), "created_at must survive updates")

	all, err := s.ListWidgets(ctx, model.WidgetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Contains(t, pub.topics(), events.TopicWidgetUpdated)
}

func TestApply_InvalidWidgetWritesNothing(t *testing.T) {
	ctx := context.Background()
	a, s, pub := newTestApplier(t)

	m := mustParse(t, `{
		"layout": {"name": "broken"},
		"widgets": [
			{"id": "ok", "type": "text"},
			{"id": "wide", "type": "card", "position": {"x": 10, "width": 5}},
			{"id": "typo", "type": "buton"}
		]
	}`, ".json")

	_, err := a.Apply(ctx, m)
	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	require.Len(t, invalid.Problems, 2)
	require.Contains(t, invalid.Problems, "wide")
	require.Contains(t, invalid.Problems, "typo")
	require.Contains(t, err.Error(), "2 invalid widget(s)")

	_, err = s.GetLayout(ctx, "broken")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetWidget(ctx, "ok")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Empty(t, pub.topics())
}

func TestApply_Prune(t *testing.T) {
	ctx := context.Background()
	a, s, pub := newTestApplier(t)

	_, err := a.Apply(ctx, mustParse(t, dashboardTOML, ".toml"))
	require.NoError(t, err)

	a.Prune = true
	m := mustParse(t, `{"layout":{"name":"dashboard"},"widgets":[{"id":"revenue","type":"chart"}]}`, ".json")
	res, err := a.Apply(ctx, m)
	require.NoError(t, err)
	require.Equal(t, []string{"submit"}, res.Detached)

	l, err := s.GetLayout(ctx, "dashboard")
	require.NoError(t, err)
	require.Len(t, l.Widgets, 1)

	// Detached, not deleted.
	loose, err := s.ListWidgets(ctx, model.WidgetFilter{Unattached: true})
	require.NoError(t, err)
	require.Len(t, loose, 1)
	require.Equal(t, "submit", loose[0].ID)
	require.Contains(t, pub.topics(), events.TopicWidgetDetached)
}

func TestApply_DryRun(t *testing.T) {
	ctx := context.Background()
	a, s, pub := newTestApplier(t)
	a.DryRun = true

	res, err := a.Apply(ctx, mustParse(t, dashboardTOML, ".toml"))
	require.NoError(t, err)
	require.True(t, res.LayoutCreated)
	require.Len(t, res.Created, 2)

	_, err = s.GetLayout(ctx, "dashboard")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Empty(t, pub.topics())
}

func TestApplyAll_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	a, s, _ := newTestApplier(t)

	good := mustParse(t, `{"layout":{"name":"good"},"widgets":[{"type":"text"}]}`, ".json")
	bad := mustParse(t, `{"layout":{"name":"bad"},"widgets":[{"type":"nope"}]}`, ".json")

	results, err := a.ApplyAll(ctx, []*Manifest{bad, good})
	require.Error(t, err)
	var invalid *InvalidError
	require.True(t, errors.As(err, &invalid))
	require.Len(t, results, 1)
	require.Equal(t, "good", results[0].Layout)

	l, err := s.GetLayout(ctx, "good")
	require.NoError(t, err)
	require.Len(t, l.Widgets, 1)
}
