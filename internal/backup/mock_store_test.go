package backup

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
)

// mockStore is a minimal in-memory store for backup tests.
type mockStore struct {
	widgets  map[string]*model.Widget // by widget ID
	attached map[string]int64         // widget ID -> layout row ID
	layouts  map[string]*model.Layout // by name, Widgets unset
	nextID   int64
}

var _ store.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		widgets:  make(map[string]*model.Widget),
		attached: make(map[string]int64),
		layouts:  make(map[string]*model.Layout),
	}
}

func (m *mockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func cloneWidget(w *model.Widget) *model.Widget {
	cp := *w
	cp.Config = w.Config.Clone()
	return &cp
}

func (m *mockStore) GetWidget(_ context.Context, widgetID string) (*model.Widget, error) {
	w, ok := m.widgets[widgetID]
	if !ok {
		return nil, fmt.Errorf("widget %s: %w", widgetID, store.ErrNotFound)
	}
	return cloneWidget(w), nil
}

func (m *mockStore) SaveWidget(_ context.Context, w *model.Widget, layoutID int64) error {
	if existing, ok := m.widgets[w.ID]; ok {
		w.RowID = existing.RowID
	} else if w.RowID == 0 {
		w.RowID = m.id()
	}
	m.widgets[w.ID] = cloneWidget(w)
	if layoutID != 0 {
		m.attached[w.ID] = layoutID
	}
	return nil
}

func (m *mockStore) DeleteWidget(_ context.Context, widgetID string) (bool, error) {
	_, ok := m.widgets[widgetID]
	delete(m.widgets, widgetID)
	delete(m.attached, widgetID)
	return ok, nil
}

func (m *mockStore) sorted(keep func(*model.Widget) bool) []*model.Widget {
	result := []*model.Widget{}
	for _, w := range m.widgets {
		if keep(w) {
			result = append(result, cloneWidget(w))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].RowID < result[j].RowID
	})
	return result
}

func (m *mockStore) ListWidgets(_ context.Context, filter model.WidgetFilter) ([]*model.Widget, error) {
	result := m.sorted(func(w *model.Widget) bool {
		if filter.Unattached && m.attached[w.ID] != 0 {
			return false
		}
		if len(filter.Type) == 0 {
			return true
		}
		for _, t := range filter.Type {
			if w.Type == t {
				return true
			}
		}
		return false
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *mockStore) SaveLayout(ctx context.Context, l *model.Layout) error {
	if l.RowID == 0 {
		if _, ok := m.layouts[l.Name]; ok {
			return fmt.Errorf("layout %q: %w", l.Name, store.ErrAlreadyExists)
		}
		l.RowID = m.id()
	} else {
		for name, existing := range m.layouts {
			if existing.RowID == l.RowID {
				delete(m.layouts, name)
			}
		}
	}
	cp := *l
	cp.Widgets = nil
	m.layouts[l.Name] = &cp
	for _, w := range l.Widgets {
		if err := m.SaveWidget(ctx, w, l.RowID); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStore) GetLayout(ctx context.Context, name string) (*model.Layout, error) {
	l, ok := m.layouts[name]
	if !ok {
		return nil, fmt.Errorf("layout %q: %w", name, store.ErrNotFound)
	}
	cp := *l
	cp.Widgets, _ = m.ListLayoutWidgets(ctx, l.RowID)
	return &cp, nil
}

func (m *mockStore) ListLayouts(_ context.Context) ([]*model.LayoutSummary, error) {
	result := []*model.LayoutSummary{}
	for _, l := range m.layouts {
		count := 0
		for _, id := range m.attached {
			if id == l.RowID {
				count++
			}
		}
		result = append(result, &model.LayoutSummary{
			Name: l.Name, Columns: l.Columns, RowHeight: l.RowHeight,
			CreatedAt: l.CreatedAt, WidgetCount: count,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockStore) ListLayoutWidgets(_ context.Context, layoutID int64) ([]*model.Widget, error) {
	result := m.sorted(func(w *model.Widget) bool { return m.attached[w.ID] == layoutID })
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].Position, result[j].Position
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return result, nil
}

func (m *mockStore) DeleteLayout(_ context.Context, name string) (bool, error) {
	l, ok := m.layouts[name]
	if !ok {
		return false, nil
	}
	delete(m.layouts, name)
	for id, layoutID := range m.attached {
		if layoutID == l.RowID {
			delete(m.attached, id)
		}
	}
	return true, nil
}

func (m *mockStore) AttachWidget(_ context.Context, layoutID int64, widgetID string) error {
	if _, ok := m.widgets[widgetID]; !ok {
		return fmt.Errorf("widget %s: %w", widgetID, store.ErrNotFound)
	}
	m.attached[widgetID] = layoutID
	return nil
}

func (m *mockStore) DetachWidget(_ context.Context, widgetID string) error {
	if _, ok := m.widgets[widgetID]; !ok {
		return fmt.Errorf("widget %s: %w", widgetID, store.ErrNotFound)
	}
	delete(m.attached, widgetID)
	return nil
}

// RunInTransaction restores the previous maps when fn fails.
func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	widgets, attached, layouts, nextID := maps.Clone(m.widgets), maps.Clone(m.attached), maps.Clone(m.layouts), m.nextID
	if err := fn(m); err != nil {
		m.widgets, m.attached, m.layouts, m.nextID = widgets, attached, layouts, nextID
		return err
	}
	return nil
}

func (m *mockStore) Close() error {
	return nil
}
