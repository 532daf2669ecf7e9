package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/alfredjeanlab/widgetfactory/internal/events"
	"github.com/alfredjeanlab/widgetfactory/internal/model"
	"github.com/alfredjeanlab/widgetfactory/internal/store"
)

// InvalidError reports the widgets of a manifest that failed validation.
// Nothing is written when it is returned.
type InvalidError struct {
	Path     string
	Problems map[string][]string // widget ID -> validation errors
}

func (e *InvalidError) Error() string {
	ids := make([]string, 0, len(e.Problems))
	for id := range e.Problems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d invalid widget(s)", e.Path, len(ids))
	for _, id := range ids {
		fmt.Fprintf(&b, "\n  %s: %s", id, strings.Join(e.Problems[id], "; "))
	}
	return b.String()
}

// Result describes one applied manifest.
type Result struct {
	Path          string   `json:"path"`
	Layout        string   `json:"layout"`
	LayoutCreated bool     `json:"layout_created"`
	Created       []string `json:"created"`            // widget IDs inserted
	Updated       []string `json:"updated"`            // widget IDs that already existed
	Detached      []string `json:"detached,omitempty"` // widget IDs removed by Prune
}

// Applier validates manifests and upserts them into a store.
type Applier struct {
	store     store.Store
	publisher events.Publisher
	logger    *slog.Logger

	// Prune detaches widgets attached to the layout that the manifest no
	// longer lists. The widgets themselves are kept.
	Prune bool
	// DryRun validates and reports without writing.
	DryRun bool
}

// NewApplier returns an Applier. A nil publisher or logger disables events or
// uses slog.Default().
func NewApplier(s store.Store, publisher events.Publisher, logger *slog.Logger) *Applier {
	if publisher == nil {
		publisher = events.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{store: s, publisher: publisher, logger: logger}
}

// Apply validates every widget in m and, when all pass, saves the layout and
// its widgets in one transaction.
func (a *Applier) Apply(ctx context.Context, m *Manifest) (*Result, error) {
	widgets := make([]*model.Widget, 0, len(m.Widgets))
	invalid := &InvalidError{Path: m.Path, Problems: map[string][]string{}}
	for i, spec := range m.Widgets {
		w, err := spec.Widget()
		if err != nil {
			return nil, fmt.Errorf("%s: widgets[%d]: %w", m.Path, i, err)
		}
		if errs := model.Validate(w); len(errs) > 0 {
			invalid.Problems[w.ID] = errs
		}
		widgets = append(widgets, w)
	}
	if len(invalid.Problems) > 0 {
		return nil, invalid
	}

	res := &Result{Path: m.Path, Layout: m.Layout.Name}
	var layout *model.Layout
	err := a.store.RunInTransaction(ctx, func(tx store.Store) error {
		res.LayoutCreated = false
		res.Created, res.Updated, res.Detached = nil, nil, nil

		l, err := tx.GetLayout(ctx, m.Layout.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			l = m.NewLayout()
			res.LayoutCreated = true
		case err != nil:
			return err
		default:
			m.applySettings(l)
		}

		listed := make(map[string]bool, len(widgets))
		for _, w := range widgets {
			listed[w.ID] = true
			existing, err := tx.GetWidget(ctx, w.ID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				res.Created = append(res.Created, w.ID)
			case err != nil:
				return err
			default:
				w.RowID = existing.RowID
				w.CreatedAt = existing.CreatedAt
				res.Updated = append(res.Updated, w.ID)
			}
		}

		if a.Prune {
			for _, w := range l.Widgets {
				if !listed[w.ID] {
					res.Detached = append(res.Detached, w.ID)
				}
			}
		}

		if a.DryRun {
			return nil
		}

		l.Widgets = widgets
		if err := tx.SaveLayout(ctx, l); err != nil {
			return err
		}
		for _, id := range res.Detached {
			if err := tx.DetachWidget(ctx, id); err != nil {
				return err
			}
		}
		layout = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", m.Path, err)
	}

	a.logger.Info("manifest applied",
		"path", m.Path,
		"layout", res.Layout,
		"created", len(res.Created),
		"updated", len(res.Updated),
		"detached", len(res.Detached),
		"dry_run", a.DryRun)

	if layout != nil {
		a.publish(ctx, layout, widgets, res)
	}
	return res, nil
}

func (a *Applier) publish(ctx context.Context, l *model.Layout, widgets []*model.Widget, res *Result) {
	created := make(map[string]bool, len(res.Created))
	for _, id := range res.Created {
		created[id] = true
	}
	for _, w := range widgets {
		topic, event := events.TopicWidgetUpdated, any(events.WidgetUpdated{Widget: w})
		if created[w.ID] {
			topic, event = events.TopicWidgetCreated, events.WidgetCreated{Widget: w}
		}
		a.emit(ctx, topic, event)
	}
	for _, id := range res.Detached {
		a.emit(ctx, events.TopicWidgetDetached, events.WidgetDetached{WidgetID: id, Layout: l.Name})
	}
	a.emit(ctx, events.TopicLayoutSaved, events.LayoutSavedFrom(l))
}

func (a *Applier) emit(ctx context.Context, topic string, event any) {
	if err := a.publisher.Publish(ctx, topic, event); err != nil {
		a.logger.Warn("event not published", "topic", topic, "err", err)
	}
}

// ApplyAll applies manifests in order, continuing past failures. It returns
// the successful results and the joined errors.
func (a *Applier) ApplyAll(ctx context.Context, manifests []*Manifest) ([]*Result, error) {
	var (
		results []*Result
		errs    []error
	)
	for _, m := range manifests {
		res, err := a.Apply(ctx, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
