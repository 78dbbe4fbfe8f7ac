package service

import (
	"context"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

// CompilationService manages curated event compilations.
type CompilationService struct {
	Deps
}

// NewCompilationService constructs a CompilationService.
func NewCompilationService(d Deps) *CompilationService {
	return &CompilationService{Deps: d.withDefaults()}
}

// knownEvents keeps the ids that name existing events, in input order.
// Unknown ids are dropped silently.
func knownEvents(ctx context.Context, repos repository.Repositories, ids []int64) ([]int64, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return ids, nil
	}
	found, err := repos.Events().ListByIDs(ctx, ids)
	if err != nil {
		return nil, storage(err, "load events")
	}
	exists := make(map[int64]bool, len(found))
	for _, e := range found {
		exists[e.ID] = true
	}
	out := make([]int64, 0, len(found))
	for _, id := range ids {
		if exists[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// view embeds the short form of each event of c.
func (s *CompilationService) view(ctx context.Context, repos repository.Repositories, c *model.Compilation) (*model.CompilationView, error) {
	events, err := repos.Events().ListByIDs(ctx, c.EventIDs)
	if err != nil {
		return nil, storage(err, "load events of compilation with id=%d", c.ID)
	}
	byID := make(map[int64]*model.Event, len(events))
	for i := range events {
		byID[events[i].ID] = &events[i]
	}
	shorts := make([]model.EventShort, 0, len(c.EventIDs))
	for _, id := range c.EventIDs {
		if e, ok := byID[id]; ok {
			shorts = append(shorts, e.Short())
		}
	}
	return &model.CompilationView{ID: c.ID, Title: c.Title, Pinned: c.Pinned, Events: shorts}, nil
}

// Save creates a compilation.
func (s *CompilationService) Save(ctx context.Context, caller model.Caller, in model.NewCompilation) (*model.CompilationView, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := checkLen("title", in.Title, 1, 50); err != nil {
		return nil, err
	}

	var out *model.CompilationView
	err := s.Store.InTx(ctx, func(tx repository.Repositories) error {
		ids, err := knownEvents(ctx, tx, in.Events)
		if err != nil {
			return err
		}
		c := &model.Compilation{Title: in.Title, Pinned: in.Pinned, EventIDs: ids}
		if err := tx.Compilations().Create(ctx, c); err != nil {
			return storage(err, "create compilation")
		}
		out, err = s.view(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log(ctx).WithField("compilation_id", out.ID).Info("compilation saved")
	return out, nil
}

// Update applies a partial update to a compilation.
func (s *CompilationService) Update(ctx context.Context, caller model.Caller, compID int64, in model.UpdateCompilation) (*model.CompilationView, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := checkOptLen("title", in.Title, 1, 50); err != nil {
		return nil, err
	}

	var out *model.CompilationView
	err := s.Store.InTx(ctx, func(tx repository.Repositories) error {
		c, err := tx.Compilations().GetByID(ctx, compID)
		if err != nil {
			return storage(err, "compilation with id=%d", compID)
		}
		if in.Title != nil {
			c.Title = *in.Title
		}
		if in.Pinned != nil {
			c.Pinned = *in.Pinned
		}
		if in.Events != nil {
			if c.EventIDs, err = knownEvents(ctx, tx, *in.Events); err != nil {
				return err
			}
		}
		if err := tx.Compilations().Update(ctx, c); err != nil {
			return storage(err, "compilation with id=%d", compID)
		}
		out, err = s.view(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a compilation.
func (s *CompilationService) Delete(ctx context.Context, caller model.Caller, compID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.Store.Compilations().Delete(ctx, compID); err != nil {
		return storage(err, "compilation with id=%d", compID)
	}
	return nil
}

// Get returns one compilation.
func (s *CompilationService) Get(ctx context.Context, compID int64) (*model.CompilationView, error) {
	c, err := s.Store.Compilations().GetByID(ctx, compID)
	if err != nil {
		return nil, storage(err, "compilation with id=%d", compID)
	}
	return s.view(ctx, s.Store, c)
}

// List returns a page of compilations, optionally only pinned or unpinned.
func (s *CompilationService) List(ctx context.Context, pinned *bool, page Page) ([]model.CompilationView, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	comps, err := s.Store.Compilations().List(ctx, pinned, page.offset(), page.Size)
	if err != nil {
		return nil, storage(err, "list compilations")
	}
	out := make([]model.CompilationView, 0, len(comps))
	for i := range comps {
		v, err := s.view(ctx, s.Store, &comps[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
