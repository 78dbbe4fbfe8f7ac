package service

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

// CategoryService manages event categories.
type CategoryService struct {
	Deps
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(d Deps) *CategoryService {
	return &CategoryService{Deps: d.withDefaults()}
}

func (s *CategoryService) nameTaken(ctx context.Context, name string, self int64) error {
	existing, err := s.Store.Categories().GetByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return storage(err, "check category name")
	case existing.ID != self:
		return conflict("category name %q is already used", name)
	}
	return nil
}

// Add creates a category with a unique name.
func (s *CategoryService) Add(ctx context.Context, caller model.Caller, in model.Category) (*model.Category, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := checkLen("name", in.Name, 1, 50); err != nil {
		return nil, err
	}
	if err := s.nameTaken(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	c := &model.Category{Name: in.Name}
	if err := s.Store.Categories().Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("category name %q is already used", in.Name)
		}
		return nil, storage(err, "create category")
	}
	s.log(ctx).WithField("category_id", c.ID).Info("category added")
	return c, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, caller model.Caller, catID int64, in model.Category) (*model.Category, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := checkLen("name", in.Name, 1, 50); err != nil {
		return nil, err
	}
	if _, err := s.Store.Categories().GetByID(ctx, catID); err != nil {
		return nil, storage(err, "category with id=%d", catID)
	}
	if err := s.nameTaken(ctx, in.Name, catID); err != nil {
		return nil, err
	}

	c := &model.Category{ID: catID, Name: in.Name}
	if err := s.Store.Categories().Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("category name %q is already used", in.Name)
		}
		return nil, storage(err, "category with id=%d", catID)
	}
	return c, nil
}

// Delete removes a category no event uses.
func (s *CategoryService) Delete(ctx context.Context, caller model.Caller, catID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if _, err := s.Store.Categories().GetByID(ctx, catID); err != nil {
		return storage(err, "category with id=%d", catID)
	}
	used, err := s.Store.Events().ExistsByCategory(ctx, catID)
	if err != nil {
		return storage(err, "check category usage")
	}
	if used {
		return conflict("the category is not empty")
	}
	if err := s.Store.Categories().Delete(ctx, catID); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return conflict("the category is not empty")
		}
		return storage(err, "category with id=%d", catID)
	}
	s.log(ctx).WithField("category_id", catID).Info("category deleted")
	return nil
}

// List returns a page of categories.
func (s *CategoryService) List(ctx context.Context, page Page) ([]model.Category, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	cats, err := s.Store.Categories().List(ctx, page.offset(), page.Size)
	if err != nil {
		return nil, storage(err, "list categories")
	}
	return cats, nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, catID int64) (*model.Category, error) {
	c, err := s.Store.Categories().GetByID(ctx, catID)
	if err != nil {
		return nil, storage(err, "category with id=%d", catID)
	}
	return c, nil
}
