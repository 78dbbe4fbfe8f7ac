package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// CategoryRepository handles persistence for categories.
type CategoryRepository struct {
	db DBTX
}

// NewCategoryRepository constructs a CategoryRepository.
func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts c and sets its generated id.
func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, c.Name,
	).Scan(&c.ID)
	return translate(err, "insert category")
}

// Update renames a category.
func (r *CategoryRepository) Update(ctx context.Context, c *model.Category) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return translate(err, "update category")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a category; ErrReferenced if events still use it.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete category")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single category or ErrNotFound.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, translate(err, "get category")
	}
	return &c, nil
}

// GetByName returns the category with the exact name or ErrNotFound.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE name = $1`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, translate(err, "get category by name")
	}
	return &c, nil
}

// List returns categories ordered by id.
func (r *CategoryRepository) List(ctx context.Context, offset, limit int) ([]model.Category, error) {
	var w where
	query := `SELECT id, name FROM categories ORDER BY id` + w.page(offset, limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
