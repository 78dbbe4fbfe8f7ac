package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// CompilationRepository handles persistence for compilations. Create and
// Update write two tables and belong inside Store.InTx.
type CompilationRepository struct {
	db DBTX
}

// NewCompilationRepository constructs a CompilationRepository.
func NewCompilationRepository(db DBTX) *CompilationRepository {
	return &CompilationRepository{db: db}
}

// Create inserts c with its event links and sets its generated id.
func (r *CompilationRepository) Create(ctx context.Context, c *model.Compilation) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO compilations (title, pinned) VALUES ($1, $2) RETURNING id`,
		c.Title, c.Pinned,
	).Scan(&c.ID)
	if err != nil {
		return translate(err, "insert compilation")
	}
	return r.linkEvents(ctx, c.ID, c.EventIDs)
}

// Update overwrites title, pinned and the event links of c.
func (r *CompilationRepository) Update(ctx context.Context, c *model.Compilation) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE compilations SET title = $2, pinned = $3 WHERE id = $1`, c.ID, c.Title, c.Pinned)
	if err != nil {
		return translate(err, "update compilation")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM compilation_events WHERE compilation_id = $1`, c.ID); err != nil {
		return fmt.Errorf("clear compilation events: %w", err)
	}
	return r.linkEvents(ctx, c.ID, c.EventIDs)
}

func (r *CompilationRepository) linkEvents(ctx context.Context, id int64, eventIDs []int64) error {
	for pos, eventID := range eventIDs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO compilation_events (compilation_id, event_id, position) VALUES ($1, $2, $3)
			 ON CONFLICT DO NOTHING`,
			id, eventID, pos)
		if err != nil {
			return translate(err, "link compilation event")
		}
	}
	return nil
}

// Delete removes a compilation and its links.
func (r *CompilationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete compilation")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single compilation or ErrNotFound.
func (r *CompilationRepository) GetByID(ctx context.Context, id int64) (*model.Compilation, error) {
	var c model.Compilation
	err := r.db.QueryRow(ctx, `SELECT id, title, pinned FROM compilations WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.Pinned)
	if err != nil {
		return nil, translate(err, "get compilation")
	}
	if err := r.loadEvents(ctx, []*model.Compilation{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns compilations ordered by id, optionally filtered by pinned.
func (r *CompilationRepository) List(ctx context.Context, pinned *bool, offset, limit int) ([]model.Compilation, error) {
	var w where
	if pinned != nil {
		w.add("pinned = $%[1]d", *pinned)
	}
	query := `SELECT id, title, pinned FROM compilations` + w.String() + ` ORDER BY id` + w.page(offset, limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}

	comps := []model.Compilation{}
	for rows.Next() {
		var c model.Compilation
		if err := rows.Scan(&c.ID, &c.Title, &c.Pinned); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		comps = append(comps, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}

	ptrs := make([]*model.Compilation, len(comps))
	for i := range comps {
		ptrs[i] = &comps[i]
	}
	if err := r.loadEvents(ctx, ptrs); err != nil {
		return nil, err
	}
	return comps, nil
}

// loadEvents fills EventIDs of comps with one query. The outer rows must be
// closed first since a transaction connection serves one query at a time.
func (r *CompilationRepository) loadEvents(ctx context.Context, comps []*model.Compilation) error {
	if len(comps) == 0 {
		return nil
	}
	ids := make([]int64, len(comps))
	byID := make(map[int64]*model.Compilation, len(comps))
	for i, c := range comps {
		ids[i] = c.ID
		c.EventIDs = []int64{}
		byID[c.ID] = c
	}

	rows, err := r.db.Query(ctx,
		`SELECT compilation_id, event_id FROM compilation_events
		 WHERE compilation_id = ANY($1) ORDER BY compilation_id, position`, ids)
	if err != nil {
		return fmt.Errorf("load compilation events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var compID, eventID int64
		if err := rows.Scan(&compID, &eventID); err != nil {
			return fmt.Errorf("scan compilation event: %w", err)
		}
		byID[compID].EventIDs = append(byID[compID].EventIDs, eventID)
	}
	return rows.Err()
}
