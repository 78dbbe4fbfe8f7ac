package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

const commentSelect = `SELECT cm.id, cm.text, u.id, u.name, cm.event_id, cm.created_on, cm.updated_on
	FROM comments cm JOIN users u ON u.id = cm.author_id`

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db DBTX
}

// NewCommentRepository constructs a CommentRepository.
func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

func scanComment(row pgx.Row) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.Text, &c.Author.ID, &c.Author.Name, &c.EventID, &c.CreatedOn, &c.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts c and sets its generated id.
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO comments (text, author_id, event_id, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.Text, c.Author.ID, c.EventID, c.CreatedOn, c.UpdatedOn,
	).Scan(&c.ID)
	return translate(err, "insert comment")
}

// Update writes the text and updatedOn of c.
func (r *CommentRepository) Update(ctx context.Context, c *model.Comment) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE comments SET text = $2, updated_on = $3 WHERE id = $1`,
		c.ID, c.Text, c.UpdatedOn)
	if err != nil {
		return translate(err, "update comment")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a comment.
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete comment")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single comment or ErrNotFound.
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE cm.id = $1`, id))
	if err != nil {
		return nil, translate(err, "get comment")
	}
	return c, nil
}

// ListByEvent returns a page of an event's comments.
func (r *CommentRepository) ListByEvent(ctx context.Context, eventID int64, offset, limit int, desc bool) ([]model.Comment, error) {
	var w where
	w.add("cm.event_id = $%[1]d", eventID)

	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	query := commentSelect + w.String() +
		` ORDER BY COALESCE(cm.updated_on, cm.created_on) ` + dir + `, cm.id ` + dir +
		w.page(offset, limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}
