package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

const requestColumns = `id, requester_id, event_id, status, created`

// RequestRepository handles persistence for participation requests.
type RequestRepository struct {
	db DBTX
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(db DBTX) *RequestRepository {
	return &RequestRepository{db: db}
}

func scanRequest(row pgx.Row) (*model.ParticipationRequest, error) {
	var (
		req    model.ParticipationRequest
		status string
	)
	if err := row.Scan(&req.ID, &req.RequesterID, &req.EventID, &status, &req.Created); err != nil {
		return nil, err
	}
	req.Status = model.RequestStatus(status)
	return &req, nil
}

func (r *RequestRepository) list(ctx context.Context, op, query string, args ...any) ([]model.ParticipationRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	reqs := []model.ParticipationRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

// Create inserts req and sets its generated id. A second active request
// for the same requester and event fails with ErrDuplicate.
func (r *RequestRepository) Create(ctx context.Context, req *model.ParticipationRequest) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO participation_requests (requester_id, event_id, status, created)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		req.RequesterID, req.EventID, string(req.Status), req.Created,
	).Scan(&req.ID)
	return translate(err, "insert request")
}

// GetByID returns a single request or ErrNotFound.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.ParticipationRequest, error) {
	req, err := scanRequest(r.db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM participation_requests WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get request")
	}
	return req, nil
}

// ListByIDs returns the found requests ordered by id.
func (r *RequestRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.ParticipationRequest, error) {
	if len(ids) == 0 {
		return []model.ParticipationRequest{}, nil
	}
	return r.list(ctx, "list requests by id",
		`SELECT `+requestColumns+` FROM participation_requests WHERE id = ANY($1) ORDER BY id`, ids)
}

// ListByRequester returns every request made by a user.
func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]model.ParticipationRequest, error) {
	return r.list(ctx, "list requests by requester",
		`SELECT `+requestColumns+` FROM participation_requests WHERE requester_id = $1 ORDER BY id`, requesterID)
}

// ListByEvent returns every request made for an event.
func (r *RequestRepository) ListByEvent(ctx context.Context, eventID int64) ([]model.ParticipationRequest, error) {
	return r.list(ctx, "list requests by event",
		`SELECT `+requestColumns+` FROM participation_requests WHERE event_id = $1 ORDER BY id`, eventID)
}

// ListByEventAndStatus returns the requests of an event in one status.
func (r *RequestRepository) ListByEventAndStatus(ctx context.Context, eventID int64, status model.RequestStatus) ([]model.ParticipationRequest, error) {
	return r.list(ctx, "list requests by status",
		`SELECT `+requestColumns+` FROM participation_requests
		 WHERE event_id = $1 AND status = $2 ORDER BY id`, eventID, string(status))
}

// ExistsActive reports whether the requester holds a non-canceled request
// for the event.
func (r *RequestRepository) ExistsActive(ctx context.Context, requesterID, eventID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM participation_requests
			WHERE requester_id = $1 AND event_id = $2 AND status <> 'CANCELED')`,
		requesterID, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active request: %w", err)
	}
	return exists, nil
}

// UpdateStatus sets status on every request in ids.
func (r *RequestRepository) UpdateStatus(ctx context.Context, ids []int64, status model.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE participation_requests SET status = $2 WHERE id = ANY($1)`, ids, string(status))
	if err != nil {
		return translate(err, "update request status")
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return ErrNotFound
	}
	return nil
}
