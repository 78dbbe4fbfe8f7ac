package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

const eventColumns = `e.id, e.title, e.annotation, e.description,
	c.id, c.name, u.id, u.name,
	e.lat, e.lon, e.paid, e.participant_limit, e.request_moderation,
	e.event_date, e.created_on, e.published_on, e.state, e.confirmed_requests`

const eventFrom = ` FROM events e
	JOIN categories c ON c.id = e.category_id
	JOIN users u ON u.id = e.initiator_id`

// EventRepository handles persistence for events.
type EventRepository struct {
	db DBTX
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e     model.Event
		state string
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description,
		&e.Category.ID, &e.Category.Name, &e.Initiator.ID, &e.Initiator.Name,
		&e.Location.Lat, &e.Location.Lon, &e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&e.EventDate, &e.CreatedOn, &e.PublishedOn, &state, &e.ConfirmedRequests,
	)
	if err != nil {
		return nil, err
	}
	e.State = model.EventState(state)
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Create inserts e and sets its generated id.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO events (title, annotation, description, category_id, initiator_id,
			lat, lon, paid, participant_limit, request_moderation,
			event_date, created_on, published_on, state, confirmed_requests)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id`,
		e.Title, e.Annotation, e.Description, e.Category.ID, e.Initiator.ID,
		e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit, e.RequestModeration,
		e.EventDate, e.CreatedOn, e.PublishedOn, string(e.State), e.ConfirmedRequests,
	).Scan(&e.ID)
	return translate(err, "insert event")
}

// Update writes every mutable column of e. The initiator and createdOn
// never change.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events SET
			title = $2, annotation = $3, description = $4, category_id = $5,
			lat = $6, lon = $7, paid = $8, participant_limit = $9, request_moderation = $10,
			event_date = $11, published_on = $12, state = $13, confirmed_requests = $14
		 WHERE id = $1`,
		e.ID, e.Title, e.Annotation, e.Description, e.Category.ID,
		e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit, e.RequestModeration,
		e.EventDate, e.PublishedOn, string(e.State), e.ConfirmedRequests,
	)
	if err != nil {
		return translate(err, "update event")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+eventFrom+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, translate(err, "get event")
	}
	return e, nil
}

// GetForUpdate loads an event and takes a row-level exclusive lock on it.
//
// Admission and moderation read confirmed_requests, compare it with
// participant_limit and write it back. Two transactions doing that on the
// same snapshot would both see a free slot and overbook the event.
// SELECT ... FOR UPDATE blocks every other locker of this row until the
// current transaction commits or rolls back, so the read-check-write runs
// one transaction at a time per event. Only the events row is locked; the
// joined category and user rows stay free.
func (r *EventRepository) GetForUpdate(ctx context.Context, id int64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+eventFrom+` WHERE e.id = $1 FOR UPDATE OF e`, id))
	if err != nil {
		return nil, translate(err, "lock event")
	}
	return e, nil
}

// ListByIDs returns the events found among ids, ordered by id.
func (r *EventRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Event, error) {
	if len(ids) == 0 {
		return []model.Event{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+eventFrom+` WHERE e.id = ANY($1) ORDER BY e.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list events by id: %w", err)
	}
	return collectEvents(rows)
}

// Search returns the events matching f.
func (r *EventRepository) Search(ctx context.Context, f EventFilter) ([]model.Event, error) {
	var w where
	if len(f.Initiators) > 0 {
		w.add("e.initiator_id = ANY($%[1]d)", f.Initiators)
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		w.add("e.state = ANY($%[1]d)", states)
	}
	if len(f.Categories) > 0 {
		w.add("e.category_id = ANY($%[1]d)", f.Categories)
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		w.add("(e.annotation ILIKE $%[1]d OR e.description ILIKE $%[1]d)", "%"+escapeLike(text)+"%")
	}
	if f.Paid != nil {
		w.add("e.paid = $%[1]d", *f.Paid)
	}
	if f.RangeStart != nil {
		w.add("e.event_date >= $%[1]d", *f.RangeStart)
	}
	if f.RangeEnd != nil {
		w.add("e.event_date <= $%[1]d", *f.RangeEnd)
	}
	if f.OnlyAvailable {
		w.raw("(e.participant_limit = 0 OR e.confirmed_requests < e.participant_limit)")
	}

	order := " ORDER BY e.id"
	if f.Sort == SortByEventDate {
		order = " ORDER BY e.event_date, e.id"
	}
	query := `SELECT ` + eventColumns + eventFrom + w.String() + order + w.page(f.Offset, f.Limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return collectEvents(rows)
}

// ExistsByCategory reports whether any event uses the category.
func (r *EventRepository) ExistsByCategory(ctx context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE category_id = $1)`, categoryID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category usage: %w", err)
	}
	return exists, nil
}
