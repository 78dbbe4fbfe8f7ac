// Package repository defines the storage contracts of the main service and
// implements them on PostgreSQL with pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// ErrReferenced is returned when a write breaks a foreign key.
var ErrReferenced = errors.New("still referenced")

// ErrConstraint is returned when a row fails a check constraint.
var ErrConstraint = errors.New("constraint violated")

// Users persists registered users.
type Users interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// List returns users ordered by id. A non-empty ids restricts the result.
	List(ctx context.Context, ids []int64, offset, limit int) ([]model.User, error)
	Delete(ctx context.Context, id int64) error
}

// Categories persists event categories.
type Categories interface {
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context, offset, limit int) ([]model.Category, error)
}

// EventSort orders event searches.
type EventSort int

const (
	SortByID EventSort = iota
	SortByEventDate
)

// EventFilter narrows an event search. Zero values disable a criterion.
type EventFilter struct {
	Initiators    []int64
	States        []model.EventState
	Categories    []int64
	Text          string
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          EventSort
	Offset        int
	// Limit <= 0 returns every match.
	Limit int
}

// Events persists events. GetForUpdate must be called inside Store.InTx;
// it holds the event until the transaction ends.
type Events interface {
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Event, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Event, error)
	Search(ctx context.Context, f EventFilter) ([]model.Event, error)
	ExistsByCategory(ctx context.Context, categoryID int64) (bool, error)
}

// Requests persists participation requests.
type Requests interface {
	Create(ctx context.Context, r *model.ParticipationRequest) error
	GetByID(ctx context.Context, id int64) (*model.ParticipationRequest, error)
	// ListByIDs returns the found requests in id order; missing ids are skipped.
	ListByIDs(ctx context.Context, ids []int64) ([]model.ParticipationRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]model.ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID int64) ([]model.ParticipationRequest, error)
	ListByEventAndStatus(ctx context.Context, eventID int64, status model.RequestStatus) ([]model.ParticipationRequest, error)
	ExistsActive(ctx context.Context, requesterID, eventID int64) (bool, error)
	UpdateStatus(ctx context.Context, ids []int64, status model.RequestStatus) error
}

// Comments persists event comments.
type Comments interface {
	Create(ctx context.Context, c *model.Comment) error
	Update(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	// ListByEvent orders by coalesce(updatedOn, createdOn), then id.
	ListByEvent(ctx context.Context, eventID int64, offset, limit int, desc bool) ([]model.Comment, error)
}

// Compilations persists event compilations.
type Compilations interface {
	Create(ctx context.Context, c *model.Compilation) error
	Update(ctx context.Context, c *model.Compilation) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Compilation, error)
	List(ctx context.Context, pinned *bool, offset, limit int) ([]model.Compilation, error)
}

// Repositories groups every repository bound to one connection or
// transaction.
type Repositories interface {
	Users() Users
	Categories() Categories
	Events() Events
	Requests() Requests
	Comments() Comments
	Compilations() Compilations
}

// Store is the storage entry point used by services.
type Store interface {
	Repositories
	// InTx runs fn in a transaction. fn's error rolls everything back.
	InTx(ctx context.Context, fn func(Repositories) error) error
	Close()
}
