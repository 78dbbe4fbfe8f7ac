package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/database"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// openTestStore connects to EWM_TEST_DATABASE_URL, applies the schema and
// empties every table. Tests are skipped when the variable is unset.
func openTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("EWM_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("EWM_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE compilation_events, compilations, comments,
		participation_requests, events, categories, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return NewPostgresStore(pool)
}

func seedEvent(t *testing.T, s *PostgresStore, limit int, moderation bool) (*model.Event, *model.User) {
	t.Helper()
	ctx := context.Background()

	owner := &model.User{Name: "Owner", Email: "owner@example.com"}
	require.NoError(t, s.Users().Create(ctx, owner))
	cat := &model.Category{Name: "Concerts"}
	require.NoError(t, s.Categories().Create(ctx, cat))

	now := time.Now().Truncate(time.Second)
	e := &model.Event{
		Title:             "Open air",
		Annotation:        "An evening of music in the park",
		Description:       "Bring a blanket and friends for the whole evening",
		Category:          *cat,
		Initiator:         owner.Short(),
		Location:          model.Location{Lat: 55.75, Lon: 37.61},
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		EventDate:         now.Add(48 * time.Hour),
		CreatedOn:         now,
		PublishedOn:       &now,
		State:             model.StatePublished,
	}
	require.NoError(t, s.Events().Create(ctx, e))
	return e, owner
}

func TestPostgres_UniqueEmail(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &model.User{Name: "A", Email: "a@example.com"}))
	err := s.Users().Create(ctx, &model.User{Name: "B", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPostgres_EventRoundTripAndSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	e, owner := seedEvent(t, s, 0, false)

	got, err := s.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, owner.Name, got.Initiator.Name)
	assert.Equal(t, model.StatePublished, got.State)
	require.NotNil(t, got.PublishedOn)

	found, err := s.Events().Search(ctx, EventFilter{
		States: []model.EventState{model.StatePublished},
		Text:   "MUSIC",
	})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = s.Events().GetByID(ctx, e.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_PartialUniqueIndexAllowsRequestAfterCancel(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	e, _ := seedEvent(t, s, 0, false)

	u := &model.User{Name: "Guest", Email: "guest@example.com"}
	require.NoError(t, s.Users().Create(ctx, u))

	first := &model.ParticipationRequest{RequesterID: u.ID, EventID: e.ID, Status: model.StatusPending, Created: time.Now()}
	require.NoError(t, s.Requests().Create(ctx, first))

	dup := &model.ParticipationRequest{RequesterID: u.ID, EventID: e.ID, Status: model.StatusPending, Created: time.Now()}
	assert.ErrorIs(t, s.Requests().Create(ctx, dup), ErrDuplicate)

	require.NoError(t, s.Requests().UpdateStatus(ctx, []int64{first.ID}, model.StatusCanceled))
	again := &model.ParticipationRequest{RequesterID: u.ID, EventID: e.ID, Status: model.StatusPending, Created: time.Now()}
	assert.NoError(t, s.Requests().Create(ctx, again))
}

// TestPostgres_ForUpdatePreventsOverbooking races admissions against a
// capacity-limited event the same way the request service does.
func TestPostgres_ForUpdatePreventsOverbooking(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	const limit, workers = 5, 30
	e, _ := seedEvent(t, s, limit, false)

	users := make([]int64, workers)
	for i := range users {
		u := &model.User{Name: "U", Email: fmt.Sprintf("u%d@example.com", i)}
		require.NoError(t, s.Users().Create(ctx, u))
		users[i] = u.ID
	}

	errFull := errors.New("full")
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for _, uid := range users {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			results <- s.InTx(ctx, func(tx Repositories) error {
				ev, err := tx.Events().GetForUpdate(ctx, e.ID)
				if err != nil {
					return err
				}
				if ev.IsFull() {
					return errFull
				}
				req := &model.ParticipationRequest{RequesterID: uid, EventID: ev.ID, Status: model.StatusConfirmed, Created: time.Now()}
				if err := tx.Requests().Create(ctx, req); err != nil {
					return err
				}
				ev.ConfirmedRequests++
				return tx.Events().Update(ctx, ev)
			})
		}(uid)
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, errFull)
	}
	assert.Equal(t, limit, ok)

	got, err := s.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, got.ConfirmedRequests)

	confirmed, err := s.Requests().ListByEventAndStatus(ctx, e.ID, model.StatusConfirmed)
	require.NoError(t, err)
	assert.Len(t, confirmed, limit)
}
