package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

var base = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Store) (model.User, model.Category) {
	t.Helper()
	ctx := context.Background()
	u := model.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, s.Users().Create(ctx, &u))
	c := model.Category{Name: "Music"}
	require.NoError(t, s.Categories().Create(ctx, &c))
	return u, c
}

func newEvent(u model.User, c model.Category, title string, at time.Time) *model.Event {
	return &model.Event{
		Title:             title,
		Annotation:        "Annotation of " + title,
		Description:       "Description of " + title,
		Category:          c,
		Initiator:         u.Short(),
		EventDate:         at,
		CreatedOn:         base,
		State:             model.StatePending,
		RequestModeration: true,
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, c := seed(t, s)
	e := newEvent(u, c, "Jazz", base.Add(time.Hour))
	require.NoError(t, s.Events().Create(ctx, e))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx repository.Repositories) error {
		ev, err := tx.Events().GetForUpdate(ctx, e.ID)
		require.NoError(t, err)
		ev.Title = "Changed"
		require.NoError(t, tx.Events().Update(ctx, ev))

		// Writes inside the transaction are invisible outside it.
		outside, err := s.Events().GetByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jazz", outside.Title)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jazz", got.Title)
}

func TestInTx_CommitPublishesChanges(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, _ := seed(t, s)

	err := s.InTx(ctx, func(tx repository.Repositories) error {
		return tx.Users().Create(ctx, &model.User{Name: "Bob", Email: "bob@example.com"})
	})
	require.NoError(t, err)

	list, err := s.Users().List(ctx, nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, u.ID, list[0].ID)
}

func TestUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, c := seed(t, s)

	assert.ErrorIs(t, s.Users().Create(ctx, &model.User{Name: "x", Email: u.Email}), repository.ErrDuplicate)
	assert.ErrorIs(t, s.Categories().Create(ctx, &model.Category{Name: c.Name}), repository.ErrDuplicate)

	e := newEvent(u, c, "Rock", base)
	require.NoError(t, s.Events().Create(ctx, e))
	other := model.User{Name: "Guest", Email: "guest@example.com"}
	require.NoError(t, s.Users().Create(ctx, &other))

	r1 := model.ParticipationRequest{RequesterID: other.ID, EventID: e.ID, Status: model.StatusPending, Created: base}
	require.NoError(t, s.Requests().Create(ctx, &r1))
	r2 := r1
	assert.ErrorIs(t, s.Requests().Create(ctx, &r2), repository.ErrDuplicate)

	require.NoError(t, s.Requests().UpdateStatus(ctx, []int64{r1.ID}, model.StatusCanceled))
	r3 := model.ParticipationRequest{RequesterID: other.ID, EventID: e.ID, Status: model.StatusPending, Created: base}
	assert.NoError(t, s.Requests().Create(ctx, &r3))

	// Reviving the canceled request would make two active ones.
	err := s.Requests().UpdateStatus(ctx, []int64{r1.ID}, model.StatusPending)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	got, err := s.Requests().GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, got.Status)
	require.NoError(t, s.Requests().UpdateStatus(ctx, []int64{r3.ID}, model.StatusConfirmed))

	assert.ErrorIs(t, s.Categories().Delete(ctx, c.ID), repository.ErrReferenced)
}

func TestEvents_CapacityConstraint(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, c := seed(t, s)
	e := newEvent(u, c, "Limited", base)
	e.ParticipantLimit = 1
	require.NoError(t, s.Events().Create(ctx, e))

	e.ConfirmedRequests = 2
	assert.ErrorIs(t, s.Events().Update(ctx, e), repository.ErrConstraint)
}

func TestEvents_Search(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, c := seed(t, s)

	later := newEvent(u, c, "Later", base.Add(72*time.Hour))
	later.Annotation = "A night of ÜBER loud music"
	require.NoError(t, s.Events().Create(ctx, later))

	sooner := newEvent(u, c, "Sooner", base.Add(24*time.Hour))
	sooner.Paid = true
	sooner.ParticipantLimit = 1
	sooner.ConfirmedRequests = 1
	require.NoError(t, s.Events().Create(ctx, sooner))

	got, err := s.Events().Search(ctx, repository.EventFilter{Sort: repository.SortByEventDate})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Sooner", got[0].Title)
	assert.Equal(t, "Music", got[0].Category.Name)
	assert.Equal(t, "Ann", got[0].Initiator.Name)

	got, err = s.Events().Search(ctx, repository.EventFilter{Text: "über"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Later", got[0].Title)

	got, err = s.Events().Search(ctx, repository.EventFilter{OnlyAvailable: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Later", got[0].Title)

	paid := true
	end := base.Add(48 * time.Hour)
	got, err = s.Events().Search(ctx, repository.EventFilter{Paid: &paid, RangeEnd: &end})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sooner", got[0].Title)

	got, err = s.Events().Search(ctx, repository.EventFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sooner", got[0].Title)
}

func TestComments_OrderByLastTouch(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, c := seed(t, s)
	e := newEvent(u, c, "Talk", base)
	require.NoError(t, s.Events().Create(ctx, e))

	first := model.Comment{Text: "first", Author: u.Short(), EventID: e.ID, CreatedOn: base}
	second := model.Comment{Text: "second", Author: u.Short(), EventID: e.ID, CreatedOn: base.Add(time.Minute)}
	require.NoError(t, s.Comments().Create(ctx, &first))
	require.NoError(t, s.Comments().Create(ctx, &second))

	edited := base.Add(time.Hour)
	first.Text = "first, edited"
	first.UpdatedOn = &edited
	require.NoError(t, s.Comments().Update(ctx, &first))

	asc, err := s.Comments().ListByEvent(ctx, e.ID, 0, 10, false)
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, "second", asc[0].Text)
	assert.Equal(t, "first, edited", asc[1].Text)

	desc, err := s.Comments().ListByEvent(ctx, e.ID, 0, 10, true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, desc[0].ID)
}

func TestUsers_DeleteCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, c := seed(t, s)
	e := newEvent(u, c, "Gone", base)
	require.NoError(t, s.Events().Create(ctx, e))
	comp := model.Compilation{Title: "Best", EventIDs: []int64{e.ID}}
	require.NoError(t, s.Compilations().Create(ctx, &comp))

	require.NoError(t, s.Users().Delete(ctx, u.ID))

	_, err := s.Events().GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	got, err := s.Compilations().GetByID(ctx, comp.ID)
	require.NoError(t, err)
	assert.Empty(t, got.EventIDs)
	assert.ErrorIs(t, s.Users().Delete(ctx, u.ID), repository.ErrNotFound)
}
