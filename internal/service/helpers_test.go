package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository/memstore"
)

var clock = time.Date(2030, 1, 10, 12, 0, 0, 0, time.Local)

// fakeStats records hits and serves canned view counts.
type fakeStats struct {
	mu       sync.Mutex
	hits     []model.EndpointHit
	views    map[string]int64
	err      error
	lastURIs []string
	lastFrom time.Time
}

func (f *fakeStats) RecordHit(_ context.Context, hit model.EndpointHit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.hits = append(f.hits, hit)
	return nil
}

func (f *fakeStats) Stats(_ context.Context, start, _ time.Time, uris []string, _ bool) ([]model.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastURIs = uris
	f.lastFrom = start
	if f.err != nil {
		return nil, f.err
	}
	var out []model.ViewStats
	for _, uri := range uris {
		if n, ok := f.views[uri]; ok {
			out = append(out, model.ViewStats{App: "ewm-main-service", URI: uri, Hits: n})
		}
	}
	return out, nil
}

func (f *fakeStats) hitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hits)
}

type harness struct {
	t     *testing.T
	ctx   context.Context
	now   time.Time
	store repository.Store
	stats *fakeStats
	logs  *test.Hook

	users        *UserService
	categories   *CategoryService
	events       *EventService
	requests     *RequestService
	comments     *CommentService
	compilations *CompilationService

	seq int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, memstore.New())
}

func newHarnessWithStore(t *testing.T, store repository.Store) *harness {
	t.Helper()
	logger, hook := test.NewNullLogger()
	h := &harness{
		t:     t,
		ctx:   context.Background(),
		now:   clock,
		store: store,
		stats: &fakeStats{views: map[string]int64{}},
		logs:  hook,
	}
	d := Deps{
		Store:   h.store,
		Stats:   h.stats,
		Logger:  logger,
		Now:     func() time.Time { return h.now },
		AppName: "ewm-main-service",
	}
	h.users = NewUserService(d)
	h.categories = NewCategoryService(d)
	h.events = NewEventService(d)
	h.requests = NewRequestService(d)
	h.comments = NewCommentService(d)
	h.compilations = NewCompilationService(d)
	return h
}

var admin = model.AdminCaller()

func (h *harness) user() model.Caller {
	h.t.Helper()
	h.seq++
	u, err := h.users.Register(h.ctx, admin, model.User{
		Name:  fmt.Sprintf("User %d", h.seq),
		Email: fmt.Sprintf("user%d@example.com", h.seq),
	})
	require.NoError(h.t, err)
	return model.UserCaller(u.ID)
}

func (h *harness) category() int64 {
	h.t.Helper()
	h.seq++
	c, err := h.categories.Add(h.ctx, admin, model.Category{Name: fmt.Sprintf("Category %d", h.seq)})
	require.NoError(h.t, err)
	return c.ID
}

func ptr[T any](v T) *T { return &v }

func (h *harness) newEvent(catID int64, limit int, moderation bool) model.NewEvent {
	return model.NewEvent{
		Title:             "Summer festival",
		Annotation:        "Three days of music, food and dancing",
		Description:       "A long description of the summer festival program",
		Category:          catID,
		Location:          &model.Location{Lat: 59.93, Lon: 30.31},
		EventDate:         model.FormatTime(h.now.Add(48 * time.Hour)),
		ParticipantLimit:  ptr(limit),
		RequestModeration: ptr(moderation),
	}
}

// pendingEvent creates an event owned by owner in the PENDING state.
func (h *harness) pendingEvent(owner model.Caller, limit int, moderation bool) *model.EventFull {
	h.t.Helper()
	e, err := h.events.Create(h.ctx, owner, h.newEvent(h.category(), limit, moderation))
	require.NoError(h.t, err)
	return e
}

// publishedEvent creates and publishes an event owned by owner.
func (h *harness) publishedEvent(owner model.Caller, limit int, moderation bool) *model.EventFull {
	h.t.Helper()
	e := h.pendingEvent(owner, limit, moderation)
	e, err := h.events.UpdateByAdmin(h.ctx, admin, e.ID, model.UpdateEventRequest{
		StateAction: ptr(string(model.ActionPublishEvent)),
	})
	require.NoError(h.t, err)
	return e
}

func (h *harness) storedEvent(id int64) *model.Event {
	h.t.Helper()
	e, err := h.store.Events().GetByID(h.ctx, id)
	require.NoError(h.t, err)
	return e
}

func (h *harness) storedRequest(id int64) *model.ParticipationRequest {
	h.t.Helper()
	r, err := h.store.Requests().GetByID(h.ctx, id)
	require.NoError(h.t, err)
	return r
}

// hookedStore wraps a Store and reports event locks and request batch loads
// made inside transactions.
type hookedStore struct {
	repository.Store

	mu     sync.Mutex
	locked []int64

	// afterListByIDs, when set, runs after a transactional ListByIDs.
	afterListByIDs func()
}

func (s *hookedStore) InTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return s.Store.InTx(ctx, func(tx repository.Repositories) error {
		return fn(hookedTx{Repositories: tx, s: s})
	})
}

func (s *hookedStore) lockedEvents() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.locked...)
}

type hookedTx struct {
	repository.Repositories
	s *hookedStore
}

func (tx hookedTx) Events() repository.Events {
	return hookedEvents{Events: tx.Repositories.Events(), s: tx.s}
}

func (tx hookedTx) Requests() repository.Requests {
	return hookedRequests{Requests: tx.Repositories.Requests(), s: tx.s}
}

type hookedEvents struct {
	repository.Events
	s *hookedStore
}

func (e hookedEvents) GetForUpdate(ctx context.Context, id int64) (*model.Event, error) {
	ev, err := e.Events.GetForUpdate(ctx, id)
	if err == nil {
		e.s.mu.Lock()
		e.s.locked = append(e.s.locked, id)
		e.s.mu.Unlock()
	}
	return ev, err
}

type hookedRequests struct {
	repository.Requests
	s *hookedStore
}

func (r hookedRequests) ListByIDs(ctx context.Context, ids []int64) ([]model.ParticipationRequest, error) {
	found, err := r.Requests.ListByIDs(ctx, ids)
	if err == nil && r.s.afterListByIDs != nil {
		r.s.afterListByIDs()
	}
	return found, err
}
