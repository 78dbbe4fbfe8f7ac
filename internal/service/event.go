package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/metrics"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

const (
	userDateMargin  = 2 * time.Hour
	adminDateMargin = time.Hour
)

// Public search sort orders.
const (
	SortEventDate = "EVENT_DATE"
	SortViews     = "VIEWS"
)

// farFuture bounds public searches that name filters but no range end.
var farFuture = time.Date(3000, 1, 1, 0, 0, 0, 0, time.Local)

// EventService runs the event lifecycle: creation, initiator and admin
// updates, and the search/read paths.
type EventService struct {
	Deps
}

// NewEventService constructs an EventService.
func NewEventService(d Deps) *EventService {
	return &EventService{Deps: d.withDefaults()}
}

// AdminSearchParams filters the admin event listing.
type AdminSearchParams struct {
	Users      []int64
	States     []string
	Categories []int64
	RangeStart *string
	RangeEnd   *string
	Page       Page
}

// PublicSearchParams filters the public event listing.
type PublicSearchParams struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    *string
	RangeEnd      *string
	OnlyAvailable bool
	Sort          string
	Page          Page
}

func (p PublicSearchParams) hasFilters() bool {
	return p.Text != "" || len(p.Categories) > 0 || p.Paid != nil || p.RangeStart != nil || p.RangeEnd != nil
}

func validateNewEvent(in model.NewEvent) error {
	if err := checkLen("title", in.Title, 3, 120); err != nil {
		return err
	}
	if err := checkLen("annotation", in.Annotation, 20, 2000); err != nil {
		return err
	}
	if err := checkLen("description", in.Description, 20, 7000); err != nil {
		return err
	}
	if in.Category <= 0 {
		return badRequest("category must be set")
	}
	if in.Location == nil {
		return badRequest("location must be set")
	}
	if in.EventDate == "" {
		return badRequest("eventDate must be set")
	}
	if in.ParticipantLimit != nil && *in.ParticipantLimit < 0 {
		return badRequest("participantLimit must not be negative")
	}
	return nil
}

func validateUpdate(in model.UpdateEventRequest) error {
	if err := checkOptLen("title", in.Title, 3, 120); err != nil {
		return err
	}
	if err := checkOptLen("annotation", in.Annotation, 20, 2000); err != nil {
		return err
	}
	if err := checkOptLen("description", in.Description, 20, 7000); err != nil {
		return err
	}
	if in.ParticipantLimit != nil && *in.ParticipantLimit < 0 {
		return badRequest("participantLimit must not be negative")
	}
	return nil
}

func parseStateAction(raw *string, allowed ...model.StateAction) (*model.StateAction, error) {
	if raw == nil {
		return nil, nil
	}
	for _, a := range allowed {
		if string(a) == *raw {
			return &a, nil
		}
	}
	return nil, badRequest("unknown stateAction %q", *raw)
}

// checkEventDate requires date to be at least margin after now.
func checkEventDate(date, now time.Time, margin time.Duration) error {
	if date.Before(now.Add(margin)) {
		return invalidDate("eventDate must be at least %s after the current time, got %s",
			margin, model.FormatTime(date))
	}
	return nil
}

// Create adds a PENDING event on behalf of the caller.
func (s *EventService) Create(ctx context.Context, caller model.Caller, in model.NewEvent) (*model.EventFull, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := validateNewEvent(in); err != nil {
		return nil, err
	}
	date, err := parseTime("eventDate", in.EventDate)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := checkEventDate(date, now, userDateMargin); err != nil {
		return nil, err
	}

	user, err := s.Store.Users().GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, storage(err, "user with id=%d", caller.UserID)
	}
	cat, err := s.Store.Categories().GetByID(ctx, in.Category)
	if err != nil {
		return nil, storage(err, "category with id=%d", in.Category)
	}

	e := &model.Event{
		Title:             in.Title,
		Annotation:        in.Annotation,
		Description:       in.Description,
		Category:          *cat,
		Initiator:         user.Short(),
		Location:          *in.Location,
		RequestModeration: true,
		EventDate:         date,
		CreatedOn:         now,
		State:             model.StatePending,
	}
	if in.Paid != nil {
		e.Paid = *in.Paid
	}
	if in.ParticipantLimit != nil {
		e.ParticipantLimit = *in.ParticipantLimit
	}
	if in.RequestModeration != nil {
		e.RequestModeration = *in.RequestModeration
	}

	if err := s.Store.Events().Create(ctx, e); err != nil {
		return nil, storage(err, "create event")
	}

	s.log(ctx).WithFields(logrus.Fields{
		"event_id":     e.ID,
		"initiator_id": user.ID,
	}).Info("event created")

	full := e.Full()
	return &full, nil
}

// applyUpdate copies the non-nil fields of in onto e.
func applyUpdate(e *model.Event, in model.UpdateEventRequest, cat *model.Category, date *time.Time) error {
	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.Annotation != nil {
		e.Annotation = *in.Annotation
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if cat != nil {
		e.Category = *cat
	}
	if in.Location != nil {
		e.Location = *in.Location
	}
	if date != nil {
		e.EventDate = *date
	}
	if in.Paid != nil {
		e.Paid = *in.Paid
	}
	if in.RequestModeration != nil {
		e.RequestModeration = *in.RequestModeration
	}
	if in.ParticipantLimit != nil {
		limit := *in.ParticipantLimit
		if limit != 0 && limit < e.ConfirmedRequests {
			return conflict("participantLimit %d is below the %d confirmed requests", limit, e.ConfirmedRequests)
		}
		e.ParticipantLimit = limit
	}
	return nil
}

func (s *EventService) loadCategory(ctx context.Context, repos repository.Repositories, id *int64) (*model.Category, error) {
	if id == nil {
		return nil, nil
	}
	cat, err := repos.Categories().GetByID(ctx, *id)
	if err != nil {
		return nil, storage(err, "category with id=%d", *id)
	}
	return cat, nil
}

// UpdateByUser applies an initiator's partial update. Only PENDING and
// CANCELED events can change; SEND_TO_REVIEW and CANCEL_REVIEW move
// between them.
func (s *EventService) UpdateByUser(ctx context.Context, caller model.Caller, eventID int64, in model.UpdateEventRequest) (*model.EventFull, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	action, err := parseStateAction(in.StateAction, model.ActionSendToReview, model.ActionCancelReview)
	if err != nil {
		return nil, err
	}
	date, err := parseOptTime("eventDate", in.EventDate)
	if err != nil {
		return nil, err
	}

	var updated *model.Event
	err = s.Store.InTx(ctx, func(tx repository.Repositories) error {
		e, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return storage(err, "event with id=%d", eventID)
		}
		if e.Initiator.ID != caller.UserID {
			return notFound("event with id=%d was not found", eventID)
		}
		if e.State != model.StatePending && e.State != model.StateCanceled {
			return conflict("only pending or canceled events can be changed")
		}
		if date != nil {
			if err := checkEventDate(*date, s.now(), userDateMargin); err != nil {
				return err
			}
		}
		cat, err := s.loadCategory(ctx, tx, in.Category)
		if err != nil {
			return err
		}
		if err := applyUpdate(e, in, cat, date); err != nil {
			return err
		}

		if action != nil {
			switch *action {
			case model.ActionSendToReview:
				e.State = model.StatePending
			case model.ActionCancelReview:
				e.State = model.StateCanceled
			}
		}

		if err := tx.Events().Update(ctx, e); err != nil {
			return storage(err, "update event with id=%d", eventID)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if action != nil {
		metrics.RecordStateAction(string(*action))
	}
	s.log(ctx).WithFields(logrus.Fields{
		"event_id": eventID,
		"state":    updated.State,
	}).Info("event updated by initiator")

	full := updated.Full()
	return &full, nil
}

// UpdateByAdmin applies an admin's partial update, including publication
// and rejection.
func (s *EventService) UpdateByAdmin(ctx context.Context, caller model.Caller, eventID int64, in model.UpdateEventRequest) (*model.EventFull, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	if in.ParticipantLimit != nil && *in.ParticipantLimit <= 0 {
		return nil, badRequest("participantLimit must be positive")
	}
	action, err := parseStateAction(in.StateAction, model.ActionPublishEvent, model.ActionRejectEvent)
	if err != nil {
		return nil, err
	}
	date, err := parseOptTime("eventDate", in.EventDate)
	if err != nil {
		return nil, err
	}

	var updated *model.Event
	err = s.Store.InTx(ctx, func(tx repository.Repositories) error {
		e, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return storage(err, "event with id=%d", eventID)
		}
		now := s.now()
		if date != nil {
			if err := checkEventDate(*date, now, adminDateMargin); err != nil {
				return err
			}
		}
		cat, err := s.loadCategory(ctx, tx, in.Category)
		if err != nil {
			return err
		}

		if action != nil {
			switch *action {
			case model.ActionPublishEvent:
				if e.State != model.StatePending {
					return eventConflict("cannot publish the event because it is not in the right state: %s", e.State)
				}
			case model.ActionRejectEvent:
				if e.State == model.StatePublished {
					return eventConflict("cannot reject the event because it is already published")
				}
			}
		}

		if err := applyUpdate(e, in, cat, date); err != nil {
			return err
		}

		if action != nil {
			switch *action {
			case model.ActionPublishEvent:
				e.State = model.StatePublished
				e.PublishedOn = &now
			case model.ActionRejectEvent:
				e.State = model.StateCanceled
			}
		}

		if err := tx.Events().Update(ctx, e); err != nil {
			return storage(err, "update event with id=%d", eventID)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if action != nil {
		metrics.RecordStateAction(string(*action))
	}
	s.log(ctx).WithFields(logrus.Fields{
		"event_id": eventID,
		"state":    updated.State,
	}).Info("event updated by admin")

	full := updated.Full()
	return &full, nil
}

// AdminSearch lists events of any state for administrators.
func (s *EventService) AdminSearch(ctx context.Context, caller model.Caller, p AdminSearchParams) ([]model.EventFull, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := p.Page.validate(); err != nil {
		return nil, err
	}
	f := repository.EventFilter{
		Initiators: p.Users,
		Categories: p.Categories,
		Offset:     p.Page.offset(),
		Limit:      p.Page.Size,
	}
	for _, raw := range p.States {
		st := model.EventState(raw)
		if !st.Valid() {
			return nil, badRequest("unknown state %q", raw)
		}
		f.States = append(f.States, st)
	}
	var err error
	if f.RangeStart, err = parseOptTime("rangeStart", p.RangeStart); err != nil {
		return nil, err
	}
	if f.RangeEnd, err = parseOptTime("rangeEnd", p.RangeEnd); err != nil {
		return nil, err
	}

	events, err := s.Store.Events().Search(ctx, f)
	if err != nil {
		return nil, storage(err, "search events")
	}
	return model.FullViews(events), nil
}

// ListByInitiator returns a page of the caller's own events.
func (s *EventService) ListByInitiator(ctx context.Context, caller model.Caller, page Page) ([]model.EventShort, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := page.validate(); err != nil {
		return nil, err
	}
	events, err := s.Store.Events().Search(ctx, repository.EventFilter{
		Initiators: []int64{caller.UserID},
		Offset:     page.offset(),
		Limit:      page.Size,
	})
	if err != nil {
		return nil, storage(err, "list events of user with id=%d", caller.UserID)
	}
	return model.ShortViews(events), nil
}

// GetForInitiator returns one of the caller's own events.
func (s *EventService) GetForInitiator(ctx context.Context, caller model.Caller, eventID int64) (*model.EventFull, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	e, err := s.Store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, storage(err, "event with id=%d", eventID)
	}
	if e.Initiator.ID != caller.UserID {
		return nil, notFound("event with id=%d was not found", eventID)
	}
	full := e.Full()
	return &full, nil
}

// PublicSearch lists published events. The hit is recorded before the
// search runs.
func (s *EventService) PublicSearch(ctx context.Context, p PublicSearchParams, hit Hit) ([]model.EventShort, error) {
	if err := p.Page.validate(); err != nil {
		return nil, err
	}
	switch p.Sort {
	case "", SortEventDate, SortViews:
	default:
		return nil, badRequest("unknown sort %q", p.Sort)
	}

	s.recordHit(ctx, hit)

	f := repository.EventFilter{
		States:        []model.EventState{model.StatePublished},
		OnlyAvailable: p.OnlyAvailable,
		Offset:        p.Page.offset(),
		Limit:         p.Page.Size,
	}
	if p.Sort == SortEventDate {
		f.Sort = repository.SortByEventDate
	}

	if p.hasFilters() {
		start, err := parseOptTime("rangeStart", p.RangeStart)
		if err != nil {
			return nil, err
		}
		end, err := parseOptTime("rangeEnd", p.RangeEnd)
		if err != nil {
			return nil, err
		}
		if start == nil {
			now := s.now()
			start = &now
		}
		if end == nil {
			end = &farFuture
		}
		if start.After(*end) {
			return nil, invalidDate("rangeStart must not be after rangeEnd")
		}
		f.Text = p.Text
		f.Categories = p.Categories
		f.Paid = p.Paid
		f.RangeStart = start
		f.RangeEnd = end
	}

	events, err := s.Store.Events().Search(ctx, f)
	if err != nil {
		return nil, storage(err, "search events")
	}

	s.fillViews(ctx, events)
	if p.Sort == SortViews {
		sort.SliceStable(events, func(i, j int) bool { return events[i].Views > events[j].Views })
	}
	return model.ShortViews(events), nil
}

// GetPublished returns a published event with its view count, then records
// the hit.
func (s *EventService) GetPublished(ctx context.Context, eventID int64, hit Hit) (*model.EventFull, error) {
	e, err := s.Store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, storage(err, "event with id=%d", eventID)
	}
	if e.State != model.StatePublished {
		return nil, notFound("event with id=%d was not found", eventID)
	}

	events := []model.Event{*e}
	s.fillViews(ctx, events)
	s.recordHit(ctx, hit)

	full := events[0].Full()
	return &full, nil
}

// fillViews sets Views from the stats service, counting unique ips since
// the earliest publication. Failures leave the views at zero.
func (s *EventService) fillViews(ctx context.Context, events []model.Event) {
	if len(events) == 0 || s.Stats == nil {
		return
	}
	now := s.now()
	start := now.AddDate(-1, 0, 0)
	var earliest *time.Time
	uris := make([]string, 0, len(events))
	for i := range events {
		uris = append(uris, events[i].URI())
		if p := events[i].PublishedOn; p != nil && (earliest == nil || p.Before(*earliest)) {
			earliest = p
		}
	}
	if earliest != nil {
		start = *earliest
	}

	stats, err := s.Stats.Stats(ctx, start, now, uris, true)
	if err != nil {
		s.log(ctx).WithError(err).Warn("view stats unavailable")
		return
	}
	views := make(map[string]int64, len(stats))
	for _, st := range stats {
		views[st.URI] = st.Hits
	}
	for i := range events {
		events[i].Views = views[events[i].URI()]
	}
}

// recordHit forwards the request to the stats service. Failures are logged
// and dropped.
func (s *EventService) recordHit(ctx context.Context, hit Hit) {
	if s.Stats == nil {
		return
	}
	err := s.Stats.RecordHit(ctx, model.EndpointHit{
		App:       s.AppName,
		URI:       hit.URI,
		IP:        hit.IP,
		Timestamp: model.FormatTime(s.now()),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log(ctx).WithError(err).WithField("uri", hit.URI).Warn("hit not recorded")
	}
}
