package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/metrics"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

// RequestService admits, cancels and moderates participation requests.
//
// Every operation that reads and writes an event's confirmed counter does
// so inside one transaction holding the event lock, so concurrent
// admissions and moderation of the same event never overrun its limit.
type RequestService struct {
	Deps
}

// NewRequestService constructs a RequestService.
func NewRequestService(d Deps) *RequestService {
	return &RequestService{Deps: d.withDefaults()}
}

// AddRequest files the caller's participation request for an event.
func (s *RequestService) AddRequest(ctx context.Context, caller model.Caller, eventID int64) (*model.ParticipationRequestDto, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	var req *model.ParticipationRequest
	err := s.Store.InTx(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Users().GetByID(ctx, caller.UserID); err != nil {
			return storage(err, "user with id=%d", caller.UserID)
		}
		e, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return storage(err, "event with id=%d", eventID)
		}
		if e.Initiator.ID == caller.UserID {
			return conflict("initiator cannot request participation in their own event")
		}
		if e.State != model.StatePublished {
			return conflict("cannot participate in an unpublished event")
		}
		exists, err := tx.Requests().ExistsActive(ctx, caller.UserID, eventID)
		if err != nil {
			return storage(err, "check existing request")
		}
		if exists {
			return conflict("participation request already exists")
		}
		if e.IsFull() {
			return conflict("the participant limit has been reached")
		}

		req = &model.ParticipationRequest{
			RequesterID: caller.UserID,
			EventID:     eventID,
			Status:      model.StatusPending,
			Created:     s.now(),
		}
		if e.AutoConfirms() {
			req.Status = model.StatusConfirmed
		}
		if err := tx.Requests().Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("participation request already exists")
			}
			return storage(err, "create request")
		}

		if req.Status == model.StatusConfirmed {
			e.ConfirmedRequests++
			if err := tx.Events().Update(ctx, e); err != nil {
				return storage(err, "update event with id=%d", eventID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordParticipation(string(req.Status), 1)
	s.log(ctx).WithFields(logrus.Fields{
		"request_id": req.ID,
		"event_id":   eventID,
		"user_id":    caller.UserID,
		"status":     req.Status,
	}).Info("participation request added")

	dto := req.View()
	return &dto, nil
}

// CancelRequest cancels one of the caller's requests. The event's
// confirmed counter is left as is, even for a confirmed request.
func (s *RequestService) CancelRequest(ctx context.Context, caller model.Caller, requestID int64) (*model.ParticipationRequestDto, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	var req *model.ParticipationRequest
	err := s.Store.InTx(ctx, func(tx repository.Repositories) error {
		var err error
		req, err = tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return storage(err, "request with id=%d", requestID)
		}
		if req.RequesterID != caller.UserID {
			return notFound("request with id=%d was not found", requestID)
		}
		// Serialize with moderation of the same event, then reload.
		if _, err := tx.Events().GetForUpdate(ctx, req.EventID); err != nil {
			return storage(err, "event with id=%d", req.EventID)
		}
		if req, err = tx.Requests().GetByID(ctx, requestID); err != nil {
			return storage(err, "request with id=%d", requestID)
		}
		req.Status = model.StatusCanceled
		if err := tx.Requests().UpdateStatus(ctx, []int64{req.ID}, req.Status); err != nil {
			return storage(err, "cancel request with id=%d", requestID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordParticipation(string(model.StatusCanceled), 1)
	s.log(ctx).WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    caller.UserID,
	}).Info("participation request canceled")

	dto := req.View()
	return &dto, nil
}

// ListForRequester returns every request the caller has made.
func (s *RequestService) ListForRequester(ctx context.Context, caller model.Caller) ([]model.ParticipationRequestDto, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().GetByID(ctx, caller.UserID); err != nil {
		return nil, storage(err, "user with id=%d", caller.UserID)
	}
	reqs, err := s.Store.Requests().ListByRequester(ctx, caller.UserID)
	if err != nil {
		return nil, storage(err, "list requests of user with id=%d", caller.UserID)
	}
	return model.RequestViews(reqs), nil
}

// ListForEvent returns the requests filed for one of the caller's events.
func (s *RequestService) ListForEvent(ctx context.Context, caller model.Caller, eventID int64) ([]model.ParticipationRequestDto, error) {
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
	reqs, err := s.Store.Requests().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, storage(err, "list requests of event with id=%d", eventID)
	}
	return model.RequestViews(reqs), nil
}

// ChangeRequestStatus confirms or rejects a batch of PENDING requests.
//
// Every named request is checked before any is changed: one non-PENDING
// request fails the whole call with nothing written. Confirmation runs in
// input order while slots remain; the rest of the batch is rejected. Once
// the limit is reached every other PENDING request of the event is
// rejected as well.
func (s *RequestService) ChangeRequestStatus(ctx context.Context, caller model.Caller, eventID int64, in model.StatusUpdateRequest) (*model.StatusUpdateResult, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if in.Status != model.StatusConfirmed && in.Status != model.StatusRejected {
		return nil, badRequest("status must be CONFIRMED or REJECTED, got %q", in.Status)
	}
	ids := dedupeIDs(in.RequestIDs)
	if len(ids) == 0 {
		return nil, badRequest("requestIds must not be empty")
	}

	result := &model.StatusUpdateResult{
		ConfirmedRequests: []model.ParticipationRequestDto{},
		RejectedRequests:  []model.ParticipationRequestDto{},
	}
	var cascaded int

	err := s.Store.InTx(ctx, func(tx repository.Repositories) error {
		e, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return storage(err, "event with id=%d", eventID)
		}
		if e.Initiator.ID != caller.UserID {
			return notFound("event with id=%d was not found", eventID)
		}

		found, err := tx.Requests().ListByIDs(ctx, ids)
		if err != nil {
			return storage(err, "load requests")
		}
		byID := make(map[int64]model.ParticipationRequest, len(found))
		for _, r := range found {
			byID[r.ID] = r
		}

		batch := make([]model.ParticipationRequest, 0, len(ids))
		for _, id := range ids {
			r, ok := byID[id]
			if !ok || r.EventID != eventID {
				return notFound("request with id=%d was not found", id)
			}
			batch = append(batch, r)
		}
		for _, r := range batch {
			if r.Status != model.StatusPending {
				return conflict("request with id=%d must have status PENDING, got %s", r.ID, r.Status)
			}
		}

		confirmed := e.ConfirmedRequests
		var toConfirm, toReject []int64
		for i := range batch {
			r := &batch[i]
			if in.Status == model.StatusConfirmed && (!e.Limited() || confirmed < e.ParticipantLimit) {
				r.Status = model.StatusConfirmed
				confirmed++
				toConfirm = append(toConfirm, r.ID)
				result.ConfirmedRequests = append(result.ConfirmedRequests, r.View())
				continue
			}
			r.Status = model.StatusRejected
			toReject = append(toReject, r.ID)
			result.RejectedRequests = append(result.RejectedRequests, r.View())
		}

		if e.Limited() && confirmed >= e.ParticipantLimit {
			pending, err := tx.Requests().ListByEventAndStatus(ctx, eventID, model.StatusPending)
			if err != nil {
				return storage(err, "list pending requests")
			}
			for i := range pending {
				r := &pending[i]
				if containsInt64(toConfirm, r.ID) || containsInt64(toReject, r.ID) {
					continue
				}
				r.Status = model.StatusRejected
				toReject = append(toReject, r.ID)
				result.RejectedRequests = append(result.RejectedRequests, r.View())
				cascaded++
			}
		}

		if err := tx.Requests().UpdateStatus(ctx, toConfirm, model.StatusConfirmed); err != nil {
			return storage(err, "confirm requests")
		}
		if err := tx.Requests().UpdateStatus(ctx, toReject, model.StatusRejected); err != nil {
			return storage(err, "reject requests")
		}
		if confirmed != e.ConfirmedRequests {
			e.ConfirmedRequests = confirmed
			if err := tx.Events().Update(ctx, e); err != nil {
				return storage(err, "update event with id=%d", eventID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordParticipation(string(model.StatusConfirmed), len(result.ConfirmedRequests))
	metrics.RecordParticipation(string(model.StatusRejected), len(result.RejectedRequests))
	s.log(ctx).WithFields(logrus.Fields{
		"event_id":  eventID,
		"confirmed": len(result.ConfirmedRequests),
		"rejected":  len(result.RejectedRequests),
		"cascaded":  cascaded,
	}).Info("participation requests moderated")

	return result, nil
}

func containsInt64(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
