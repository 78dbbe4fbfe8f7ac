package handler

import (
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// ─── Own events ───────────────────────────────────────────────────────────────

// CreateEvent handles POST /users/{userId}/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	caller, err := userCaller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.NewEvent
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	e, err := h.svc.Events.Create(r.Context(), caller, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// ListOwnEvents handles GET /users/{userId}/events?from&size
func (h *Handler) ListOwnEvents(w http.ResponseWriter, r *http.Request) {
	caller, err := userCaller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := queryPage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	events, err := h.svc.Events.ListByInitiator(r.Context(), caller, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetOwnEvent handles GET /users/{userId}/events/{eventId}
func (h *Handler) GetOwnEvent(w http.ResponseWriter, r *http.Request) {
	caller, err := userCaller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "eventId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.svc.Events.GetForInitiator(r.Context(), caller, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// UpdateOwnEvent handles PATCH /users/{userId}/events/{eventId}
func (h *Handler) UpdateOwnEvent(w http.ResponseWriter, r *http.Request) {
	caller, err := userCaller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "eventId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.UpdateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	e, err := h.svc.Events.UpdateByUser(r.Context(), caller, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ─── Requests on own events ───────────────────────────────────────────────────

// ListEventRequests handles GET /users/{userId}/events/{eventId}/requests
func (h *Handler) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	caller, err := userCaller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "eventId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	reqs, err := h.svc.Requests.ListForEvent(r.Context(), caller, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// ModerateRequests handles PATCH /users/{userId}/events/{eventId}/requests
// Confirms or rejects a batch of pending requests.
func (h *Handler) ModerateRequests(w http.ResponseWriter, r *http.Request) {
	caller, err := userCaller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "eventId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	res, err := h.svc.Requests.ChangeRequestStatus(r.Context(), caller, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Own participation requests ───────────────────────────────────────────────

// ListOwnRequests handles GET /users/{userId}/requests
func (h *Handler) ListOwnRequests(w http.ResponseWriter, r *http.Request) {
	caller, err := userCaller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	reqs, err := h.svc.Requests.ListForRequester(r.Context(), caller)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// AddRequest handles POST /users/{userId}/requests?eventId=
func (h *Handler) AddRequest(w http.ResponseWriter, r *http.Request) {
	caller, err := userCaller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	raw := r.URL.Query().Get("eventId")
	if raw == "" {
		h.fail(w, r, invalidInput("required request parameter 'eventId' is not present"))
		return
	}
	eventID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.fail(w, r, invalidInput("query parameter eventId must be an integer, got %q", raw))
		return
	}
	req, err := h.svc.Requests.AddRequest(r.Context(), caller, eventID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// CancelRequest handles PATCH /users/{userId}/requests/{requestId}/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	caller, err := userCaller(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "requestId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := h.svc.Requests.CancelRequest(r.Context(), caller, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ─── Comments ─────────────────────────────────────────────────────────────────

func commentPath(r *http.Request) (model.Caller, int64, error) {
	caller, err := userCaller(r)
	if err != nil {
		return caller, 0, err
	}
	eventID, err := pathID(r, "eventId")
	return caller, eventID, err
}

// AddComment handles POST /users/{userId}/events/{eventId}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	caller, eventID, err := commentPath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.CommentInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	c, err := h.svc.Comments.Add(r.Context(), caller, eventID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// EditComment handles PATCH /users/{userId}/events/{eventId}/comments/{commentId}
func (h *Handler) EditComment(w http.ResponseWriter, r *http.Request) {
	caller, eventID, err := commentPath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.CommentInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	c, err := h.svc.Comments.Edit(r.Context(), caller, eventID, commentID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteComment handles DELETE /users/{userId}/events/{eventId}/comments/{commentId}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	caller, eventID, err := commentPath(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Comments.Delete(r.Context(), caller, eventID, commentID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
