package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/service"
)

// ListCategories handles GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cats, err := h.svc.Categories.List(r.Context(), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if cats == nil {
		cats = []model.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// GetCategory handles GET /categories/{catId}
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "catId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.svc.Categories.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// SearchEvents handles GET /events
// Lists published events; the call is recorded as a hit.
func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	categories, err := queryIDs(r, "categories")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paid, err := queryBool(r, "paid")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	onlyAvailable, err := queryBool(r, "onlyAvailable")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := queryPage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p := service.PublicSearchParams{
		Text:       r.URL.Query().Get("text"),
		Categories: categories,
		Paid:       paid,
		RangeStart: queryString(r, "rangeStart"),
		RangeEnd:   queryString(r, "rangeEnd"),
		Sort:       r.URL.Query().Get("sort"),
		Page:       page,
	}
	if onlyAvailable != nil {
		p.OnlyAvailable = *onlyAvailable
	}

	events, err := h.svc.Events.PublicSearch(r.Context(), p, hitOf(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{eventId}
// Returns a published event with its view count.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "eventId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.svc.Events.GetPublished(r.Context(), id, hitOf(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ListComments handles GET /events/{eventId}/comments?from&size&sortOrder
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := queryPage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	comments, err := h.svc.Comments.List(r.Context(), eventID, page, r.URL.Query().Get("sortOrder"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// GetComment handles GET /events/{eventId}/comments/{commentId}
func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.svc.Comments.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListCompilations handles GET /compilations?pinned&from&size
func (h *Handler) ListCompilations(w http.ResponseWriter, r *http.Request) {
	pinned, err := queryBool(r, "pinned")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := queryPage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	comps, err := h.svc.Compilations.List(r.Context(), pinned, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comps)
}

// GetCompilation handles GET /compilations/{compId}
func (h *Handler) GetCompilation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "compId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.svc.Compilations.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
