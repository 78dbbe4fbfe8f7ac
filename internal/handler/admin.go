package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/service"
)

var admin = model.AdminCaller()

// ─── Users ────────────────────────────────────────────────────────────────────

// RegisterUser handles POST /admin/users
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req model.User
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	u, err := h.svc.Users.Register(r.Context(), admin, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// ListUsers handles GET /admin/users?ids&from&size
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r, "ids")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := queryPage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	users, err := h.svc.Users.List(r.Context(), admin, ids, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /admin/users/{userId}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Users.Delete(r.Context(), admin, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Categories ───────────────────────────────────────────────────────────────

// AddCategory handles POST /admin/categories
func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req model.Category
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	c, err := h.svc.Categories.Add(r.Context(), admin, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory handles PATCH /admin/categories/{catId}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "catId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.Category
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	c, err := h.svc.Categories.Update(r.Context(), admin, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /admin/categories/{catId}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "catId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Categories.Delete(r.Context(), admin, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Events ───────────────────────────────────────────────────────────────────

// AdminSearchEvents handles GET /admin/events
func (h *Handler) AdminSearchEvents(w http.ResponseWriter, r *http.Request) {
	users, err := queryIDs(r, "users")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	categories, err := queryIDs(r, "categories")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := queryPage(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	events, err := h.svc.Events.AdminSearch(r.Context(), admin, service.AdminSearchParams{
		Users:      users,
		States:     queryList(r, "states"),
		Categories: categories,
		RangeStart: queryString(r, "rangeStart"),
		RangeEnd:   queryString(r, "rangeEnd"),
		Page:       page,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// AdminUpdateEvent handles PATCH /admin/events/{eventId}
func (h *Handler) AdminUpdateEvent(w http.ResponseWriter, r *http.Request) {
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
	e, err := h.svc.Events.UpdateByAdmin(r.Context(), admin, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// AdminDeleteComment handles DELETE /admin/events/{eventId}/comments/{commentId}
func (h *Handler) AdminDeleteComment(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Comments.AdminDelete(r.Context(), admin, eventID, commentID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Compilations ─────────────────────────────────────────────────────────────

// SaveCompilation handles POST /admin/compilations
func (h *Handler) SaveCompilation(w http.ResponseWriter, r *http.Request) {
	var req model.NewCompilation
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	c, err := h.svc.Compilations.Save(r.Context(), admin, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCompilation handles PATCH /admin/compilations/{compId}
func (h *Handler) UpdateCompilation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "compId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.UpdateCompilation
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	c, err := h.svc.Compilations.Update(r.Context(), admin, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCompilation handles DELETE /admin/compilations/{compId}
func (h *Handler) DeleteCompilation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "compId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Compilations.Delete(r.Context(), admin, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
