// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/logging"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/service"
)

// Services groups the domain services the main API exposes.
type Services struct {
	Users        *service.UserService
	Categories   *service.CategoryService
	Events       *service.EventService
	Requests     *service.RequestService
	Comments     *service.CommentService
	Compilations *service.CompilationService
}

// Handler holds all HTTP handlers of the main API.
type Handler struct {
	svc    Services
	logger logrus.FieldLogger
	now    func() time.Time
}

// New constructs a Handler.
func New(svc Services, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{svc: svc, logger: logger, now: time.Now}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed JSON or request body: %w", err)
	}
	return nil
}

// badInput marks request parsing failures that never reach a service.
type badInput struct{ msg string }

func (e *badInput) Error() string { return e.msg }

func invalidInput(format string, args ...any) error {
	return &badInput{msg: fmt.Sprintf(format, args...)}
}

// errorStatus maps an error to its HTTP status and reason phrase.
func errorStatus(err error) (int, string) {
	var in *badInput
	switch {
	case errors.As(err, &in):
		return http.StatusBadRequest, "Incorrectly made request."
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "The required object was not found."
	case errors.Is(err, service.ErrEventConflict):
		return http.StatusConflict, "Event conflict."
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "Integrity constraint has been violated."
	case errors.Is(err, service.ErrInvalidDate):
		return http.StatusBadRequest, "Invalid date format."
	case errors.Is(err, service.ErrBadRequest):
		return http.StatusBadRequest, "Incorrectly made request."
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "For the requested operation the conditions are not met."
	}
	return http.StatusInternalServerError, "Unexpected error."
}

// statusName renders a code the way the error envelope expects, e.g. NOT_FOUND.
func statusName(code int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
}

// fail writes the ApiError envelope for err. Unexpected errors are logged
// in full and reported without detail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, reason := errorStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		logging.FromContext(r.Context(), h.logger).WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		msg = "internal server error"
	}
	writeJSON(w, code, model.ErrorResponse{
		Errors:    []string{msg},
		Message:   msg,
		Reason:    reason,
		Status:    statusName(code),
		Timestamp: model.FormatTime(h.now()),
	})
}

// ─── Request parsing ──────────────────────────────────────────────────────────

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidInput("path parameter %s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

// userCaller builds the caller from the {userId} path parameter.
func userCaller(r *http.Request) (model.Caller, error) {
	id, err := pathID(r, "userId")
	if err != nil {
		return model.Caller{}, err
	}
	return model.UserCaller(id), nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidInput("query parameter %s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func queryPage(r *http.Request) (service.Page, error) {
	from, err := queryInt(r, "from", service.DefaultPage.From)
	if err != nil {
		return service.Page{}, err
	}
	size, err := queryInt(r, "size", service.DefaultPage.Size)
	if err != nil {
		return service.Page{}, err
	}
	return service.Page{From: from, Size: size}, nil
}

// queryList accepts both repeated parameters and comma-separated values.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryIDs(r *http.Request, name string) ([]int64, error) {
	raw := queryList(r, name)
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, invalidInput("query parameter %s must hold integers, got %q", name, v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidInput("query parameter %s must be a boolean, got %q", name, raw)
	}
	return &b, nil
}

func queryString(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	v := r.URL.Query().Get(name)
	return &v
}

// hitOf describes r for the stats service.
func hitOf(r *http.Request) service.Hit {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return service.Hit{URI: r.URL.Path, IP: ip}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
