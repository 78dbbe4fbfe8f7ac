package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/logging"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/statsservice"
)

// StatsHandler serves the stats service API.
type StatsHandler struct {
	svc    *statsservice.Service
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(svc *statsservice.Service, logger logrus.FieldLogger) *StatsHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StatsHandler{svc: svc, logger: logger, now: time.Now}
}

func (h *StatsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "internal server error"
	var in *badInput
	switch {
	case errors.Is(err, statsservice.ErrInvalid), errors.As(err, &in):
		code = http.StatusBadRequest
		msg = err.Error()
	default:
		logging.FromContext(r.Context(), h.logger).WithError(err).Error("stats request failed")
	}
	writeJSON(w, code, model.StatsError{
		Message:   msg,
		Timestamp: model.FormatTime(h.now()),
		Status:    code,
	})
}

// SaveHit handles POST /hit
func (h *StatsHandler) SaveHit(w http.ResponseWriter, r *http.Request) {
	var req model.EndpointHit
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, invalidInput("%v", err))
		return
	}
	hit, err := h.svc.Record(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hit)
}

// GetStats handles GET /stats?start&end[&uris][&unique]
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var unique bool
	if raw := q.Get("unique"); raw != "" {
		var err error
		if unique, err = strconv.ParseBool(raw); err != nil {
			h.fail(w, r, invalidInput("query parameter unique must be a boolean, got %q", raw))
			return
		}
	}
	stats, err := h.svc.Stats(r.Context(), q.Get("start"), q.Get("end"), queryList(r, "uris"), unique)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
