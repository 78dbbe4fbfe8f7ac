package statsservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/logging"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/metrics"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// ErrInvalid marks a request the service refuses to process.
var ErrInvalid = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Service records hits and answers view-count queries.
type Service struct {
	store  *Store
	logger logrus.FieldLogger
}

// NewService creates a Service on top of store.
func NewService(store *Store, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{store: store, logger: logger}
}

func parseTime(field, v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return time.Time{}, invalid("%s must be set", field)
	}
	t, err := model.ParseTime(v)
	if err != nil {
		return time.Time{}, invalid("%s must use format %q, got %q", field, model.TimeLayout, v)
	}
	return t, nil
}

// Record validates and stores one hit.
func (s *Service) Record(ctx context.Context, in model.EndpointHit) (*model.EndpointHit, error) {
	for field, v := range map[string]string{"app": in.App, "uri": in.URI, "ip": in.IP} {
		if strings.TrimSpace(v) == "" {
			return nil, invalid("%s must not be blank", field)
		}
	}
	at, err := parseTime("timestamp", in.Timestamp)
	if err != nil {
		return nil, err
	}

	h := &Hit{App: in.App, URI: in.URI, IP: in.IP, HitAt: at.UTC()}
	if err := s.store.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to save hit: %w", err)
	}
	metrics.RecordHitStored()

	logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"app": h.App,
		"uri": h.URI,
	}).Debug("hit stored")

	return &model.EndpointHit{
		ID:        h.ID,
		App:       h.App,
		URI:       h.URI,
		IP:        h.IP,
		Timestamp: model.FormatTime(h.HitAt),
	}, nil
}

// Stats returns per-uri hit counts between start and end, both inclusive.
func (s *Service) Stats(ctx context.Context, start, end string, uris []string, unique bool) ([]model.ViewStats, error) {
	from, err := parseTime("start", start)
	if err != nil {
		return nil, err
	}
	to, err := parseTime("end", end)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, invalid("start must not be after end")
	}

	rows, err := s.store.Aggregate(ctx, from, to, uris, unique)
	if err != nil {
		return nil, err
	}
	out := make([]model.ViewStats, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.ViewStats{App: r.App, URI: r.URI, Hits: r.Hits})
	}
	return out, nil
}
