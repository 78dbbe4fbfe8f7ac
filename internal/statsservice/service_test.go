package statsservice

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger, _ := test.NewNullLogger()
	db, err := Open(config.StatsConfig{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewService(NewStore(db), logger)
}

func record(t *testing.T, s *Service, uri, ip, ts string) {
	t.Helper()
	_, err := s.Record(context.Background(), model.EndpointHit{App: "ewm-main-service", URI: uri, IP: ip, Timestamp: ts})
	require.NoError(t, err)
}

func TestRecord(t *testing.T) {
	s := newTestService(t)

	got, err := s.Record(context.Background(), model.EndpointHit{
		App: "ewm-main-service", URI: "/events/1", IP: "10.0.0.1", Timestamp: "2030-01-10 12:00:00",
	})
	require.NoError(t, err)
	assert.Positive(t, got.ID)
	assert.Equal(t, "2030-01-10 12:00:00", got.Timestamp)
}

func TestRecord_Validation(t *testing.T) {
	s := newTestService(t)
	tests := []struct {
		name string
		in   model.EndpointHit
	}{
		{"blank app", model.EndpointHit{URI: "/events", IP: "1.1.1.1", Timestamp: "2030-01-10 12:00:00"}},
		{"blank uri", model.EndpointHit{App: "a", IP: "1.1.1.1", Timestamp: "2030-01-10 12:00:00"}},
		{"blank ip", model.EndpointHit{App: "a", URI: "/events", Timestamp: "2030-01-10 12:00:00"}},
		{"missing timestamp", model.EndpointHit{App: "a", URI: "/events", IP: "1.1.1.1"}},
		{"bad timestamp", model.EndpointHit{App: "a", URI: "/events", IP: "1.1.1.1", Timestamp: "2030-01-10T12:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Record(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestStats(t *testing.T) {
	s := newTestService(t)
	record(t, s, "/events/1", "10.0.0.1", "2030-01-10 10:00:00")
	record(t, s, "/events/1", "10.0.0.1", "2030-01-10 11:00:00")
	record(t, s, "/events/1", "10.0.0.2", "2030-01-10 11:30:00")
	record(t, s, "/events/2", "10.0.0.3", "2030-01-10 11:00:00")
	record(t, s, "/events/2", "10.0.0.3", "2030-02-01 00:00:00")
	record(t, s, "/events", "10.0.0.4", "2030-01-10 11:00:00")

	ctx := context.Background()
	start, end := "2030-01-10 00:00:00", "2030-01-10 23:59:59"

	all, err := s.Stats(ctx, start, end, nil, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.ViewStats{App: "ewm-main-service", URI: "/events/1", Hits: 3}, all[0])

	unique, err := s.Stats(ctx, start, end, []string{"/events/1", "/events/2"}, true)
	require.NoError(t, err)
	require.Len(t, unique, 2)
	assert.Equal(t, int64(2), unique[0].Hits)
	assert.Equal(t, "/events/2", unique[1].URI)
	assert.Equal(t, int64(1), unique[1].Hits)

	edge, err := s.Stats(ctx, "2030-01-10 11:00:00", "2030-01-10 11:00:00", []string{"/events/1"}, false)
	require.NoError(t, err)
	require.Len(t, edge, 1)
	assert.Equal(t, int64(1), edge[0].Hits)

	none, err := s.Stats(ctx, start, end, []string{"/events/404"}, false)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStats_InvalidRange(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Stats(ctx, "2030-01-11 00:00:00", "2030-01-10 00:00:00", nil, false)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Stats(ctx, "", "2030-01-10 00:00:00", nil, false)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Stats(ctx, "2030-01-10 00:00:00", "soon", nil, false)
	assert.ErrorIs(t, err, ErrInvalid)
}
