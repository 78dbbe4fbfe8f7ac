package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/statsservice"
)

func newStatsServer(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := test.NewNullLogger()
	db, err := statsservice.Open(config.StatsConfig{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	svc := statsservice.NewService(statsservice.NewStore(db), logger)
	return NewStatsRouter(NewStatsHandler(svc, logger), logger, "ewm-stats-service")
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatsAPI(t *testing.T) {
	srv := newStatsServer(t)

	for _, ip := range []string{"10.0.0.1", "10.0.0.1", "10.0.0.2"} {
		rec := serve(srv, http.MethodPost, "/hit",
			`{"app":"ewm-main-service","uri":"/events/1","ip":"`+ip+`","timestamp":"2030-01-10 12:00:00"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := serve(srv, http.MethodGet, "/stats?start=2030-01-10+00:00:00&end=2030-01-11+00:00:00&uris=/events/1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats []model.ViewStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].Hits)

	rec = serve(srv, http.MethodGet, "/stats?start=2030-01-10+00:00:00&end=2030-01-11+00:00:00&unique=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, int64(2), stats[0].Hits)
}

func TestStatsAPI_BadRequests(t *testing.T) {
	srv := newStatsServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"missing start", http.MethodGet, "/stats?end=2030-01-11+00:00:00", ""},
		{"start after end", http.MethodGet, "/stats?start=2030-01-12+00:00:00&end=2030-01-11+00:00:00", ""},
		{"bad unique", http.MethodGet, "/stats?start=2030-01-10+00:00:00&end=2030-01-11+00:00:00&unique=maybe", ""},
		{"blank uri", http.MethodPost, "/hit", `{"app":"a","uri":"","ip":"1.1.1.1","timestamp":"2030-01-10 12:00:00"}`},
		{"malformed", http.MethodPost, "/hit", `{"app":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(srv, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body model.StatsError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, http.StatusBadRequest, body.Status)
			assert.NotEmpty(t, body.Message)
		})
	}
}
