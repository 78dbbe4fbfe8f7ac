package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesRecordedMetrics(t *testing.T) {
	RecordHTTPRequest("ewm-main-service", http.MethodGet, "/events/{id}", http.StatusOK, 0.01)
	RecordParticipation("CONFIRMED", 2)
	RecordStatsClientError("hit")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "ewm_http_requests_total")
	assert.Contains(t, body, `route="/events/{id}"`)
	assert.Contains(t, body, "ewm_participation_requests_total")
	assert.Contains(t, body, "ewm_stats_client_errors_total")
}

func counterValue(t *testing.T, status string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, participationTotal.WithLabelValues(status).Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordParticipation_IgnoresNonPositive(t *testing.T) {
	before := counterValue(t, "REJECTED")
	RecordParticipation("REJECTED", 0)
	RecordParticipation("REJECTED", 3)
	assert.Equal(t, before+3, counterValue(t, "REJECTED"))
}
