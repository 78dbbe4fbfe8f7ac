// Package metrics holds the Prometheus collectors shared by both services.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ewm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ewm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "route"},
	)

	participationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ewm_participation_requests_total",
			Help: "Participation request outcomes",
		},
		[]string{"status"}, // PENDING, CONFIRMED, REJECTED, CANCELED
	)

	moderationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ewm_event_state_actions_total",
			Help: "Applied event state actions",
		},
		[]string{"action"},
	)

	statsClientErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ewm_stats_client_errors_total",
			Help: "Failed calls to the stats service",
		},
		[]string{"op"}, // hit, stats
	)

	hitsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ewm_stats_hits_stored_total",
			Help: "Endpoint hits persisted by the stats service",
		},
	)

	dbConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ewm_database_connections",
			Help: "Database pool connections by kind",
		},
		[]string{"kind"}, // acquired, idle, max
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		participationTotal,
		moderationTotal,
		statsClientErrors,
		hitsStored,
		dbConnections,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(service, method, route string, status int, seconds float64) {
	httpRequestsTotal.WithLabelValues(service, method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(service, method, route).Observe(seconds)
}

// RecordParticipation counts a participation request entering status.
func RecordParticipation(status string, n int) {
	if n <= 0 {
		return
	}
	participationTotal.WithLabelValues(status).Add(float64(n))
}

// RecordStateAction counts an applied event state action.
func RecordStateAction(action string) {
	moderationTotal.WithLabelValues(action).Inc()
}

// RecordStatsClientError counts a failed stats call.
func RecordStatsClientError(op string) {
	statsClientErrors.WithLabelValues(op).Inc()
}

// RecordHitStored counts a persisted endpoint hit.
func RecordHitStored() {
	hitsStored.Inc()
}

// SetDBConnections publishes pool occupancy.
func SetDBConnections(acquired, idle, max int) {
	dbConnections.WithLabelValues("acquired").Set(float64(acquired))
	dbConnections.WithLabelValues("idle").Set(float64(idle))
	dbConnections.WithLabelValues("max").Set(float64(max))
}
