package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/metrics"
)

func baseRouter(logger logrus.FieldLogger, service string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(RequestID)
	r.Use(Logger(logger, service)) // structured access log
	r.Use(CORS)

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", metrics.Handler())
	return r
}

// NewRouter builds the main service API.
func NewRouter(h *Handler, logger logrus.FieldLogger, service string, rl config.RateLimitConfig) http.Handler {
	r := baseRouter(logger, service)

	r.Route("/admin", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.RegisterUser)
			r.Get("/", h.ListUsers)
			r.Delete("/{userId}", h.DeleteUser)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.AddCategory)
			r.Patch("/{catId}", h.UpdateCategory)
			r.Delete("/{catId}", h.DeleteCategory)
		})
		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.AdminSearchEvents)
			r.Patch("/{eventId}", h.AdminUpdateEvent)
			r.Delete("/{eventId}/comments/{commentId}", h.AdminDeleteComment)
		})
		r.Route("/compilations", func(r chi.Router) {
			r.Post("/", h.SaveCompilation)
			r.Patch("/{compId}", h.UpdateCompilation)
			r.Delete("/{compId}", h.DeleteCompilation)
		})
	})

	r.Route("/users/{userId}", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListOwnEvents)
			r.Post("/", h.CreateEvent)
			r.Get("/{eventId}", h.GetOwnEvent)
			r.Patch("/{eventId}", h.UpdateOwnEvent)
			r.Get("/{eventId}/requests", h.ListEventRequests)
			r.Patch("/{eventId}/requests", h.ModerateRequests)
			r.Post("/{eventId}/comments", h.AddComment)
			r.Patch("/{eventId}/comments/{commentId}", h.EditComment)
			r.Delete("/{eventId}/comments/{commentId}", h.DeleteComment)
		})
		r.Route("/requests", func(r chi.Router) {
			r.Get("/", h.ListOwnRequests)
			r.Post("/", h.AddRequest)
			r.Patch("/{requestId}/cancel", h.CancelRequest)
		})
	})

	// Public routes are rate limited.
	r.Group(func(r chi.Router) {
		r.Use(RateLimit(rl.RPS, rl.Burst))

		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{catId}", h.GetCategory)
		r.Get("/events", h.SearchEvents)
		r.Get("/events/{eventId}", h.GetEvent)
		r.Get("/events/{eventId}/comments", h.ListComments)
		r.Get("/events/{eventId}/comments/{commentId}", h.GetComment)
		r.Get("/compilations", h.ListCompilations)
		r.Get("/compilations/{compId}", h.GetCompilation)
	})

	return r
}

// NewStatsRouter builds the stats service API.
func NewStatsRouter(h *StatsHandler, logger logrus.FieldLogger, service string) http.Handler {
	r := baseRouter(logger, service)
	r.Post("/hit", h.SaveHit)
	r.Get("/stats", h.GetStats)
	return r
}
