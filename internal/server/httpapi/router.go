package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/signify/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	// fixed CORS headers, no negotiation
	r.HandleFunc("/functions/reset-streak", s.handleResetStreak)

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
			MaxAge:         300,
		}))

		r.Get("/health", s.handleHealth)
		r.Method(http.MethodGet, "/metrics", metrics.Handler())

		r.Route("/v1", func(r chi.Router) {
			r.Post("/auth/register", s.handleRegister)
			r.Post("/auth/login", s.handleLogin)
			r.Post("/auth/refresh", s.handleRefresh)

			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)

				r.Post("/auth/logout", s.handleLogout)

				r.Post("/session", s.handleBootstrap)
				r.Get("/session", s.handleSnapshot)
				r.Post("/session/streak-event/ack", s.handleAckStreakEvent)
				r.Post("/session/refresh", s.handleRefreshSession)

				r.Patch("/profile", s.handleUpdateProfile)
				r.Patch("/settings", s.handleUpdateSettings)

				r.Get("/dashboard", s.handleDashboard)
				r.Get("/lessons", s.handleLessons)
				r.Get("/practice/sessions", s.handlePracticeSessions)
				r.Post("/practice/score", s.handleScorePractice)
				r.Get("/chat/sessions", s.handleChatSessions)
			})
		})
	})

	return r
}
