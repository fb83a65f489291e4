// SPDX-License-Identifier: MIT

// Package api exposes the gateway's JSON surface to the browser: the
// authentication endpoints, the wizard and the admin dashboard.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/krittawat/subflow/internal/admin"
	"github.com/krittawat/subflow/internal/engine"
	sflog "github.com/krittawat/subflow/internal/log"
	"github.com/krittawat/subflow/internal/session"
	"github.com/krittawat/subflow/internal/wizard"
)

const defaultLoginRateLimit = 10

// Server wires the HTTP surface over the gateway services.
type Server struct {
	engine    *engine.Client
	sessions  *session.Manager
	wizard    *wizard.Service
	dashboard *admin.Dashboard

	loginRateLimit int
	logger         zerolog.Logger
}

// Options configure a Server. All service fields are required;
// LoginRateLimit falls back to a safe default.
type Options struct {
	Engine    *engine.Client
	Sessions  *session.Manager
	Wizard    *wizard.Service
	Dashboard *admin.Dashboard

	// LoginRateLimit is the allowed login attempts per client IP per minute.
	LoginRateLimit int
}

// New creates the server.
func New(opts Options) *Server {
	limit := opts.LoginRateLimit
	if limit <= 0 {
		limit = defaultLoginRateLimit
	}
	return &Server{
		engine:         opts.Engine,
		sessions:       opts.Sessions,
		wizard:         opts.Wizard,
		dashboard:      opts.Dashboard,
		loginRateLimit: limit,
		logger:         sflog.WithComponent("api"),
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginRateLimit(s.loginRateLimit)).Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})

		r.Route("/wizard", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleWizardState)
			r.Get("/state", s.handleWizardState)
			r.Post("/upload", s.handleUpload)
			r.Post("/transcribe", s.handleTranscribe)
			r.Put("/segments", s.handleSaveSegments)
			r.Post("/translate", s.handleTranslate)
			r.Post("/translate/redo", s.handleRedoTranslate)
			r.Post("/embed", s.handleEmbed)
			r.Post("/embed/redo", s.handleRedoEmbed)
			r.Post("/reset", s.handleWizardReset)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Get("/users", s.handleListUsers)
			r.Post("/users", s.handleCreateUser)
			r.Delete("/users/{username}", s.handleDeleteUser)

			r.Get("/sessions", s.handleListSessions)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
			r.Post("/sessions/reset", s.handleResetSessions)

			r.Get("/stats", s.handleStats)

			r.Get("/activities", s.handleActivities)
			r.Post("/activities/username", s.handleActivityUsername)

			r.Get("/limits", s.handleDefaultLimits)
			r.Put("/limits", s.handleSetDefaultLimits)
			r.Post("/limits/reload", s.handleReloadLimits)
			r.Get("/users/{username}/limits", s.handleUserLimits)
			r.Put("/users/{username}/limits", s.handleSetUserLimits)
			r.Delete("/users/{username}/limits", s.handleDeleteUserLimits)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"engine": s.engine.BaseURL(),
	})
}
