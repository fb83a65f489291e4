// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"

	sflog "github.com/krittawat/subflow/internal/log"
	"github.com/krittawat/subflow/internal/metrics"
	"github.com/krittawat/subflow/internal/session"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeBadRequest(w, "invalid login payload")
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	res, err := s.engine.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		metrics.IncLogin(false)
		writeError(w, err)
		return
	}
	if err := s.sessions.Establish(*res); err != nil {
		// Login still succeeded; only the restart persistence is degraded.
		logger := sflog.WithComponentFromContext(r.Context(), "api")
		logger.Warn().Err(err).Str("event", "auth.persist_degraded").Msg("session persistence failed")
	}
	metrics.IncLogin(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":     res.User,
		"is_admin": res.User.Role == session.RoleAdmin,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.sessions.Current()
	if !ok {
		writeUnauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":     user,
		"is_admin": s.sessions.IsAdmin(),
	})
}
