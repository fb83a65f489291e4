// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/krittawat/subflow/internal/admin"
	"github.com/krittawat/subflow/internal/engine"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.dashboard.Users.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var u engine.NewUser
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeBadRequest(w, "invalid user payload")
		return
	}
	if err := s.dashboard.Users.Create(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"users": s.dashboard.Users.Current()})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.Users.Remove(r.Context(), chi.URLParam(r, "username")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": s.dashboard.Users.Current()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.dashboard.Sessions.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.dashboard.Sessions.Current()})
}

func (s *Server) handleResetSessions(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.Sessions.ResetAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.dashboard.Sessions.Current()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	overview, err := s.dashboard.Stats.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// handleActivities serves one page of the activity log. Changed filters snap
// the view back to page 1, so a page parameter sent together with new filters
// is deliberately ignored.
func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := admin.Filters{
		ActivityType: q.Get("activity_type"),
		SessionID:    q.Get("session_id"),
		Status:       q.Get("status"),
		DateFrom:     q.Get("date_from"),
		DateTo:       q.Get("date_to"),
	}

	view := s.dashboard.Activity
	current, _ := view.Filters()

	var page *engine.ActivityPage
	var err error
	switch {
	case filters != current:
		page, err = view.SetFilters(r.Context(), filters)
	case q.Has("page"):
		n, _ := strconv.Atoi(q.Get("page"))
		page, err = view.SetPage(r.Context(), n)
	default:
		page, err = view.Refresh(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities":  page.Activities,
		"total":       page.Total,
		"page":        view.Page(),
		"total_pages": view.TotalPages(),
		"page_size":   admin.PageSize,
	})
}

// handleActivityUsername feeds the debounced username filter; the refetch
// happens once the admin stops typing, so the response only acknowledges.
func (s *Server) handleActivityUsername(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid username payload")
		return
	}
	// The debounced refetch fires after this response; detach it from the
	// request's cancelation.
	s.dashboard.Activity.SetUsername(context.WithoutCancel(r.Context()), req.Username)
	writeJSON(w, http.StatusAccepted, map[string]any{"page": s.dashboard.Activity.Page()})
}

func (s *Server) handleDefaultLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := s.dashboard.Quotas.Defaults(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"limits": limits})
}

func (s *Server) handleSetDefaultLimits(w http.ResponseWriter, r *http.Request) {
	var limits engine.Limits
	if err := json.NewDecoder(r.Body).Decode(&limits); err != nil {
		writeBadRequest(w, "invalid limits payload")
		return
	}
	if err := s.dashboard.Quotas.SetDefaults(r.Context(), limits); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "default limits updated"})
}

func (s *Server) handleReloadLimits(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.Quotas.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "limits reloaded"})
}

func (s *Server) handleUserLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := s.dashboard.Quotas.ForUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"limits": limits})
}

func (s *Server) handleSetUserLimits(w http.ResponseWriter, r *http.Request) {
	var limits engine.Limits
	if err := json.NewDecoder(r.Body).Decode(&limits); err != nil {
		writeBadRequest(w, "invalid limits payload")
		return
	}
	if err := s.dashboard.Quotas.SetForUser(r.Context(), chi.URLParam(r, "username"), limits); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user limits updated"})
}

func (s *Server) handleDeleteUserLimits(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.Quotas.ClearForUser(r.Context(), chi.URLParam(r, "username")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user limits removed"})
}
