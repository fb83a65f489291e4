// SPDX-License-Identifier: MIT

package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krittawat/subflow/internal/engine"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
}

// adminServer is a recording engine stub for the admin endpoints, seeded with
// generated fixtures.
type adminServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	users    []engine.UserInfo
	total    int
}

func newAdminServer(t *testing.T) *adminServer {
	t.Helper()
	gofakeit.Seed(11)

	s := &adminServer{total: 95}
	for range 3 {
		s.users = append(s.users, engine.UserInfo{
			Username:  gofakeit.Username(),
			Role:      "user",
			CreatedAt: gofakeit.Date().Format(time.RFC3339),
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/users", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"users": s.snapshotUsers()})
	}))
	mux.HandleFunc("POST /admin/register", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		var u engine.NewUser
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.users = append(s.users, engine.UserInfo{Username: u.Username, Role: u.Role})
		s.mu.Unlock()
		writeJSON(w, map[string]string{"message": "registered"})
	}))
	mux.HandleFunc("DELETE /admin/user/{name}", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		s.mu.Lock()
		kept := s.users[:0]
		for _, u := range s.users {
			if u.Username != name {
				kept = append(kept, u)
			}
		}
		s.users = kept
		s.mu.Unlock()
		writeJSON(w, map[string]string{"message": "deleted"})
	}))
	mux.HandleFunc("GET /admin/sessions", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"sessions": []engine.SessionInfo{
			{SessionID: "user_alice", VideosCount: 2, TotalDuration: 120},
		}})
	}))
	mux.HandleFunc("DELETE /admin/session/{id}", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"message": "deleted"})
	}))
	mux.HandleFunc("POST /admin/reset", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"message": "reset"})
	}))
	mux.HandleFunc("GET /admin/stats", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"stats": engine.Stats{TotalSessions: 4, TotalVideos: 9, TotalSizeMB: 420}})
	}))
	mux.HandleFunc("GET /admin/activities/stats", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"stats": engine.ActivityStats{
			ByType:   map[string]int{"upload": 5, "translate": 3},
			ByStatus: map[string]int{"success": 7, "failed": 1},
		}})
	}))
	mux.HandleFunc("GET /admin/activities", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > s.total {
			limit = s.total
		}
		page := engine.ActivityPage{Total: s.total}
		for i := range limit {
			page.Activities = append(page.Activities, engine.Activity{
				ID:           int64(i + 1),
				Username:     gofakeit.Username(),
				ActivityType: "upload",
				Status:       "success",
			})
		}
		writeJSON(w, page)
	}))
	mux.HandleFunc("/admin/", s.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"message": "ok", "limits": engine.Limits{MaxVideos: 10, MaxFileSizeMB: 500, MaxDurationMinutes: 10}})
	}))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *adminServer) wrap(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
		})
		s.mu.Unlock()
		h(w, r)
	}
}

func (s *adminServer) snapshotUsers() []engine.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.UserInfo(nil), s.users...)
}

func (s *adminServer) lastRequestTo(path string) (recordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return recordedRequest{}, false
}

func (s *adminServer) countRequestsTo(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newDashboard(t *testing.T, debounceWait time.Duration) (*Dashboard, *adminServer) {
	t.Helper()
	srv := newAdminServer(t)
	client := engine.New(engine.Options{
		BaseURL: srv.URL,
		Token:   func() string { return "test-token" },
	})
	return NewWithOptions(client, Options{UsernameDebounce: debounceWait}), srv
}

func TestUsersViewMutationsRefreshListing(t *testing.T) {
	dash, _ := newDashboard(t, time.Millisecond)

	users, err := dash.Users.Refresh(t.Context())
	require.NoError(t, err)
	require.Len(t, users, 3)

	require.NoError(t, dash.Users.Create(t.Context(), engine.NewUser{Username: "krit", Password: "pw"}))
	names := make([]string, 0)
	for _, u := range dash.Users.Current() {
		names = append(names, u.Username)
	}
	assert.Contains(t, names, "krit")

	require.NoError(t, dash.Users.Remove(t.Context(), "krit"))
	for _, u := range dash.Users.Current() {
		assert.NotEqual(t, "krit", u.Username)
	}
}

func TestUsersViewValidation(t *testing.T) {
	dash, srv := newDashboard(t, time.Millisecond)

	assert.Error(t, dash.Users.Create(t.Context(), engine.NewUser{Username: "", Password: "pw"}))
	assert.Error(t, dash.Users.Create(t.Context(), engine.NewUser{Username: "x", Password: "pw", Role: "owner"}))
	assert.Error(t, dash.Users.Remove(t.Context(), ""))

	// Nothing invalid reached the engine.
	assert.Zero(t, srv.countRequestsTo("/admin/register"))
}

func TestSessionsViewDeleteAndReset(t *testing.T) {
	dash, srv := newDashboard(t, time.Millisecond)

	sessions, err := dash.Sessions.Refresh(t.Context())
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	require.NoError(t, dash.Sessions.Delete(t.Context(), "user_alice"))
	req, ok := srv.lastRequestTo("/admin/session/user_alice")
	require.True(t, ok)
	assert.Equal(t, http.MethodDelete, req.Method)

	require.NoError(t, dash.Sessions.ResetAll(t.Context()))
	_, ok = srv.lastRequestTo("/admin/reset")
	assert.True(t, ok)
	// Each mutation refetched the listing.
	assert.Equal(t, 3, srv.countRequestsTo("/admin/sessions"))
}

func TestStatsViewFetchesBothSources(t *testing.T) {
	dash, _ := newDashboard(t, time.Millisecond)

	ov, err := dash.Stats.Refresh(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 9, ov.System.TotalVideos)
	assert.Equal(t, 5, ov.Activity.ByType["upload"])
	assert.Same(t, dash.Stats.Current(), dash.Stats.Current())
}

func TestActivityPagination(t *testing.T) {
	dash, srv := newDashboard(t, time.Millisecond)

	page, err := dash.Activity.Refresh(t.Context())
	require.NoError(t, err)
	assert.Len(t, page.Activities, PageSize)
	assert.Equal(t, 95, page.Total)
	assert.Equal(t, 4, dash.Activity.TotalPages())

	req, ok := srv.lastRequestTo("/admin/activities")
	require.True(t, ok)
	assert.Equal(t, "30", req.Query.Get("limit"))
	assert.Empty(t, req.Query.Get("offset"))

	_, err = dash.Activity.SetPage(t.Context(), 4)
	require.NoError(t, err)
	req, _ = srv.lastRequestTo("/admin/activities")
	assert.Equal(t, "90", req.Query.Get("offset"))

	_, err = dash.Activity.SetPage(t.Context(), -2)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Activity.Page())
}

func TestFilterChangeResetsPage(t *testing.T) {
	dash, srv := newDashboard(t, time.Millisecond)

	_, err := dash.Activity.SetPage(t.Context(), 3)
	require.NoError(t, err)
	require.Equal(t, 3, dash.Activity.Page())

	_, err = dash.Activity.SetFilters(t.Context(), Filters{Status: "failed"})
	require.NoError(t, err)

	assert.Equal(t, 1, dash.Activity.Page())
	req, ok := srv.lastRequestTo("/admin/activities")
	require.True(t, ok)
	assert.Equal(t, "failed", req.Query.Get("status"))
	assert.Empty(t, req.Query.Get("offset"))
}

func TestUsernameFilterDebounces(t *testing.T) {
	dash, srv := newDashboard(t, 30*time.Millisecond)

	_, err := dash.Activity.SetPage(t.Context(), 2)
	require.NoError(t, err)
	before := srv.countRequestsTo("/admin/activities")

	for _, typed := range []string{"a", "al", "ali", "alice"} {
		dash.Activity.SetUsername(t.Context(), typed)
	}
	// The page snaps back before the fetch settles.
	assert.Equal(t, 1, dash.Activity.Page())

	require.Eventually(t, func() bool {
		return srv.countRequestsTo("/admin/activities") == before+1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	// Only the final keystroke reached the engine.
	assert.Equal(t, before+1, srv.countRequestsTo("/admin/activities"))
	req, _ := srv.lastRequestTo("/admin/activities")
	assert.Equal(t, "alice", req.Query.Get("username"))
}

func TestQuotaViewValidatesBeforeSending(t *testing.T) {
	dash, srv := newDashboard(t, time.Millisecond)

	assert.Error(t, dash.Quotas.SetDefaults(t.Context(), engine.Limits{MaxVideos: 0, MaxFileSizeMB: 1, MaxDurationMinutes: 1}))
	assert.Error(t, dash.Quotas.SetForUser(t.Context(), "", engine.Limits{MaxVideos: 1, MaxFileSizeMB: 1, MaxDurationMinutes: 1}))
	assert.Zero(t, srv.countRequestsTo("/admin/default-limits"))

	limits, err := dash.Quotas.Defaults(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 10, limits.MaxVideos)

	require.NoError(t, dash.Quotas.SetForUser(t.Context(), "alice", engine.Limits{MaxVideos: 5, MaxFileSizeMB: 100, MaxDurationMinutes: 5}))
	req, ok := srv.lastRequestTo("/admin/user/alice/limits")
	require.True(t, ok)
	assert.Equal(t, http.MethodPut, req.Method)

	require.NoError(t, dash.Quotas.ClearForUser(t.Context(), "alice"))
	require.NoError(t, dash.Quotas.Reload(t.Context()))
	_, ok = srv.lastRequestTo("/admin/reload-limits")
	assert.True(t, ok)
}
