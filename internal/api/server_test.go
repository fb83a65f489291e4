// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krittawat/subflow/internal/admin"
	"github.com/krittawat/subflow/internal/engine"
	"github.com/krittawat/subflow/internal/session"
	"github.com/krittawat/subflow/internal/wizard"
)

type testGateway struct {
	handler  http.Handler
	mock     *engine.MockServer
	sessions *session.Manager
	wizard   *wizard.Service
}

func newTestGateway(t *testing.T, loginLimit int) *testGateway {
	t.Helper()
	mock := engine.NewMockServer()
	t.Cleanup(mock.Close)

	sessions := session.NewManager(session.NewStore(t.TempDir()))
	client := engine.New(engine.Options{
		BaseURL: mock.URL,
		Token:   sessions.Token,
	})
	svc := wizard.New(client)
	sessions.OnReset(svc.Reset)
	t.Cleanup(svc.Reset)

	srv := New(Options{
		Engine:         client,
		Sessions:       sessions,
		Wizard:         svc,
		Dashboard:      admin.New(client),
		LoginRateLimit: loginLimit,
	})
	return &testGateway{
		handler:  srv.Handler(),
		mock:     mock,
		sessions: sessions,
		wizard:   svc,
	}
}

func (g *testGateway) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func (g *testGateway) login(t *testing.T, username, password string) {
	t.Helper()
	rec := g.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	g := newTestGateway(t, 10)
	rec := g.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLoginLogoutFlow(t *testing.T) {
	g := newTestGateway(t, 10)

	rec := g.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "incorrect username or password", decodeBody(t, rec)["error"])

	g.login(t, "alice", "secret")
	rec = g.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["is_admin"])

	rec = g.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = g.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWizardRequiresAuth(t *testing.T) {
	g := newTestGateway(t, 10)
	rec := g.do(t, http.MethodGet, "/api/wizard", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRequiresAdminRole(t *testing.T) {
	g := newTestGateway(t, 10)

	g.login(t, "alice", "secret")
	rec := g.do(t, http.MethodGet, "/api/admin/users", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access denied", decodeBody(t, rec)["error"])

	g.login(t, "admin", "admin")
	rec = g.do(t, http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	g := newTestGateway(t, 2)

	for i := 0; i < 2; i++ {
		rec := g.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "alice", "password": fmt.Sprintf("wrong-%d", i),
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := g.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice", "password": "secret",
	})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func uploadRequest(t *testing.T, duration string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("duration_seconds", duration))
	part, err := mw.CreateFormFile("file", "clip.mp4")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/wizard/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestWizardFlowOverHTTP(t *testing.T) {
	g := newTestGateway(t, 10)
	g.login(t, "alice", "secret")

	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, uploadRequest(t, "30"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "abc123", decodeBody(t, rec)["file_id"])

	rec = g.do(t, http.MethodPost, "/api/wizard/transcribe", map[string]string{"provider": "botnoi"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = g.do(t, http.MethodPut, "/api/wizard/segments", map[string]any{
		"segments": []map[string]any{{"start": 0, "end": 1.2, "text": "hi there"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, g.mock.UpdatedSegments("abc123"), 1)
	assert.Equal(t, "hi there", g.mock.UpdatedSegments("abc123")[0].Text)

	rec = g.do(t, http.MethodPost, "/api/wizard/translate", map[string]string{"language": "english"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	g.wizard.WaitForJobs()

	rec = g.do(t, http.MethodPost, "/api/wizard/embed", map[string]string{
		"language": "english", "mode": "hard",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	g.wizard.WaitForJobs()

	rec = g.do(t, http.MethodGet, "/api/wizard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "translate", body["stage"])
	assert.Contains(t, rec.Body.String(), "/api/download-video/abc123/english/hard")
}

func TestWrongStageMapsToConflict(t *testing.T) {
	g := newTestGateway(t, 10)
	g.login(t, "alice", "secret")

	rec := g.do(t, http.MethodPost, "/api/wizard/transcribe", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogoutResetsWizard(t *testing.T) {
	g := newTestGateway(t, 10)
	g.login(t, "alice", "secret")

	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, uploadRequest(t, "30"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = g.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	g.login(t, "alice", "secret")
	rec = g.do(t, http.MethodGet, "/api/wizard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "upload", decodeBody(t, rec)["stage"])
}

func TestAdminActivitiesPaging(t *testing.T) {
	g := newTestGateway(t, 10)
	g.login(t, "admin", "admin")

	rec := g.do(t, http.MethodGet, "/api/admin/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(admin.PageSize), body["page_size"])
}

func TestMetricsEndpoint(t *testing.T) {
	g := newTestGateway(t, 10)
	rec := g.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
