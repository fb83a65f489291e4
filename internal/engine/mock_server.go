// SPDX-License-Identifier: MIT

package engine

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/krittawat/subflow/internal/subtitle"
)

// MockServer is a configurable engine mock for tests.
type MockServer struct {
	*httptest.Server

	mu         sync.Mutex
	token      string
	users      map[string]string // username -> password
	transcript Transcription
	segments   map[string][]subtitle.Segment // last update-srt body per file
	translated map[string]TranslateRequest   // keyed by target language
	embedded   map[string]EmbedRequest       // keyed by language+"/"+type
	failures   map[string]int                // failures before success per endpoint
	delay      map[string]time.Duration      // artificial delay per endpoint
	detail     map[string]string             // error detail used for injected failures
}

// NewMockServer creates an engine mock with one known user and a default
// transcription.
func NewMockServer() *MockServer {
	m := &MockServer{
		token: "test-token",
		users: map[string]string{"alice": "secret", "admin": "admin"},
		transcript: Transcription{
			Text: "hello",
			Segments: []subtitle.Segment{
				{Start: 0, End: 1.2, Text: "hello"},
			},
		},
		segments:   make(map[string][]subtitle.Segment),
		translated: make(map[string]TranslateRequest),
		embedded:   make(map[string]EmbedRequest),
		failures:   make(map[string]int),
		delay:      make(map[string]time.Duration),
		detail:     make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", m.handleLogin)
	mux.HandleFunc("POST /api/upload-video", m.handleUpload)
	mux.HandleFunc("GET /api/limits", m.handleLimits)
	mux.HandleFunc("GET /api/session/{id}/usage", m.handleUsage)
	mux.HandleFunc("POST /api/transcribe/{fileID}", m.handleTranscribe)
	mux.HandleFunc("POST /api/update-srt/{fileID}", m.handleUpdateSRT)
	mux.HandleFunc("POST /api/translate", m.handleTranslate)
	mux.HandleFunc("POST /api/embed-subtitles", m.handleEmbed)
	mux.HandleFunc("/admin/", m.handleAdmin)

	m.Server = httptest.NewServer(mux)
	return m
}

// Token returns the bearer token the mock accepts.
func (m *MockServer) Token() string { return m.token }

// FailNext makes the named endpoint fail n times with the given detail before
// succeeding again. Endpoint names: login, upload, transcribe, update-srt,
// translate, embed.
func (m *MockServer) FailNext(endpoint string, n int, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = n
	m.detail[endpoint] = detail
}

// Delay makes the named endpoint sleep before responding.
func (m *MockServer) Delay(endpoint string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay[endpoint] = d
}

// SetTranscription overrides the transcription returned by transcribe.
func (m *MockServer) SetTranscription(tr Transcription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = tr
}

// UpdatedSegments returns the last segments posted for fileID.
func (m *MockServer) UpdatedSegments(fileID string) []subtitle.Segment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return subtitle.CloneSegments(m.segments[fileID])
}

// TranslatedLanguages returns the languages translated so far.
func (m *MockServer) TranslatedLanguages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.translated))
	for lang := range m.translated {
		out = append(out, lang)
	}
	return out
}

// EmbedRequestFor returns the recorded embed request for (language, type).
func (m *MockServer) EmbedRequestFor(language, typ string) (EmbedRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.embedded[language+"/"+typ]
	return req, ok
}

// EmbeddedJobs returns the (language, type) pairs embedded so far.
func (m *MockServer) EmbeddedJobs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.embedded))
	for key := range m.embedded {
		out = append(out, key)
	}
	return out
}

// gate applies delay and injected failures for one endpoint; it reports
// whether the handler should proceed.
func (m *MockServer) gate(w http.ResponseWriter, endpoint string) bool {
	m.mu.Lock()
	d := m.delay[endpoint]
	fail := m.failures[endpoint] > 0
	detail := m.detail[endpoint]
	if fail {
		m.failures[endpoint]--
	}
	m.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	if fail {
		if detail == "" {
			detail = "injected failure"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
		return false
	}
	return true
}

func (m *MockServer) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+m.token {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "invalid or expired token"})
		return false
	}
	return true
}

func writeMockJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (m *MockServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !m.gate(w, "login") {
		return
	}
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)

	m.mu.Lock()
	password, ok := m.users[creds.Username]
	m.mu.Unlock()
	if !ok || password != creds.Password {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "incorrect username or password"})
		return
	}

	role := "user"
	if creds.Username == "admin" {
		role = "admin"
	}
	writeMockJSON(w, LoginResult{
		AccessToken: m.token,
		User:        User{Username: creds.Username, Role: role},
	})
}

func (m *MockServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) || !m.gate(w, "upload") {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "bad multipart", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()
	_, _ = io.Copy(io.Discard, file)

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = "user_alice"
	}
	writeMockJSON(w, UploadResult{
		FileID:           "abc123",
		OriginalFilename: header.Filename,
		SessionID:        sessionID,
		Usage:            &Usage{VideosCount: 1, RemainingVideos: 9},
	})
}

func (m *MockServer) handleLimits(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}
	writeMockJSON(w, Limits{MaxVideos: 10, MaxFileSizeMB: 500, MaxDurationMinutes: 10})
}

func (m *MockServer) handleUsage(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}
	writeMockJSON(w, SessionUsage{
		Usage:  Usage{VideosCount: 1, TotalDuration: 60, RemainingVideos: 9, RemainingDuration: 540},
		Limits: Limits{MaxVideos: 10, MaxFileSizeMB: 500, MaxDurationMinutes: 10},
	})
}

func (m *MockServer) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) || !m.gate(w, "transcribe") {
		return
	}
	m.mu.Lock()
	tr := m.transcript
	m.mu.Unlock()
	writeMockJSON(w, TranscribeResult{Transcription: tr})
}

func (m *MockServer) handleUpdateSRT(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) || !m.gate(w, "update-srt") {
		return
	}
	var body struct {
		Segments []subtitle.Segment `json:"segments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	m.mu.Lock()
	m.segments[r.PathValue("fileID")] = body.Segments
	m.mu.Unlock()
	writeMockJSON(w, map[string]string{"message": "updated"})
}

func (m *MockServer) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) || !m.gate(w, "translate") {
		return
	}
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	m.mu.Lock()
	m.translated[req.TargetLanguage] = req
	m.mu.Unlock()
	writeMockJSON(w, TranslateResult{
		FileID:         req.FileID,
		TargetLanguage: req.TargetLanguage,
		SegmentCount:   1,
	})
}

func (m *MockServer) handleEmbed(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) || !m.gate(w, "embed") {
		return
	}
	var req EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	m.mu.Lock()
	m.embedded[req.Language+"/"+req.Type] = req
	m.mu.Unlock()
	writeMockJSON(w, EmbedResult{
		FileID:     req.FileID,
		Language:   req.Language,
		Type:       req.Type,
		OutputPath: "/data/out/" + req.FileID + "_" + req.Language + "_" + req.Type + ".mp4",
	})
}

// handleAdmin serves minimal fixed admin payloads; listing contents are the
// concern of the admin view tests, which override them per test.
func (m *MockServer) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}
	switch {
	case r.URL.Path == "/admin/users" && r.Method == http.MethodGet:
		writeMockJSON(w, map[string]any{"users": []UserInfo{{Username: "alice", Role: "user"}}})
	case r.URL.Path == "/admin/sessions" && r.Method == http.MethodGet:
		writeMockJSON(w, map[string]any{"sessions": []SessionInfo{}})
	case r.URL.Path == "/admin/stats":
		writeMockJSON(w, map[string]any{"stats": Stats{TotalSessions: 1, TotalVideos: 2}})
	case r.URL.Path == "/admin/activities/stats":
		writeMockJSON(w, map[string]any{"stats": ActivityStats{ByType: map[string]int{"upload": 2}}})
	case r.URL.Path == "/admin/activities":
		writeMockJSON(w, ActivityPage{Activities: []Activity{}, Total: 0})
	case strings.HasPrefix(r.URL.Path, "/admin/"):
		writeMockJSON(w, map[string]string{"message": "ok"})
	default:
		http.NotFound(w, r)
	}
}
