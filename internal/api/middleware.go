// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	sflog "github.com/krittawat/subflow/internal/log"
)

const requestIDHeader = "X-Request-ID"

// requestID assigns every request a correlation ID, honoring one supplied by
// the caller, and echoes it back in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(sflog.ContextWithRequestID(r.Context(), id)))
	})
}

// requestLogger emits one structured line per request with status and timing.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		logger := sflog.WithComponentFromContext(r.Context(), "api")
		logger.Info().
			Str("event", "http.request").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// loginRateLimit bounds login attempts per client IP. The engine enforces its
// own limits too; this keeps brute force from even reaching it.
func loginRateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(time.Minute.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many login attempts, try again later"}`))
		}),
	)
}

// requireAuth rejects requests without an established session.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.Token() == "" {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin rejects authenticated users without the admin role.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.IsAdmin() {
			writeForbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
