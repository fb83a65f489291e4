// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/krittawat/subflow/internal/engine"
	"github.com/krittawat/subflow/internal/tasks"
	"github.com/krittawat/subflow/internal/wizard"
	"github.com/krittawat/subflow/internal/workflow"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto the status taxonomy and renders the
// user-facing message.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": messageFor(err)})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

func writeForbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
}

// statusFor translates the engine sentinels and the wizard's own rejections
// into HTTP statuses. Anything unclassified is the caller's fault.
func statusFor(err error) int {
	var qErr *wizard.QuotaError
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrQuotaExceeded), errors.As(err, &qErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, engine.ErrEngineUnavailable), errors.Is(err, engine.ErrEngineError):
		return http.StatusBadGateway
	case errors.Is(err, workflow.ErrWrongStage),
		errors.Is(err, tasks.ErrAlreadyRunning),
		errors.Is(err, tasks.ErrAlreadyDone):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func messageFor(err error) string {
	var apiErr *engine.APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage("request failed")
	}
	return err.Error()
}
