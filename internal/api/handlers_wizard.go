// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/krittawat/subflow/internal/subtitle"
	"github.com/krittawat/subflow/internal/tasks"
	"github.com/krittawat/subflow/internal/wizard"
)

// maxUploadMemory bounds the multipart parts held in memory; the video part
// itself streams from the temp file.
const maxUploadMemory = 32 << 20

func (s *Server) handleWizardState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wizard.Snapshot())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeBadRequest(w, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "missing file part")
		return
	}
	defer file.Close()

	// The browser probes the duration locally and sends it along so the quota
	// check can run before the bytes move.
	duration, _ := strconv.ParseFloat(r.FormValue("duration_seconds"), 64)

	res, err := s.wizard.Upload(r.Context(), header.Filename, header.Size, duration, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid transcribe payload")
			return
		}
	}

	tr, err := s.wizard.Transcribe(r.Context(), req.Provider)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (s *Server) handleSaveSegments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Segments []subtitle.Segment `json:"segments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid segments payload")
		return
	}

	if err := s.wizard.SaveEdits(r.Context(), req.Segments); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "segments saved"})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language    string `json:"language"`
		StylePrompt string `json:"style_prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid translate payload")
		return
	}

	if err := s.wizard.Translate(r.Context(), req.Language, req.StylePrompt); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "translation started"})
}

func (s *Server) handleRedoTranslate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid redo payload")
		return
	}
	if err := s.wizard.RedoTranslate(req.Language); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "translation cleared"})
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
		Mode     string `json:"mode"`
		wizard.EmbedStyle
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid embed payload")
		return
	}

	if err := s.wizard.Embed(r.Context(), req.Language, tasks.Mode(req.Mode), req.EmbedStyle); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "embedding started"})
}

func (s *Server) handleRedoEmbed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
		Mode     string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid redo payload")
		return
	}
	key := tasks.EmbedKey{Language: req.Language, Mode: tasks.Mode(req.Mode)}
	if err := s.wizard.RedoEmbed(key); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "embed cleared"})
}

func (s *Server) handleWizardReset(w http.ResponseWriter, r *http.Request) {
	s.wizard.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"message": "wizard reset"})
}
