// SPDX-License-Identifier: MIT

package wizard

import (
	"github.com/krittawat/subflow/internal/engine"
	"github.com/krittawat/subflow/internal/tasks"
	"github.com/krittawat/subflow/internal/workflow"
)

// TranslationView is one target language's job status.
type TranslationView struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Running      bool   `json:"running"`
	Done         bool   `json:"done"`
	SegmentCount int    `json:"segment_count,omitempty"`
	SRTURL       string `json:"srt_url,omitempty"`
}

// EmbedView is one (language, mode) embed job's status.
type EmbedView struct {
	Language    string  `json:"language"`
	Mode        string  `json:"mode"`
	Running     bool    `json:"running"`
	Done        bool    `json:"done"`
	Progress    float64 `json:"progress"`
	DownloadURL string  `json:"download_url,omitempty"`
}

// Snapshot is the whole wizard state as served to the browser.
type Snapshot struct {
	Stage string          `json:"stage"`
	Steps []workflow.Step `json:"steps"`

	Media         *engine.UploadResult  `json:"media,omitempty"`
	Transcription *engine.Transcription `json:"transcription,omitempty"`
	Edited        *engine.Transcription `json:"edited,omitempty"`

	StreamURL      string `json:"stream_url,omitempty"`
	MP3URL         string `json:"mp3_url,omitempty"`
	OriginalSRTURL string `json:"original_srt_url,omitempty"`

	Translations     []TranslationView `json:"translations"`
	TranslationError string            `json:"translation_error,omitempty"`
	Embeds           []EmbedView       `json:"embeds"`
	EmbedError       string            `json:"embed_error,omitempty"`
}

// Snapshot assembles the current state. Stage data is only included once the
// controller confirms the producing stage completed; partially consistent
// state never leaks to the view.
func (s *Service) Snapshot() Snapshot {
	snap := Snapshot{
		Stage: s.flow.Stage().String(),
		Steps: s.flow.Steps(),
	}

	media := s.flow.Media()
	if media == nil {
		snap.Translations = []TranslationView{}
		snap.Embeds = []EmbedView{}
		return snap
	}
	snap.Media = media
	snap.Transcription = s.flow.Transcription()
	snap.Edited = s.flow.EditedTranscription()
	snap.StreamURL = s.engine.StreamVideoURL(media.FileID)
	snap.MP3URL = s.engine.DownloadMP3URL(media.FileID)
	if snap.Transcription != nil {
		snap.OriginalSRTURL = s.engine.DownloadSRTURL(media.FileID, CodeOriginal)
	}

	snap.TranslationError = s.translations.ErrorMessage()
	for _, lang := range TargetLanguages {
		view := TranslationView{
			Code:    lang.Code,
			Name:    lang.Name,
			Running: s.translations.Running(lang.Code),
		}
		if res, ok := s.translations.Result(lang.Code); ok {
			view.Done = true
			view.SegmentCount = res.SegmentCount
			view.SRTURL = s.engine.DownloadSRTURL(media.FileID, lang.Code)
		}
		snap.Translations = append(snap.Translations, view)
	}

	snap.EmbedError = s.embeds.ErrorMessage()
	codes := append([]string{CodeOriginal}, targetCodes()...)
	for _, code := range codes {
		for _, mode := range []tasks.Mode{tasks.ModeHard, tasks.ModeSoft} {
			key := tasks.EmbedKey{Language: code, Mode: mode}
			view := EmbedView{
				Language: code,
				Mode:     string(mode),
				Running:  s.embeds.Running(key),
				Progress: s.progress.Progress(key),
			}
			if _, ok := s.embeds.Result(key); ok {
				view.Done = true
				view.DownloadURL = s.engine.DownloadVideoURL(media.FileID, code, string(mode))
			}
			snap.Embeds = append(snap.Embeds, view)
		}
	}
	return snap
}

func targetCodes() []string {
	codes := make([]string, len(TargetLanguages))
	for i, l := range TargetLanguages {
		codes[i] = l.Code
	}
	return codes
}
