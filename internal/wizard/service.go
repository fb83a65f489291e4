// SPDX-License-Identifier: MIT

// Package wizard binds the stage controller, the job trackers and the engine
// client into the conversion workflow one authenticated user drives.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/krittawat/subflow/internal/engine"
	sflog "github.com/krittawat/subflow/internal/log"
	"github.com/krittawat/subflow/internal/metrics"
	"github.com/krittawat/subflow/internal/subtitle"
	"github.com/krittawat/subflow/internal/tasks"
	"github.com/krittawat/subflow/internal/workflow"
)

// DefaultProvider is the transcription backend used when none is selected.
const DefaultProvider = "botnoi"

var (
	// ErrNotTranslated rejects embedding a target language before its
	// translation completed.
	ErrNotTranslated = errors.New("wizard: language has not been translated yet")
	// ErrBadMode rejects an unknown subtitle delivery mode.
	ErrBadMode = errors.New("wizard: embed mode must be hard or soft")
)

// EmbedStyle tunes the hard-subtitle burn-in. Zero values take the engine
// presets applied by the service.
type EmbedStyle struct {
	SpeedPreset  string  `json:"speed_preset,omitempty"`
	FontName     string  `json:"font_name,omitempty"`
	FontSize     int     `json:"font_size,omitempty"`
	Bold         bool    `json:"bold,omitempty"`
	Outline      float64 `json:"outline,omitempty"`
	Shadow       float64 `json:"shadow,omitempty"`
	FontColor    string  `json:"font_color,omitempty"`
	OutlineColor string  `json:"outline_color,omitempty"`
}

// Service is the per-gateway wizard instance. One exists per process; the
// session manager resets it on logout.
type Service struct {
	engine *engine.Client
	flow   *workflow.Controller

	translations *tasks.Tracker[string, *engine.TranslateResult]
	embeds       *tasks.Tracker[tasks.EmbedKey, *engine.EmbedResult]
	progress     *tasks.Estimator[tasks.EmbedKey]

	mu        sync.Mutex
	sessionID string

	logger zerolog.Logger
}

// New creates a wizard positioned at the upload stage.
func New(client *engine.Client) *Service {
	message := func(fallback string) func(error) string {
		return func(err error) string {
			var apiErr *engine.APIError
			if errors.As(err, &apiErr) {
				return apiErr.UserMessage(fallback)
			}
			return err.Error()
		}
	}
	return &Service{
		engine:       client,
		flow:         workflow.New(),
		translations: tasks.NewTracker[string, *engine.TranslateResult](message("translation failed")),
		embeds:       tasks.NewTracker[tasks.EmbedKey, *engine.EmbedResult](message("embedding failed")),
		progress:     tasks.NewEstimator[tasks.EmbedKey](),
		logger:       sflog.WithComponent("wizard"),
	}
}

// Flow exposes the stage controller, read-only callers only.
func (s *Service) Flow() *workflow.Controller { return s.flow }

// Upload validates the prospective file against the effective quota and, only
// when it passes, streams it to the engine. durationSeconds may be zero when
// the caller could not probe the media.
func (s *Service) Upload(ctx context.Context, filename string, sizeBytes int64, durationSeconds float64, r io.Reader) (*engine.UploadResult, error) {
	if !s.flow.CanRender(workflow.StageUpload) {
		return nil, fmt.Errorf("%w: upload at %s", workflow.ErrWrongStage, s.flow.Stage())
	}

	limits, usage, err := s.effectiveQuota(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkQuota(limits, usage, sizeBytes, durationSeconds); err != nil {
		s.logger.Info().
			Str("event", "wizard.upload_rejected").
			Str("filename", filename).
			Str("reason", err.Error()).
			Msg("upload rejected before transfer")
		return nil, err
	}

	res, err := s.engine.UploadVideo(ctx, filename, r, s.currentSessionID())
	if err != nil {
		return nil, err
	}
	if res.SessionID != "" {
		s.mu.Lock()
		s.sessionID = res.SessionID
		s.mu.Unlock()
	}
	if err := s.flow.MediaUploaded(res); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("event", "wizard.media_uploaded").
		Str("file_id", res.FileID).
		Str("filename", res.OriginalFilename).
		Msg("media uploaded")
	return res, nil
}

// effectiveQuota resolves the limits to validate against: the session's own
// usage+limits once a session exists, otherwise the engine defaults with no
// usage yet.
func (s *Service) effectiveQuota(ctx context.Context) (engine.Limits, *engine.Usage, error) {
	if sid := s.currentSessionID(); sid != "" {
		su, err := s.engine.SessionUsage(ctx, sid)
		if err != nil {
			return engine.Limits{}, nil, err
		}
		usage := su.Usage
		return su.Limits, &usage, nil
	}
	limits, err := s.engine.Limits(ctx)
	if err != nil {
		return engine.Limits{}, nil, err
	}
	return *limits, nil, nil
}

func (s *Service) currentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Transcribe runs speech-to-text for the uploaded media and advances to the
// editing stage. A failure leaves the wizard where it is so the user can
// retry, possibly with another provider.
func (s *Service) Transcribe(ctx context.Context, provider string) (*engine.Transcription, error) {
	if !s.flow.CanRender(workflow.StageTranscribe) {
		return nil, fmt.Errorf("%w: transcribe at %s", workflow.ErrWrongStage, s.flow.Stage())
	}
	if provider == "" {
		provider = DefaultProvider
	}

	res, err := s.engine.Transcribe(ctx, s.flow.Media().FileID, provider)
	if err != nil {
		return nil, err
	}
	tr := res.Transcription
	if err := s.flow.Transcribed(&tr); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("event", "wizard.transcribed").
		Str("provider", provider).
		Int("segments", len(tr.Segments)).
		Msg("transcription complete")
	return &tr, nil
}

// SaveEdits persists the edited segments engine-side and advances to the
// translation stage.
func (s *Service) SaveEdits(ctx context.Context, segments []subtitle.Segment) error {
	if !s.flow.CanRender(workflow.StageEdit) {
		return fmt.Errorf("%w: save edits at %s", workflow.ErrWrongStage, s.flow.Stage())
	}
	if len(segments) == 0 {
		return errors.New("wizard: edited transcription must keep at least one segment")
	}

	if err := s.engine.UpdateSegments(ctx, s.flow.Media().FileID, segments); err != nil {
		return err
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	edited := &engine.Transcription{
		Text:     strings.Join(texts, " "),
		Segments: subtitle.CloneSegments(segments),
	}
	if err := s.flow.Edited(edited); err != nil {
		return err
	}
	s.logger.Info().
		Str("event", "wizard.edits_saved").
		Int("segments", len(segments)).
		Msg("edited subtitles saved")
	return nil
}

// Translate triggers one target-language translation job. The call returns as
// soon as the job is accepted; completion is observable via Snapshot.
func (s *Service) Translate(ctx context.Context, langInput, stylePrompt string) error {
	if !s.flow.CanRender(workflow.StageTranslate) {
		return fmt.Errorf("%w: translate at %s", workflow.ErrWrongStage, s.flow.Stage())
	}
	code, err := NormalizeTarget(langInput)
	if err != nil {
		return err
	}

	fileID := s.flow.Media().FileID
	// The job outlives the triggering request; only its values carry over.
	ctx = context.WithoutCancel(ctx)
	err = s.translations.Trigger(ctx, code, func(ctx context.Context) (*engine.TranslateResult, error) {
		return s.engine.Translate(ctx, engine.TranslateRequest{
			FileID:         fileID,
			TargetLanguage: code,
			StylePrompt:    stylePrompt,
		})
	})
	if err != nil {
		return err
	}
	metrics.IncJobTriggered("translate")
	s.logger.Info().
		Str("event", "wizard.translate_triggered").
		Str("language", code).
		Msg("translation started")
	return nil
}

// Embed triggers one (language, mode) embed job with a cosmetic progress
// estimate. Target languages must have completed translation; "original" is
// always eligible.
func (s *Service) Embed(ctx context.Context, language string, mode tasks.Mode, style EmbedStyle) error {
	if !s.flow.CanRender(workflow.StageTranslate) {
		return fmt.Errorf("%w: embed at %s", workflow.ErrWrongStage, s.flow.Stage())
	}
	if mode != tasks.ModeHard && mode != tasks.ModeSoft {
		return ErrBadMode
	}
	if !ValidEmbedLanguage(language) {
		return fmt.Errorf("unsupported embed language %q", language)
	}
	if language != CodeOriginal {
		if _, done := s.translations.Result(language); !done {
			return fmt.Errorf("%w: %s", ErrNotTranslated, language)
		}
	}

	key := tasks.EmbedKey{Language: language, Mode: mode}
	req := engine.EmbedRequest{
		FileID:       s.flow.Media().FileID,
		Language:     language,
		Type:         string(mode),
		SpeedPreset:  style.SpeedPreset,
		FontName:     style.FontName,
		FontSize:     style.FontSize,
		Bold:         style.Bold,
		Outline:      style.Outline,
		Shadow:       style.Shadow,
		FontColor:    style.FontColor,
		OutlineColor: style.OutlineColor,
	}
	applyStyleDefaults(&req)

	ctx = context.WithoutCancel(ctx)
	err := s.embeds.Trigger(ctx, key, func(ctx context.Context) (*engine.EmbedResult, error) {
		// The estimate lives entirely on the job goroutine. A rejected
		// trigger never reaches this point, so it cannot disturb the
		// in-flight job's estimate.
		s.progress.Start(key)
		res, err := s.engine.EmbedSubtitles(ctx, req)
		s.progress.Finish(key, err == nil)
		return res, err
	})
	if err != nil {
		return err
	}
	metrics.IncJobTriggered("embed")
	s.logger.Info().
		Str("event", "wizard.embed_triggered").
		Str("language", language).
		Str("mode", string(mode)).
		Msg("embedding started")
	return nil
}

func applyStyleDefaults(req *engine.EmbedRequest) {
	if req.SpeedPreset == "" {
		req.SpeedPreset = "fast"
	}
	if req.FontName == "" {
		req.FontName = "Arial"
	}
	if req.FontSize == 0 {
		req.FontSize = 24
	}
	if req.Outline == 0 {
		req.Outline = 2
	}
	if req.Shadow == 0 {
		req.Shadow = 1
	}
	if req.FontColor == "" {
		req.FontColor = "#FFFFFF"
	}
	if req.OutlineColor == "" {
		req.OutlineColor = "#000000"
	}
}

// RedoTranslate clears a completed translation so it can be retriggered.
func (s *Service) RedoTranslate(language string) error {
	code, err := NormalizeTarget(language)
	if err != nil {
		return err
	}
	return s.translations.Redo(code)
}

// RedoEmbed clears a completed embed job so it can be retriggered.
func (s *Service) RedoEmbed(key tasks.EmbedKey) error {
	return s.embeds.Redo(key)
}

// Reset returns the wizard to a blank upload stage. Wired to the session
// manager's logout hook.
func (s *Service) Reset() {
	s.flow.Reset()
	s.translations.Reset()
	s.embeds.Reset()
	s.progress.Reset()
	s.mu.Lock()
	s.sessionID = ""
	s.mu.Unlock()
	s.logger.Info().Str("event", "wizard.reset").Msg("wizard state cleared")
}

// WaitForJobs blocks until all triggered jobs settle. Test helper.
func (s *Service) WaitForJobs() {
	s.translations.Wait()
	s.embeds.Wait()
}
