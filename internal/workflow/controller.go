// SPDX-License-Identifier: MIT

// Package workflow sequences the four wizard stages and holds the data each
// completed stage produced.
package workflow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/krittawat/subflow/internal/engine"
)

// Stage is one step of the fixed conversion pipeline.
type Stage int

const (
	StageUpload Stage = iota + 1
	StageTranscribe
	StageEdit
	StageTranslate
)

func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "upload"
	case StageTranscribe:
		return "transcribe"
	case StageEdit:
		return "edit"
	case StageTranslate:
		return "translate"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ErrWrongStage is returned when a completion event arrives out of order.
var ErrWrongStage = errors.New("workflow: completion event does not match the current stage")

// Controller owns the wizard position. The stage only moves forward, one step
// at a time, through explicit completion events; failures inside a stage's
// own work never advance it.
type Controller struct {
	mu     sync.RWMutex
	stage  Stage
	media  *engine.UploadResult
	trans  *engine.Transcription
	edited *engine.Transcription
}

// New creates a controller positioned at the upload stage.
func New() *Controller {
	return &Controller{stage: StageUpload}
}

// Stage returns the current stage.
func (c *Controller) Stage() Stage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stage
}

// MediaUploaded records the uploaded media and advances to transcription.
func (c *Controller) MediaUploaded(media *engine.UploadResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage != StageUpload {
		return fmt.Errorf("%w: got media upload at %s", ErrWrongStage, c.stage)
	}
	if media == nil {
		return errors.New("workflow: uploaded media must not be nil")
	}
	c.media = media
	c.stage = StageTranscribe
	return nil
}

// Transcribed records the transcription and advances to editing.
func (c *Controller) Transcribed(tr *engine.Transcription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage != StageTranscribe {
		return fmt.Errorf("%w: got transcription at %s", ErrWrongStage, c.stage)
	}
	if c.media == nil {
		return errors.New("workflow: no media to transcribe")
	}
	if tr == nil {
		return errors.New("workflow: transcription must not be nil")
	}
	c.trans = tr
	c.stage = StageEdit
	return nil
}

// Edited records the edited transcription and advances to translation.
func (c *Controller) Edited(tr *engine.Transcription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage != StageEdit {
		return fmt.Errorf("%w: got edit at %s", ErrWrongStage, c.stage)
	}
	if tr == nil {
		return errors.New("workflow: edited transcription must not be nil")
	}
	c.edited = tr
	c.stage = StageTranslate
	return nil
}

// Reset returns the wizard to its initial state. Invoked on logout.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stage = StageUpload
	c.media = nil
	c.trans = nil
	c.edited = nil
}

// Media returns the uploaded media, nil before upload completes.
func (c *Controller) Media() *engine.UploadResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.media
}

// Transcription returns the raw transcription, nil before transcribe completes.
func (c *Controller) Transcription() *engine.Transcription {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trans
}

// EditedTranscription returns the edited copy, nil before editing completes.
func (c *Controller) EditedTranscription() *engine.Transcription {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.edited
}

// CanRender reports whether stage's view may be shown: the wizard must be at
// exactly that stage and every input the stage depends on must be present.
// This is the explicit guard, not an assumption.
func (c *Controller) CanRender(stage Stage) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stage != stage {
		return false
	}
	switch stage {
	case StageUpload:
		return true
	case StageTranscribe:
		return c.media != nil
	case StageEdit:
		return c.media != nil && c.trans != nil
	case StageTranslate:
		return c.media != nil && c.edited != nil
	}
	return false
}
