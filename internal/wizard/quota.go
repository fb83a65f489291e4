// SPDX-License-Identifier: MIT

package wizard

import (
	"fmt"

	"github.com/krittawat/subflow/internal/engine"
)

// QuotaError rejects an upload before any byte leaves the gateway. Reason is
// user-facing text.
type QuotaError struct {
	Reason string
}

func (e *QuotaError) Error() string { return e.Reason }

const bytesPerMB = 1 << 20

// checkQuota validates a prospective upload against the effective limits and
// the session's consumed usage. usage is nil before the first upload of a
// session. A zero limit field means unlimited.
func checkQuota(limits engine.Limits, usage *engine.Usage, sizeBytes int64, durationSeconds float64) error {
	if usage != nil && limits.MaxVideos > 0 && usage.VideosCount >= limits.MaxVideos {
		return &QuotaError{Reason: fmt.Sprintf(
			"maximum of %d videos per session reached", limits.MaxVideos)}
	}

	sizeMB := float64(sizeBytes) / bytesPerMB
	if limits.MaxFileSizeMB > 0 && sizeMB > limits.MaxFileSizeMB {
		return &QuotaError{Reason: fmt.Sprintf(
			"file size %.1f MB exceeds the %.0f MB limit", sizeMB, limits.MaxFileSizeMB)}
	}

	if limits.MaxDurationMinutes > 0 && durationSeconds > 0 {
		var usedSeconds float64
		if usage != nil {
			usedSeconds = usage.TotalDuration
		}
		remaining := limits.MaxDurationMinutes - usedSeconds/60
		if durationSeconds/60 > remaining {
			return &QuotaError{Reason: fmt.Sprintf(
				"video duration %.1f min exceeds the remaining quota of %.1f min",
				durationSeconds/60, remaining)}
		}
	}
	return nil
}
