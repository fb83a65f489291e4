// SPDX-License-Identifier: MIT

// Package subtitle holds the timed subtitle line model shared by the wizard.
package subtitle

import "fmt"

// Segment is one timed subtitle line. Times are seconds from the start of the
// video with Start <= End. Only Text is mutable; a segment's identity is its
// position in the ordered sequence.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ActiveIndex returns the index of the segment containing playback time t,
// using the inclusive membership test Start <= t <= End, or -1 when no
// segment contains t. With non-overlapping input at most one segment matches;
// the first match wins otherwise.
func ActiveIndex(segments []Segment, t float64) int {
	for i, seg := range segments {
		if t >= seg.Start && t <= seg.End {
			return i
		}
	}
	return -1
}

// FormatTime renders seconds as m:ss the way the editor displays timestamps.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// CloneSegments returns an independent copy so an edited sequence never
// aliases the original transcription.
func CloneSegments(segments []Segment) []Segment {
	if segments == nil {
		return nil
	}
	out := make([]Segment, len(segments))
	copy(out, segments)
	return out
}
