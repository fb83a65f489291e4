// SPDX-License-Identifier: MIT

package workflow

// Step is one entry of the fixed pipeline as rendered by the progress
// tracker.
type Step struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Current   bool   `json:"current"`
	Completed bool   `json:"completed"`
}

var stepTitles = map[Stage]string{
	StageUpload:     "Upload video",
	StageTranscribe: "Transcribe audio",
	StageEdit:       "Edit subtitles",
	StageTranslate:  "Translate & embed",
}

// Steps renders the fixed stage list against the current stage. A step is
// completed iff the wizard has moved past it.
func (c *Controller) Steps() []Step {
	current := c.Stage()
	steps := make([]Step, 0, 4)
	for s := StageUpload; s <= StageTranslate; s++ {
		steps = append(steps, Step{
			ID:        int(s),
			Name:      s.String(),
			Title:     stepTitles[s],
			Current:   s == current,
			Completed: s < current,
		})
	}
	return steps
}
