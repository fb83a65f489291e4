// SPDX-License-Identifier: MIT

package subtitle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveIndex(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2, Text: "a"},
		{Start: 2, End: 5, Text: "b"},
		{Start: 5, End: 8, Text: "c"},
	}

	cases := []struct {
		name string
		t    float64
		want int
	}{
		{"inside second segment", 3.5, 1},
		{"past the end", 8.5, -1},
		{"before the start", -0.1, -1},
		{"exact start", 0, 0},
		{"shared boundary goes to the earlier segment", 2, 0},
		{"exact final end", 8, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ActiveIndex(segments, tc.t))
		})
	}
}

func TestActiveIndexEmpty(t *testing.T) {
	assert.Equal(t, -1, ActiveIndex(nil, 1.0))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0:00", FormatTime(0))
	assert.Equal(t, "0:07", FormatTime(7.9))
	assert.Equal(t, "2:05", FormatTime(125))
	assert.Equal(t, "0:00", FormatTime(-3))
}

func TestCloneSegmentsIsIndependent(t *testing.T) {
	orig := []Segment{{Start: 0, End: 1.2, Text: "hello"}}
	clone := CloneSegments(orig)
	clone[0].Text = "hi there"

	assert.Equal(t, "hello", orig[0].Text)
	assert.Nil(t, CloneSegments(nil))
}
