package timeline_test

import (
	"testing"

	"github.com/reelcut/reelcut-engine/timeline"
	"github.com/stretchr/testify/assert"
)

func baseTimeline() timeline.Timeline {
	return timeline.Timeline{
		FPS: 30,
		Tracks: []timeline.Track{
			{ID: "t1", Order: 0, Visible: true},
			{ID: "t2", Order: 1, Visible: true},
		},
		Items: []timeline.Item{
			videoItem("a", 0, 100, 1),
			videoItem("b", 100, 50, 1),
		},
	}
}

func TestValidateAcceptsWellFormedTimeline(t *testing.T) {
	assert.NoError(t, timeline.Validate(baseTimeline()))
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name     string
		mutate   func(tl *timeline.Timeline)
		expected error
	}

	tests := []testCase{
		{
			name: "duplicate item id",
			mutate: func(tl *timeline.Timeline) {
				tl.Items = append(tl.Items, videoItem("a", 500, 10, 1))
			},
			expected: timeline.ErrDuplicateID,
		},
		{
			name: "duplicate track order",
			mutate: func(tl *timeline.Timeline) {
				tl.Tracks[1].Order = 0
			},
			expected: timeline.ErrDuplicateID,
		},
		{
			name: "unknown track",
			mutate: func(tl *timeline.Timeline) {
				tl.Items[0].TrackID = "nope"
			},
			expected: timeline.ErrUnknownTrack,
		},
		{
			name: "negative position",
			mutate: func(tl *timeline.Timeline) {
				tl.Items[0].From = -1
			},
			expected: timeline.ErrInvalidPosition,
		},
		{
			name: "zero duration",
			mutate: func(tl *timeline.Timeline) {
				tl.Items[0].DurationInFrames = 0
			},
			expected: timeline.ErrInvalidPosition,
		},
		{
			name: "speed above range",
			mutate: func(tl *timeline.Timeline) {
				tl.Items[0].Speed = 17
			},
			expected: timeline.ErrSpeedOutOfRange,
		},
		{
			name: "speed below range",
			mutate: func(tl *timeline.Timeline) {
				tl.Items[0].Speed = 0.05
			},
			expected: timeline.ErrSpeedOutOfRange,
		},
		{
			name: "source span drifted from duration",
			mutate: func(tl *timeline.Timeline) {
				tl.Items[0].SourceEnd = tl.Items[0].SourceStart + 104
			},
			expected: timeline.ErrSourceSpanMismatch,
		},
		{
			name: "unbridged overlap",
			mutate: func(tl *timeline.Timeline) {
				tl.Items[1].From = 90
			},
			expected: timeline.ErrItemOverlap,
		},
		{
			name: "transition pair duplicated",
			mutate: func(tl *timeline.Timeline) {
				tr := timeline.Transition{
					ID: "tr1", TrackID: "t1", LeftClipID: "a", RightClipID: "b",
					DurationInFrames: 10, Presentation: timeline.PresentationCrossfade, Alignment: 0.5,
				}
				dup := tr
				dup.ID = "tr2"
				tl.Transitions = []timeline.Transition{tr, dup}
			},
			expected: timeline.ErrTransitionBridgeConflict,
		},
	}

	for _, tt := range tests {
		tl := baseTimeline()
		tt.mutate(&tl)
		assert.ErrorIs(t, timeline.Validate(tl), tt.expected, tt.name)
	}
}

// An overlap covered by a transition of sufficient duration is legal.
func TestValidateBridgedOverlap(t *testing.T) {
	tl := baseTimeline()
	tl.Items[1].From = 90
	tl.Transitions = []timeline.Transition{
		{
			ID: "tr1", TrackID: "t1", LeftClipID: "a", RightClipID: "b",
			DurationInFrames: 10, Presentation: timeline.PresentationCrossfade, Alignment: 0.5,
		},
	}
	assert.NoError(t, timeline.Validate(tl))

	// A shorter transition no longer covers the overlap.
	tl.Transitions[0].DurationInFrames = 5
	assert.ErrorIs(t, timeline.Validate(tl), timeline.ErrItemOverlap)
}

// Fragments produced by a fractional-speed split stay valid even when the
// remainder carries the whole rounding step.
func TestValidateAcceptsSplitRemainder(t *testing.T) {
	tl := baseTimeline()
	item := videoItem("c", 200, 5, 0.1)
	tl.Items = append(tl.Items, item)

	left, right, err := timeline.Split(item, 203)
	assert.NoError(t, err)

	tl.Items = tl.Items[:2]
	tl.Items = append(tl.Items, left, right)
	assert.NoError(t, timeline.Validate(tl))
}
