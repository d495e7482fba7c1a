package timeline_test

import (
	"testing"

	"github.com/reelcut/reelcut-engine/timeline"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func resolveTimeline() timeline.Timeline {
	video := videoItem("clip", 10, 100, 2)
	video.SourceStart = 40
	video.SourceEnd = 240

	title := timeline.Item{
		ID:               "title",
		TrackID:          "overlay",
		Kind:             timeline.KindText,
		From:             0,
		DurationInFrames: 50,
	}

	music := timeline.Item{
		ID:               "music",
		TrackID:          "audio",
		Kind:             timeline.KindAudio,
		MediaID:          "song",
		From:             0,
		DurationInFrames: 500,
		Volume:           0.8,
	}

	return timeline.Timeline{
		FPS:          30,
		CanvasWidth:  1920,
		CanvasHeight: 1080,
		Tracks: []timeline.Track{
			{ID: "t1", Order: 0, Visible: true},
			{ID: "overlay", Order: 1, Visible: true},
			{ID: "audio", Order: 2, Visible: true},
		},
		Items: []timeline.Item{video, title, music},
	}
}

func TestResolveFrame(t *testing.T) {
	tl := resolveTimeline()

	resolved := timeline.ResolveFrame(tl, 20)

	ids := lo.Map(resolved, func(r timeline.ResolvedItem, _ int) string {
		return r.ItemID
	})
	// Bottom track first so a compositor paints in slice order.
	assert.Equal(t, []string{"clip", "title", "music"}, ids)

	clip := resolved[0]
	// Ten frames into the clip at 2x consumes twenty source frames.
	assert.EqualValues(t, 60, clip.SourceFrame)
	assert.Equal(t, float64(2), clip.Speed)
	assert.Equal(t, timeline.FitContain, clip.FitMode)
	assert.Equal(t, timeline.DefaultTransform(), clip.Transform)
	assert.True(t, clip.Audible)

	title := resolved[1]
	assert.False(t, title.Audible)

	music := resolved[2]
	assert.Equal(t, 0.8, music.Volume)
	assert.True(t, music.Audible)
}

func TestResolveFrameExcludesInactiveItems(t *testing.T) {
	tl := resolveTimeline()

	resolved := timeline.ResolveFrame(tl, 70)
	ids := lo.Map(resolved, func(r timeline.ResolvedItem, _ int) string {
		return r.ItemID
	})
	// The title ended at frame 50.
	assert.Equal(t, []string{"clip", "music"}, ids)

	resolved = timeline.ResolveFrame(tl, 400)
	ids = lo.Map(resolved, func(r timeline.ResolvedItem, _ int) string {
		return r.ItemID
	})
	assert.Equal(t, []string{"music"}, ids)
}

func TestResolveFrameHiddenTrack(t *testing.T) {
	tl := resolveTimeline()
	tl.Tracks[1].Visible = false

	resolved := timeline.ResolveFrame(tl, 20)
	ids := lo.Map(resolved, func(r timeline.ResolvedItem, _ int) string {
		return r.ItemID
	})
	assert.Equal(t, []string{"clip", "music"}, ids)
}

func TestResolveFrameMuteAndSolo(t *testing.T) {
	tl := resolveTimeline()
	tl.Tracks[2].Muted = true

	resolved := timeline.ResolveFrame(tl, 20)
	music, _ := lo.Find(resolved, func(r timeline.ResolvedItem) bool { return r.ItemID == "music" })
	assert.False(t, music.Audible)

	tl = resolveTimeline()
	tl.Tracks[2].Solo = true
	resolved = timeline.ResolveFrame(tl, 20)
	clip, _ := lo.Find(resolved, func(r timeline.ResolvedItem) bool { return r.ItemID == "clip" })
	music, _ = lo.Find(resolved, func(r timeline.ResolvedItem) bool { return r.ItemID == "music" })
	assert.False(t, clip.Audible)
	assert.True(t, music.Audible)
}

// The decode target never crosses the item's source out-point, even on the
// last frame where rounding would land past it.
func TestResolveFrameClampsToSourceSpan(t *testing.T) {
	clip := videoItem("clip", 0, 7, 1.5)
	clip.SourceEnd = clip.SourceStart + timeline.TimelineToSource(7, 1.5)

	tl := timeline.Timeline{
		FPS:    30,
		Tracks: []timeline.Track{{ID: "t1", Order: 0, Visible: true}},
		Items:  []timeline.Item{clip},
	}

	for frame := int64(0); frame < 7; frame++ {
		resolved := timeline.ResolveFrame(tl, frame)
		assert.Len(t, resolved, 1)
		assert.Less(t, resolved[0].SourceFrame, int64(clip.SourceEnd), "frame %d", frame)
	}
}

func TestResolveFrameTransitionProgress(t *testing.T) {
	left := videoItem("left", 0, 50, 1)
	right := videoItem("right", 50, 50, 1)
	right.SourceStart = 200
	right.SourceEnd = 250

	tl := timeline.Timeline{
		FPS:    30,
		Tracks: []timeline.Track{{ID: "t1", Order: 0, Visible: true}},
		Items:  []timeline.Item{left, right},
		Transitions: []timeline.Transition{
			{
				ID: "x", TrackID: "t1", LeftClipID: "left", RightClipID: "right",
				DurationInFrames: 10, Presentation: timeline.PresentationCrossfade, Alignment: 0.5,
			},
		},
	}

	// Frame 45 is the first frame of the centered ten frame window.
	resolved := timeline.ResolveFrame(tl, 45)
	assert.Len(t, resolved, 2)
	for _, r := range resolved {
		assert.Equal(t, "x", r.TransitionID)
		assert.Equal(t, 0.0, r.TransitionProgress)
	}

	// Frame 50 sits at the midpoint; the left clip is already past its end
	// but stays visible through the window.
	resolved = timeline.ResolveFrame(tl, 50)
	ids := lo.Map(resolved, func(r timeline.ResolvedItem, _ int) string {
		return r.ItemID
	})
	assert.Contains(t, ids, "left")
	assert.Contains(t, ids, "right")
	for _, r := range resolved {
		assert.Equal(t, 0.5, r.TransitionProgress)
	}

	// Outside the window only the active clip remains, with no transition.
	resolved = timeline.ResolveFrame(tl, 57)
	assert.Len(t, resolved, 1)
	assert.Equal(t, "right", resolved[0].ItemID)
	assert.Empty(t, resolved[0].TransitionID)
}

func TestSourceRange(t *testing.T) {
	item := videoItem("a", 0, 100, 1.3)
	item.SourceStart = 10.4
	item.SourceEnd = 10.4 + timeline.TimelineToSource(100, 1.3)
	item.SourceDuration = 500

	start, end, speed := timeline.SourceRange(item)
	assert.EqualValues(t, 10, start)
	assert.EqualValues(t, 141, end)
	assert.Equal(t, 1.3, speed)

	// The known material length caps the range.
	item.SourceDuration = 120
	_, end, _ = timeline.SourceRange(item)
	assert.EqualValues(t, 120, end)
}
