package store_test

import (
	"testing"

	"github.com/reelcut/reelcut-engine/store"
	"github.com/reelcut/reelcut-engine/timeline"
	"github.com/stretchr/testify/assert"
)

// commandTimeline is the fixture most command tests start from: two video
// clips on one track with a 20 frame gap between them.
func commandTimeline() timeline.Timeline {
	return timeline.Timeline{
		FPS: 25,
		Tracks: []timeline.Track{
			{ID: "v1", Name: "V1", Order: 0, Visible: true},
			{ID: "a1", Name: "A1", Order: 1, Visible: true},
		},
		Items: []timeline.Item{
			{
				ID: "a", TrackID: "v1", Kind: timeline.KindVideo, MediaID: "m1", OriginID: "a",
				From: 0, DurationInFrames: 100, Speed: 1,
				SourceStart: 0, SourceEnd: 100, SourceDuration: 1000,
			},
			{
				ID: "b", TrackID: "v1", Kind: timeline.KindVideo, MediaID: "m1", OriginID: "b",
				From: 120, DurationInFrames: 80, Speed: 1,
				SourceStart: 200, SourceEnd: 280, SourceDuration: 1000,
			},
		},
	}
}

func seamTransition(leftID, rightID string) timeline.Transition {
	return timeline.Transition{
		ID:               "tr1",
		TrackID:          "v1",
		LeftClipID:       leftID,
		RightClipID:      rightID,
		DurationInFrames: 12,
		Presentation:     timeline.PresentationCrossfade,
		Alignment:        0.5,
	}
}

func TestSplitItemCommand(t *testing.T) {
	tl := commandTimeline()

	outcome, err := store.SplitItem{ItemID: "a", AtFrame: 40}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, outcome.RemovedItemIDs)
	assert.Len(t, outcome.CreatedItemIDs, 2)
	assert.Len(t, tl.Items, 3)

	first, found := tl.ItemByID(outcome.CreatedItemIDs[0])
	assert.True(t, found)
	second, found := tl.ItemByID(outcome.CreatedItemIDs[1])
	assert.True(t, found)

	assert.Equal(t, int64(0), first.From)
	assert.Equal(t, int64(40), first.DurationInFrames)
	assert.Equal(t, int64(40), second.From)
	assert.Equal(t, int64(60), second.DurationInFrames)
	assert.Equal(t, "a", first.OriginID)
	assert.Equal(t, "a", second.OriginID)
	assert.Equal(t, float64(40), first.SourceEnd)
	assert.Equal(t, float64(40), second.SourceStart)
}

func TestSplitItemLockedTrack(t *testing.T) {
	tl := commandTimeline()
	tl.Tracks[0].Locked = true

	_, err := store.SplitItem{ItemID: "a", AtFrame: 40}.Apply(&tl)
	assert.ErrorIs(t, err, store.ErrTrackLocked)
}

func TestSplitItemMovesTransitionRefs(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100
	tl.Items[1].SourceStart = 100
	tl.Items[1].SourceEnd = 180
	tl.Transitions = []timeline.Transition{seamTransition("a", "b")}

	outcome, err := store.SplitItem{ItemID: "a", AtFrame: 40}.Apply(&tl)
	assert.NoError(t, err)

	// The seam a|b survives as secondFragment|b.
	assert.Equal(t, outcome.CreatedItemIDs[1], tl.Transitions[0].LeftClipID)
	assert.Equal(t, "b", tl.Transitions[0].RightClipID)
	assert.NoError(t, timeline.ValidateTransition(tl.Transitions[0], tl.Items))
}

func TestJoinRestoresSplitItem(t *testing.T) {
	tl := commandTimeline()

	splitOutcome, err := store.SplitItem{ItemID: "a", AtFrame: 40}.Apply(&tl)
	assert.NoError(t, err)

	joinOutcome, err := store.JoinItems{ItemIDs: splitOutcome.CreatedItemIDs}.Apply(&tl)
	assert.NoError(t, err)
	assert.Len(t, joinOutcome.CreatedItemIDs, 1)
	assert.Len(t, tl.Items, 2)

	merged, found := tl.ItemByID(joinOutcome.CreatedItemIDs[0])
	assert.True(t, found)
	assert.Equal(t, int64(0), merged.From)
	assert.Equal(t, int64(100), merged.DurationInFrames)
	assert.Equal(t, "a", merged.OriginID)
	assert.Equal(t, float64(0), merged.SourceStart)
	assert.Equal(t, float64(100), merged.SourceEnd)
}

func TestJoinUnrelatedItems(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100

	_, err := store.JoinItems{ItemIDs: []string{"a", "b"}}.Apply(&tl)
	assert.ErrorIs(t, err, timeline.ErrIncompatibleJoin)
}

func TestJoinAcrossTracks(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].TrackID = "a1"

	_, err := store.JoinItems{ItemIDs: []string{"a", "b"}}.Apply(&tl)
	assert.ErrorIs(t, err, timeline.ErrCrossTrackOperation)
}

func TestJoinSeamTransitionNeedsForce(t *testing.T) {
	tl := commandTimeline()
	splitOutcome, err := store.SplitItem{ItemID: "a", AtFrame: 40}.Apply(&tl)
	assert.NoError(t, err)

	firstID, secondID := splitOutcome.CreatedItemIDs[0], splitOutcome.CreatedItemIDs[1]
	tl.Transitions = []timeline.Transition{seamTransition(firstID, secondID)}

	_, err = store.JoinItems{ItemIDs: []string{firstID, secondID}}.Apply(&tl)
	assert.ErrorIs(t, err, timeline.ErrTransitionBridgeConflict)

	outcome, err := store.JoinItems{ItemIDs: []string{firstID, secondID}, Force: true}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, []string{"tr1"}, outcome.RemovedTransitionIDs)
	assert.Empty(t, tl.Transitions)
}

func TestJoinKeepsOuterTransition(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100
	tl.Items[1].SourceStart = 100
	tl.Items[1].SourceEnd = 180
	tl.Transitions = []timeline.Transition{seamTransition("a", "b")}

	splitOutcome, err := store.SplitItem{ItemID: "a", AtFrame: 40}.Apply(&tl)
	assert.NoError(t, err)

	joinOutcome, err := store.JoinItems{ItemIDs: splitOutcome.CreatedItemIDs}.Apply(&tl)
	assert.NoError(t, err)

	assert.Len(t, tl.Transitions, 1)
	assert.Equal(t, joinOutcome.CreatedItemIDs[0], tl.Transitions[0].LeftClipID)
	assert.Equal(t, "b", tl.Transitions[0].RightClipID)
	assert.NoError(t, timeline.ValidateTransition(tl.Transitions[0], tl.Items))
}

func TestTrimEndClampsToNeighbor(t *testing.T) {
	tl := commandTimeline()

	outcome, err := store.TrimItem{ItemID: "a", Handle: timeline.HandleEnd, Delta: 30}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, int64(20), outcome.AppliedDelta)

	a, _ := tl.ItemByID("a")
	assert.Equal(t, int64(120), a.DurationInFrames)
	assert.Equal(t, float64(120), a.SourceEnd)
}

func TestTrimStartShiftsSource(t *testing.T) {
	tl := commandTimeline()

	outcome, err := store.TrimItem{ItemID: "b", Handle: timeline.HandleStart, Delta: 10}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), outcome.AppliedDelta)

	b, _ := tl.ItemByID("b")
	assert.Equal(t, int64(130), b.From)
	assert.Equal(t, int64(70), b.DurationInFrames)
	assert.Equal(t, float64(210), b.SourceStart)
}

func TestTrimBridgedHandleNeedsForce(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100
	tl.Transitions = []timeline.Transition{seamTransition("a", "b")}

	_, err := store.TrimItem{ItemID: "a", Handle: timeline.HandleEnd, Delta: -10}.Apply(&tl)
	assert.ErrorIs(t, err, timeline.ErrTransitionBridgeConflict)

	outcome, err := store.TrimItem{ItemID: "a", Handle: timeline.HandleEnd, Delta: -10, Force: true}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, int64(-10), outcome.AppliedDelta)
	assert.Equal(t, []string{"tr1"}, outcome.RemovedTransitionIDs)
	assert.Empty(t, tl.Transitions)
}

func TestTrimUnknownItem(t *testing.T) {
	tl := commandTimeline()

	_, err := store.TrimItem{ItemID: "missing", Handle: timeline.HandleEnd, Delta: 10}.Apply(&tl)
	assert.ErrorIs(t, err, store.ErrUnknownItem)
}

func TestMoveItem(t *testing.T) {
	tl := commandTimeline()

	outcome, err := store.MoveItem{ItemID: "b", ToFrame: 200}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, int64(80), outcome.AppliedDelta)

	b, _ := tl.ItemByID("b")
	assert.Equal(t, int64(200), b.From)
	assert.Equal(t, "v1", b.TrackID)
}

func TestMoveItemToOtherTrack(t *testing.T) {
	tl := commandTimeline()

	_, err := store.MoveItem{ItemID: "b", ToTrackID: "a1", ToFrame: 0}.Apply(&tl)
	assert.NoError(t, err)

	b, _ := tl.ItemByID("b")
	assert.Equal(t, "a1", b.TrackID)
	assert.Equal(t, int64(0), b.From)
}

func TestMoveItemToLockedTrack(t *testing.T) {
	tl := commandTimeline()
	tl.Tracks = append(tl.Tracks, timeline.Track{ID: "v2", Order: 2, Locked: true, Visible: true})

	_, err := store.MoveItem{ItemID: "b", ToTrackID: "v2", ToFrame: 0}.Apply(&tl)
	assert.ErrorIs(t, err, store.ErrTrackLocked)
}

func TestMoveBreakingSeamNeedsForce(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100
	tl.Transitions = []timeline.Transition{seamTransition("a", "b")}

	_, err := store.MoveItem{ItemID: "b", ToFrame: 150}.Apply(&tl)
	assert.ErrorIs(t, err, timeline.ErrTransitionBridgeConflict)

	tl = commandTimeline()
	tl.Items[1].From = 100
	tl.Transitions = []timeline.Transition{seamTransition("a", "b")}

	outcome, err := store.MoveItem{ItemID: "b", ToFrame: 150, Force: true}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, []string{"tr1"}, outcome.RemovedTransitionIDs)
	assert.Empty(t, tl.Transitions)
}

func TestDeleteItemRipple(t *testing.T) {
	tl := commandTimeline()

	outcome, err := store.DeleteItem{ItemID: "a", Ripple: true}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, outcome.RemovedItemIDs)
	assert.Equal(t, int64(100), outcome.FramesRemoved)

	b, _ := tl.ItemByID("b")
	assert.Equal(t, int64(20), b.From)
}

func TestDeleteItemWithoutRipple(t *testing.T) {
	tl := commandTimeline()

	outcome, err := store.DeleteItem{ItemID: "a"}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), outcome.FramesRemoved)

	b, _ := tl.ItemByID("b")
	assert.Equal(t, int64(120), b.From)
}

func TestDeleteItemDropsTransitions(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100
	tl.Transitions = []timeline.Transition{seamTransition("a", "b")}

	outcome, err := store.DeleteItem{ItemID: "a"}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, []string{"tr1"}, outcome.RemovedTransitionIDs)
	assert.Empty(t, tl.Transitions)
}

func TestAddItemDefaultsLineage(t *testing.T) {
	tl := commandTimeline()

	outcome, err := store.AddItem{Item: timeline.Item{
		TrackID: "a1", Kind: timeline.KindAudio, MediaID: "m2",
		From: 0, DurationInFrames: 50, Speed: 1,
	}}.Apply(&tl)
	assert.NoError(t, err)

	item, found := tl.ItemByID(outcome.CreatedItemIDs[0])
	assert.True(t, found)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, item.ID, item.OriginID)
}

func TestUpdateItemFields(t *testing.T) {
	tl := commandTimeline()
	name := "Opening shot"
	volume := 0.5
	muted := true

	_, err := store.UpdateItem{ItemID: "a", NewName: &name, Volume: &volume, Muted: &muted}.Apply(&tl)
	assert.NoError(t, err)

	a, _ := tl.ItemByID("a")
	assert.Equal(t, "Opening shot", a.Name)
	assert.Equal(t, 0.5, a.Volume)
	assert.True(t, a.Muted)
	// Untouched fields keep their values.
	assert.Equal(t, int64(100), a.DurationInFrames)
}

func TestUpdateTrackLockBlocksEdits(t *testing.T) {
	tl := commandTimeline()
	locked := true

	_, err := store.UpdateTrack{TrackID: "v1", Locked: &locked}.Apply(&tl)
	assert.NoError(t, err)

	_, err = store.SplitItem{ItemID: "a", AtFrame: 40}.Apply(&tl)
	assert.ErrorIs(t, err, store.ErrTrackLocked)
}

func TestUpdateTrackUnknown(t *testing.T) {
	tl := commandTimeline()
	locked := true

	_, err := store.UpdateTrack{TrackID: "missing", Locked: &locked}.Apply(&tl)
	assert.ErrorIs(t, err, timeline.ErrUnknownTrack)
}

func TestAddTrackAppendsOnTop(t *testing.T) {
	tl := commandTimeline()

	outcome, err := store.AddTrack{NewName: "V2"}.Apply(&tl)
	assert.NoError(t, err)
	assert.Len(t, outcome.CreatedTrackIDs, 1)

	track, found := tl.TrackByID(outcome.CreatedTrackIDs[0])
	assert.True(t, found)
	assert.Equal(t, 2, track.Order)
	assert.True(t, track.Visible)
}

func TestAddTransitionDefaults(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100

	outcome, err := store.AddTransition{ItemID: "a", DurationInFrames: 12}.Apply(&tl)
	assert.NoError(t, err)
	assert.Len(t, outcome.CreatedTransitionIDs, 1)

	tr := tl.Transitions[0]
	assert.Equal(t, "a", tr.LeftClipID)
	assert.Equal(t, "b", tr.RightClipID)
	assert.Equal(t, "v1", tr.TrackID)
	assert.Equal(t, timeline.PresentationCrossfade, tr.Presentation)
	assert.Equal(t, 0.5, tr.Alignment)
}

func TestAddTransitionDuplicateSeam(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100

	_, err := store.AddTransition{ItemID: "a", DurationInFrames: 12}.Apply(&tl)
	assert.NoError(t, err)

	_, err = store.AddTransition{ItemID: "a", DurationInFrames: 8}.Apply(&tl)
	assert.ErrorIs(t, err, timeline.ErrTransitionBridgeConflict)
}

func TestAddTransitionWithoutSeam(t *testing.T) {
	tl := commandTimeline()

	_, err := store.AddTransition{ItemID: "a", DurationInFrames: 12}.Apply(&tl)
	assert.ErrorIs(t, err, timeline.ErrTransitionNotAdjacent)
}

func TestAddTransitionZeroDuration(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100

	_, err := store.AddTransition{ItemID: "a", DurationInFrames: 0}.Apply(&tl)
	assert.ErrorIs(t, err, store.ErrInvalidTransitionDuration)
}

func TestUpdateTransition(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100
	tl.Transitions = []timeline.Transition{seamTransition("a", "b")}

	duration := int64(20)
	presentation := timeline.PresentationWipe
	direction := timeline.DirectionLeft

	outcome, err := store.UpdateTransition{
		TransitionID:     "tr1",
		DurationInFrames: &duration,
		Presentation:     &presentation,
		Direction:        &direction,
	}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, []string{"tr1"}, outcome.UpdatedTransitionIDs)

	tr := tl.Transitions[0]
	assert.Equal(t, int64(20), tr.DurationInFrames)
	assert.Equal(t, timeline.PresentationWipe, tr.Presentation)
	assert.Equal(t, timeline.DirectionLeft, tr.Direction)
}

func TestUpdateTransitionInvalidDuration(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100
	tl.Transitions = []timeline.Transition{seamTransition("a", "b")}

	duration := int64(0)
	_, err := store.UpdateTransition{TransitionID: "tr1", DurationInFrames: &duration}.Apply(&tl)
	assert.ErrorIs(t, err, store.ErrInvalidTransitionDuration)
}

func TestRemoveTransition(t *testing.T) {
	tl := commandTimeline()
	tl.Items[1].From = 100
	tl.Transitions = []timeline.Transition{seamTransition("a", "b")}

	outcome, err := store.RemoveTransition{TransitionID: "tr1"}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, []string{"tr1"}, outcome.RemovedTransitionIDs)
	assert.Empty(t, tl.Transitions)

	_, err = store.RemoveTransition{TransitionID: "tr1"}.Apply(&tl)
	assert.ErrorIs(t, err, store.ErrUnknownTransition)
}

func TestCloseGaps(t *testing.T) {
	tl := commandTimeline()

	outcome, err := store.CloseGaps{TrackID: "v1"}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, int64(20), outcome.FramesRemoved)

	b, _ := tl.ItemByID("b")
	assert.Equal(t, int64(100), b.From)
}

func TestCloseLeadingGaps(t *testing.T) {
	tl := commandTimeline()
	tl.Items[0].From = 10
	tl.Items[1].From = 130
	tl.Items = append(tl.Items, timeline.Item{
		ID: "c", TrackID: "a1", Kind: timeline.KindAudio, MediaID: "m2", OriginID: "c",
		From: 5, DurationInFrames: 50, Speed: 1,
	})

	outcome, err := store.CloseLeadingGaps{}.Apply(&tl)
	assert.NoError(t, err)
	assert.Equal(t, int64(15), outcome.FramesRemoved)

	a, _ := tl.ItemByID("a")
	c, _ := tl.ItemByID("c")
	assert.Equal(t, int64(0), a.From)
	assert.Equal(t, int64(0), c.From)
}
