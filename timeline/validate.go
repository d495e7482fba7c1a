package timeline

import (
	"math"

	"github.com/ansel1/merry/v2"
	mapset "github.com/deckarep/golang-set/v2"
)

var (
	ErrDuplicateID        = merry.Sentinel("duplicate id")
	ErrUnknownTrack       = merry.Sentinel("item references an unknown track")
	ErrInvalidPosition    = merry.Sentinel("item position is invalid")
	ErrSpeedOutOfRange    = merry.Sentinel("speed is out of range")
	ErrSourceSpanMismatch = merry.Sentinel("source span does not match duration and speed")
	ErrItemOverlap        = merry.Sentinel("items overlap without a bridging transition")
)

// Validate checks a whole timeline against the structural rules every edit
// must preserve. It returns the first violation found. Operations run this on
// their computed result before the caller commits it, so a failed edit can be
// discarded without corrupting the project.
func Validate(tl Timeline) error {
	trackIDs := mapset.NewSet[string]()
	orders := mapset.NewSet[int]()
	for _, track := range tl.Tracks {
		if !trackIDs.Add(track.ID) {
			return merry.Wrap(ErrDuplicateID)
		}
		if !orders.Add(track.Order) {
			return merry.Wrap(ErrDuplicateID)
		}
	}

	itemIDs := mapset.NewSet[string]()
	for _, item := range tl.Items {
		if !itemIDs.Add(item.ID) {
			return merry.Wrap(ErrDuplicateID)
		}
		if !trackIDs.Contains(item.TrackID) {
			return merry.Wrap(ErrUnknownTrack)
		}
		if item.From < 0 || item.DurationInFrames < 1 {
			return merry.Wrap(ErrInvalidPosition)
		}
		if !item.Kind.IsMedia() {
			continue
		}
		speed := item.SpeedOrDefault()
		if speed < SpeedMin || speed > SpeedMax {
			return merry.Wrap(ErrSpeedOutOfRange)
		}
		if item.HasSourceBounds() {
			consumed := item.SourceEnd - item.SourceStart
			expected := TimelineToSource(item.DurationInFrames, speed)
			if math.Abs(consumed-expected) > SourceConsumptionTolerance {
				return merry.Wrap(ErrSourceSpanMismatch)
			}
		}
	}

	if err := validateOverlaps(tl); err != nil {
		return err
	}

	pairs := mapset.NewSet[string]()
	for _, tr := range tl.Transitions {
		if err := ValidateTransition(tr, tl.Items); err != nil {
			return err
		}
		if !pairs.Add(tr.LeftClipID + "\x00" + tr.RightClipID) {
			return merry.Wrap(ErrTransitionBridgeConflict)
		}
	}
	return nil
}

// validateOverlaps allows same-track items to share frames only when a
// transition bridges exactly that pair and the overlap fits inside its
// duration.
func validateOverlaps(tl Timeline) error {
	for _, track := range tl.Tracks {
		items := tl.ItemsOnTrack(track.ID)
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				if !items[i].Overlaps(items[j]) {
					continue
				}
				if !overlapBridged(items[i], items[j], tl.Transitions) {
					return merry.Wrap(ErrItemOverlap)
				}
			}
		}
	}
	return nil
}

func overlapBridged(left, right Item, transitions []Transition) bool {
	overlap := left.End() - right.From
	for _, tr := range transitions {
		if tr.LeftClipID == left.ID && tr.RightClipID == right.ID && overlap <= tr.DurationInFrames {
			return true
		}
	}
	return false
}
