package timeline

import (
	"sort"

	"github.com/samber/lo"
)

// Gap is a derived empty stretch on one track. Gaps are never stored, they
// are recomputed from the item set on demand.
type Gap struct {
	TrackID          string `json:"trackId"`
	From             int64  `json:"from"`
	End              int64  `json:"end"`
	DurationInFrames int64  `json:"durationInFrames"`
}

// FindGaps returns the empty stretches on the given track, or on every track
// when trackID is empty, including a leading gap before the first item.
// Overlapping (transition-bridged) items never produce a phantom gap because
// coverage is tracked by the furthest end seen so far.
func FindGaps(items []Item, trackID string) []Gap {
	byTrack := lo.GroupBy(items, func(i Item) string {
		return i.TrackID
	})

	trackIDs := lo.Keys(byTrack)
	sort.Strings(trackIDs)

	var gaps []Gap
	for _, id := range trackIDs {
		if trackID != "" && id != trackID {
			continue
		}
		ordered := OrderItemsByPosition(byTrack[id])
		var covered int64
		for _, item := range ordered {
			if item.From > covered {
				gaps = append(gaps, Gap{
					TrackID:          id,
					From:             covered,
					End:              item.From,
					DurationInFrames: item.From - covered,
				})
			}
			if end := item.End(); end > covered {
				covered = end
			}
		}
	}
	return gaps
}

// RemoveGaps closes every gap on the given track ("" for all tracks) by
// rippling items leftward. Each item shifts by the total duration of the gaps
// that lie entirely before it, so shifts from multiple gaps accumulate. The
// input is not modified.
func RemoveGaps(items []Item, trackID string) []Item {
	gaps := FindGaps(items, trackID)
	out := make([]Item, len(items))
	for idx, item := range items {
		shifted := item.Clone()
		for _, gap := range gaps {
			if gap.TrackID == item.TrackID && gap.End <= item.From {
				shifted.From -= gap.DurationInFrames
			}
		}
		out[idx] = shifted
	}
	return out
}

// RemoveLeadingGaps shifts each track's items so the earliest one starts at
// frame zero, leaving internal gaps alone.
func RemoveLeadingGaps(items []Item) []Item {
	byTrack := lo.GroupBy(items, func(i Item) string {
		return i.TrackID
	})
	offsets := make(map[string]int64, len(byTrack))
	for id, trackItems := range byTrack {
		min := lo.MinBy(trackItems, func(a, b Item) bool {
			return a.From < b.From
		})
		if min.From > 0 {
			offsets[id] = min.From
		}
	}

	out := make([]Item, len(items))
	for idx, item := range items {
		shifted := item.Clone()
		shifted.From -= offsets[item.TrackID]
		out[idx] = shifted
	}
	return out
}
