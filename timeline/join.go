package timeline

import (
	"github.com/ansel1/merry/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var ErrIncompatibleJoin = merry.Sentinel("items cannot be joined")

// CanJoin reports whether two fragments can be merged back into one item.
// The arguments may be passed in either order; the check always runs against
// the earlier item on the left.
//
// Requirements: shared lineage (originId), same track and kind, exact
// frame adjacency, and for media additionally the same asset, the same speed
// and source continuity across the seam.
func CanJoin(a, b Item) bool {
	left, right := a, b
	if right.From < left.From {
		left, right = right, left
	}

	if left.OriginOrSelf() != right.OriginOrSelf() {
		return false
	}
	if left.TrackID != right.TrackID || left.Kind != right.Kind {
		return false
	}
	if left.End() != right.From {
		return false
	}
	if !left.Kind.IsMedia() {
		return true
	}

	if left.MediaID != right.MediaID {
		return false
	}
	if !floatsEqual(left.SpeedOrDefault(), right.SpeedOrDefault()) {
		return false
	}
	gap := left.SourceEndOrDerived() - right.SourceStart
	if gap < 0 {
		gap = -gap
	}
	return gap <= SourceContinuityTolerance
}

// Join merges two fragments into a single item spanning both. The merged item
// gets a fresh id, keeps the shared lineage and covers the union of the two
// source spans, which makes Join the exact inverse of Split.
func Join(a, b Item) (Item, error) {
	if !CanJoin(a, b) {
		return Item{}, merry.Wrap(ErrIncompatibleJoin)
	}

	left, right := a, b
	if right.From < left.From {
		left, right = right, left
	}

	merged := left.Clone()
	merged.ID = uuid.NewString()
	merged.OriginID = left.OriginOrSelf()
	merged.DurationInFrames = left.DurationInFrames + right.DurationInFrames
	if merged.Kind.IsMedia() {
		merged.SourceEnd = right.SourceEnd
		merged.TrimEnd = right.TrimEnd
	}
	return merged, nil
}

// FindJoinableChain walks outward from item in both directions, collecting
// the unique adjacent fragment on each side for as long as one exists, and
// returns the ordered ids of the whole run including item itself. A side
// stops as soon as no neighbor, or more than one candidate, matches.
func FindJoinableChain(item Item, allItems []Item) []string {
	onTrack := lo.Filter(allItems, func(i Item, _ int) bool {
		return i.TrackID == item.TrackID && i.ID != item.ID
	})

	chain := []string{item.ID}

	cursor := item
	for {
		candidates := lo.Filter(onTrack, func(i Item, _ int) bool {
			return i.End() == cursor.From && CanJoin(i, cursor)
		})
		if len(candidates) != 1 {
			break
		}
		cursor = candidates[0]
		chain = append([]string{cursor.ID}, chain...)
	}

	cursor = item
	for {
		candidates := lo.Filter(onTrack, func(i Item, _ int) bool {
			return i.From == cursor.End() && CanJoin(cursor, i)
		})
		if len(candidates) != 1 {
			break
		}
		cursor = candidates[0]
		chain = append(chain, cursor.ID)
	}

	return chain
}

// CanJoinMultiple validates a multi-selection before a bulk join: ordered by
// position, every consecutive pair must be joinable. Fewer than two items is
// never joinable.
func CanJoinMultiple(items []Item) bool {
	if len(items) < 2 {
		return false
	}
	ordered := OrderItemsByPosition(items)
	for i := 0; i < len(ordered)-1; i++ {
		if !CanJoin(ordered[i], ordered[i+1]) {
			return false
		}
	}
	return true
}

// JoinChain merges an ordered run of fragments pairwise from the left.
func JoinChain(items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, merry.Wrap(ErrIncompatibleJoin)
	}
	ordered := OrderItemsByPosition(items)
	merged := ordered[0]
	for _, next := range ordered[1:] {
		var err error
		merged, err = Join(merged, next)
		if err != nil {
			return Item{}, err
		}
	}
	return merged, nil
}
