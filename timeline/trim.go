package timeline

import (
	"encoding/json"

	"github.com/ansel1/merry/v2"
	"github.com/orsinium-labs/enum"
	"github.com/samber/lo"
)

type TrimHandle enum.Member[string]

//goland:noinspection GoMixedReceiverTypes
func (h TrimHandle) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (h *TrimHandle) UnmarshalJSON(value []byte) error {
	var stringValue string
	err := json.Unmarshal(value, &stringValue)
	if err != nil {
		return err
	}
	handle := TrimHandles.Parse(stringValue)
	if handle == nil {
		return ErrTrimHandleNotFound
	}
	*h = *handle
	return nil
}

var (
	HandleStart = TrimHandle{Value: "start"}
	HandleEnd   = TrimHandle{Value: "end"}
	TrimHandles = enum.New(HandleStart, HandleEnd)

	ErrTrimHandleNotFound = merry.Sentinel("trim handle not found")
)

// ClampToAdjacentItems limits a requested trim delta so the item cannot be
// dragged into its nearest neighbor on the same track. The returned delta
// keeps the caller's sign convention: for the end handle positive lengthens,
// for the start handle negative lengthens leftward. Shrinking deltas pass
// through unclamped, shrinking never collides. Items on other tracks are
// ignored entirely.
func ClampToAdjacentItems(item Item, handle TrimHandle, requestedDelta int64, allItems []Item) int64 {
	others := lo.Filter(allItems, func(i Item, _ int) bool {
		return i.TrackID == item.TrackID && i.ID != item.ID
	})

	switch handle {
	case HandleEnd:
		if requestedDelta <= 0 {
			return requestedDelta
		}
		after := lo.Filter(others, func(i Item, _ int) bool {
			return i.From >= item.End()
		})
		if len(after) == 0 {
			return requestedDelta
		}
		nearest := lo.MinBy(after, func(a, b Item) bool {
			return a.From < b.From
		})
		room := nearest.From - item.End()
		if requestedDelta > room {
			return room
		}
		return requestedDelta
	case HandleStart:
		if requestedDelta >= 0 {
			return requestedDelta
		}
		before := lo.Filter(others, func(i Item, _ int) bool {
			return i.End() <= item.From
		})
		if len(before) == 0 {
			return requestedDelta
		}
		nearest := lo.MaxBy(before, func(a, b Item) bool {
			return a.End() > b.End()
		})
		room := item.From - nearest.End()
		if requestedDelta < -room {
			return -room
		}
		return requestedDelta
	}
	return requestedDelta
}

// ApplyTrim moves one edge of an item by delta frames and keeps its source
// bookkeeping consistent. The delta is expected to be pre-clamped against
// neighbors; this function additionally bounds it by the timeline start, the
// minimum duration of one frame and, for media, the available source
// material. The adjusted item is returned, the input is not modified.
func ApplyTrim(item Item, handle TrimHandle, delta int64) (Item, error) {
	out := item.Clone()
	speed := item.SpeedOrDefault()

	switch handle {
	case HandleEnd:
		newDuration := item.DurationInFrames + delta
		if newDuration < 1 {
			newDuration = 1
		}
		if item.Kind.IsMedia() && item.SourceDuration > 0 {
			max := MaxTimelineDuration(item.SourceDuration, item.SourceStart, speed)
			if max >= 1 && newDuration > max {
				newDuration = max
			}
		}
		out.DurationInFrames = newDuration
		if item.Kind.IsMedia() && item.HasSourceBounds() {
			newSourceEnd := item.SourceStart + TimelineToSource(newDuration, speed)
			out.TrimEnd = item.TrimEnd + (item.SourceEnd - newSourceEnd)
			if out.TrimEnd < 0 {
				out.TrimEnd = 0
			}
			out.SourceEnd = newSourceEnd
		}
		return out, nil
	case HandleStart:
		if item.From+delta < 0 {
			delta = -item.From
		}
		if delta > item.DurationInFrames-1 {
			delta = item.DurationInFrames - 1
		}
		if item.Kind.IsMedia() && delta < 0 {
			// Extending leftward is limited by the material trimmed off
			// the head so far.
			available := SourceToTimeline(item.TrimStart, speed)
			if -delta > available {
				delta = -available
			}
		}
		newDuration := item.DurationInFrames - delta
		out.From = item.From + delta
		out.DurationInFrames = newDuration
		if item.Kind.IsMedia() && item.HasSourceBounds() {
			// The source shift is the difference of the rounded spans, so
			// sourceEnd - sourceStart tracks the rounded duration*speed
			// product exactly instead of drifting by a rounding step.
			shift := TimelineToSource(item.DurationInFrames, speed) - TimelineToSource(newDuration, speed)
			out.SourceStart = item.SourceStart + shift
			out.TrimStart = item.TrimStart + shift
			if out.SourceStart < 0 {
				out.SourceStart = 0
			}
			if out.TrimStart < 0 {
				out.TrimStart = 0
			}
		}
		return out, nil
	}
	return Item{}, merry.Wrap(ErrTrimHandleNotFound)
}
