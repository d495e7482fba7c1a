package timeline

import (
	"github.com/ansel1/merry/v2"
	"github.com/google/uuid"
)

var ErrInvalidSplitPoint = merry.Sentinel("split point is outside the item")

// Split cuts an item in two at a timeline frame strictly inside it. Both
// halves get fresh ids and inherit the original's lineage so they can be
// joined back together later.
//
// Source material is distributed by rounding the first half and assigning the
// remainder to the second. The two halves therefore always consume exactly
// the source frames the whole item did, which is what keeps Join an exact
// inverse even at fractional speeds.
func Split(item Item, atFrame int64) (Item, Item, error) {
	if atFrame <= item.From || atFrame >= item.End() {
		return Item{}, Item{}, merry.Wrap(ErrInvalidSplitPoint)
	}

	firstDuration := atFrame - item.From
	secondDuration := item.DurationInFrames - firstDuration

	first := item.Clone()
	first.ID = uuid.NewString()
	first.OriginID = item.OriginOrSelf()
	first.DurationInFrames = firstDuration

	second := item.Clone()
	second.ID = uuid.NewString()
	second.OriginID = item.OriginOrSelf()
	second.From = atFrame
	second.DurationInFrames = secondDuration

	if item.Kind.IsMedia() {
		speed := item.SpeedOrDefault()
		totalSource := TimelineToSource(item.DurationInFrames, speed)
		firstSource := TimelineToSource(firstDuration, speed)
		secondSource := totalSource - firstSource

		first.SourceEnd = item.SourceStart + firstSource
		first.TrimEnd = item.TrimEnd + secondSource

		second.SourceStart = item.SourceStart + firstSource
		second.TrimStart = item.TrimStart + firstSource
	}

	return first, second, nil
}
