package timeline

import "math"

// Tolerances for fractional source-frame comparisons. Integer timeline frames
// are always compared exactly, source frames never are.
const (
	// SourceContinuityTolerance is the maximum source-frame discontinuity
	// two items may have and still count as continuous, e.g. for joining
	// the halves of an earlier split back together.
	SourceContinuityTolerance = 0.5

	// SourceBoundsTolerance absorbs the rounding drift that accumulates
	// over repeated trims when checking an item against the length of its
	// source material.
	SourceBoundsTolerance = 2.0

	// SourceConsumptionTolerance bounds how far an item's consumed source
	// span (sourceEnd - sourceStart) may deviate from the rounded
	// duration*speed product. Split assigns the second fragment the
	// remainder of the parent's source span rather than rounding it
	// independently, which can transfer up to half a frame of rounding
	// from one fragment to the other, so this is twice the continuity
	// tolerance.
	SourceConsumptionTolerance = 1.0

	// ValueCompareTolerance is the generic float comparison epsilon for
	// item fields such as speed, volume and transform values.
	ValueCompareTolerance = 1e-4
)

// Playback speed bounds. Every entry point that accepts a speed clamps into
// this range, so the conversion functions below can assume a sane divisor.
const (
	SpeedMin = 0.1
	SpeedMax = 16.0
)

func ClampSpeed(speed float64) float64 {
	if speed < SpeedMin {
		return SpeedMin
	}
	if speed > SpeedMax {
		return SpeedMax
	}
	return speed
}

// TimelineToSource converts a timeline frame count to the number of source
// frames it consumes at the given speed. The result is rounded to the nearest
// whole source frame but kept as a float because callers combine it with
// fractional in/out points.
func TimelineToSource(timelineFrames int64, speed float64) float64 {
	return math.Round(float64(timelineFrames) * speed)
}

// SourceToTimeline converts source frames to timeline frames at the given
// speed. Flooring guarantees the resulting timeline duration never asks for
// more source material than exists.
func SourceToTimeline(sourceFrames float64, speed float64) int64 {
	return int64(math.Floor(sourceFrames / speed))
}

// MaxTimelineDuration is the longest timeline duration the material after
// sourceStart can sustain at the given speed.
func MaxTimelineDuration(sourceDuration, sourceStart, speed float64) int64 {
	remaining := sourceDuration - sourceStart
	if remaining < 0 {
		remaining = 0
	}
	return SourceToTimeline(remaining, speed)
}

// WithinSourceBounds reports whether playing timelineDuration frames at the
// given speed from sourceStart stays inside the source material, allowing
// SourceBoundsTolerance frames of accumulated rounding overshoot.
func WithinSourceBounds(sourceStart float64, timelineDuration int64, speed, sourceDuration float64) bool {
	required := sourceStart + TimelineToSource(timelineDuration, speed)
	return required <= sourceDuration+SourceBoundsTolerance
}

// floatsEqual compares fractional frame values with the shared epsilon.
func floatsEqual(a, b float64) bool {
	return math.Abs(a-b) <= ValueCompareTolerance
}
