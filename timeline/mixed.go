package timeline

import "math"

// Mixed is the aggregate of one field across a multi-selection: either every
// selected item agrees on a single value or the selection is mixed and an
// inspector widget shows a placeholder instead.
type Mixed[T any] struct {
	Value   T    `json:"value"`
	IsMixed bool `json:"isMixed"`
}

func Single[T any](value T) Mixed[T] {
	return Mixed[T]{Value: value}
}

func MixedValue[T any]() Mixed[T] {
	return Mixed[T]{IsMixed: true}
}

// AggregateValues folds a comparable field over a selection. The second
// return is false for an empty selection.
func AggregateValues[T comparable](items []Item, get func(Item) T) (Mixed[T], bool) {
	if len(items) == 0 {
		return Mixed[T]{}, false
	}
	first := get(items[0])
	for _, item := range items[1:] {
		if get(item) != first {
			return MixedValue[T](), true
		}
	}
	return Single(first), true
}

// AggregateFloats is AggregateValues for fractional fields, comparing with
// the shared tolerance instead of exact equality.
func AggregateFloats(items []Item, get func(Item) float64) (Mixed[float64], bool) {
	if len(items) == 0 {
		return Mixed[float64]{}, false
	}
	first := get(items[0])
	for _, item := range items[1:] {
		if math.Abs(get(item)-first) > ValueCompareTolerance {
			return MixedValue[float64](), true
		}
	}
	return Single(first), true
}
