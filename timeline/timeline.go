// Package timeline implements the frame-accurate edit model: tracks, items,
// transitions and the pure operations (split, join, trim, gap removal) that
// editing commands are built from.
package timeline

import (
	"sort"

	"github.com/samber/lo"
)

type Timeline struct {
	FPS          float64      `json:"fps"`
	CanvasWidth  int          `json:"canvasWidth,omitempty"`
	CanvasHeight int          `json:"canvasHeight,omitempty"`
	Tracks       []Track      `json:"tracks"`
	Items        []Item       `json:"items"`
	Transitions  []Transition `json:"transitions,omitempty"`
}

type Track struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Order         int    `json:"order"`
	Height        int    `json:"height,omitempty"`
	Locked        bool   `json:"locked,omitempty"`
	Visible       bool   `json:"visible"`
	Muted         bool   `json:"muted,omitempty"`
	Solo          bool   `json:"solo,omitempty"`
	ParentTrackID string `json:"parentTrackId,omitempty"`
}

// Clone returns a deep copy. Operations compute on a clone and the caller
// commits the result only when every step succeeded.
func (t Timeline) Clone() Timeline {
	out := t
	out.Tracks = append([]Track(nil), t.Tracks...)
	out.Items = make([]Item, len(t.Items))
	for i, item := range t.Items {
		out.Items[i] = item.Clone()
	}
	out.Transitions = append([]Transition(nil), t.Transitions...)
	return out
}

func (t Timeline) ItemByID(id string) (Item, bool) {
	return lo.Find(t.Items, func(i Item) bool {
		return i.ID == id
	})
}

func (t Timeline) TrackByID(id string) (Track, bool) {
	return lo.Find(t.Tracks, func(tr Track) bool {
		return tr.ID == id
	})
}

// ItemsOnTrack returns the track's items ordered by position.
func (t Timeline) ItemsOnTrack(trackID string) []Item {
	items := lo.Filter(t.Items, func(i Item, _ int) bool {
		return i.TrackID == trackID
	})
	return OrderItemsByPosition(items)
}

// TracksInOrder returns tracks sorted by their stacking order, bottom first.
func (t Timeline) TracksInOrder() []Track {
	tracks := append([]Track(nil), t.Tracks...)
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Order < tracks[j].Order
	})
	return tracks
}

// DurationInFrames is the end of the right-most item on any track.
func (t Timeline) DurationInFrames() int64 {
	var max int64
	for _, i := range t.Items {
		if end := i.End(); end > max {
			max = end
		}
	}
	return max
}

// OrderItemsByPosition returns a copy sorted by from, with the id as a
// tie-breaker so equal positions still order deterministically.
func OrderItemsByPosition(items []Item) []Item {
	out := append([]Item(nil), items...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// NeighborItems finds the nearest items on the same track strictly before and
// strictly after the given item. Either may be absent.
func NeighborItems(item Item, items []Item) (left *Item, right *Item) {
	for _, other := range items {
		if other.ID == item.ID || other.TrackID != item.TrackID {
			continue
		}
		o := other
		if o.End() <= item.From {
			if left == nil || o.End() > left.End() || (o.End() == left.End() && o.ID < left.ID) {
				left = &o
			}
		} else if o.From >= item.End() {
			if right == nil || o.From < right.From || (o.From == right.From && o.ID < right.ID) {
				right = &o
			}
		}
	}
	return left, right
}
