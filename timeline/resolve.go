package timeline

import (
	"math"

	"github.com/samber/lo"
)

// ResolvedItem is the per-frame state of one active item, everything the
// rendering and decode collaborators need without knowing the edit model.
type ResolvedItem struct {
	ItemID     string   `json:"itemId"`
	TrackID    string   `json:"trackId"`
	TrackOrder int      `json:"trackOrder"`
	Kind       ItemKind `json:"kind"`
	MediaID    string   `json:"mediaId,omitempty"`

	// SourceFrame is the source frame to decode for this timeline frame,
	// already speed-scaled and clamped into the item's source span.
	SourceFrame int64   `json:"sourceFrame"`
	Speed       float64 `json:"speed"`

	Transform Transform `json:"transform"`
	FitMode   FitMode   `json:"fitMode"`
	Volume    float64   `json:"volume"`
	Audible   bool      `json:"audible"`

	TransitionID       string  `json:"transitionId,omitempty"`
	TransitionProgress float64 `json:"transitionProgress,omitempty"`
}

// ResolveFrame computes everything visible and audible at one timeline
// frame, ordered bottom track first so a compositor can paint in slice
// order. Items inside a transition window are included for the whole window
// even where that extends past their own edges, with the blend progress
// attached to both sides of the seam.
func ResolveFrame(tl Timeline, frame int64) []ResolvedItem {
	var resolved []ResolvedItem
	soloed := lo.SomeBy(tl.Tracks, func(t Track) bool {
		return t.Solo
	})

	for _, track := range tl.TracksInOrder() {
		if !track.Visible {
			continue
		}
		items := tl.ItemsOnTrack(track.ID)
		for _, item := range items {
			active := item.ContainsFrame(frame)
			tr, window := activeTransition(item, items, tl.Transitions, frame)
			if !active && tr == nil {
				continue
			}

			r := ResolvedItem{
				ItemID:     item.ID,
				TrackID:    track.ID,
				TrackOrder: track.Order,
				Kind:       item.Kind,
				MediaID:    item.MediaID,
				Speed:      item.SpeedOrDefault(),
				FitMode:    fitModeOrDefault(item.FitMode),
				Volume:     item.VolumeOrDefault(),
				Audible:    audible(item, track, soloed),
			}
			if item.Transform != nil {
				r.Transform = *item.Transform
			} else {
				r.Transform = DefaultTransform()
			}
			if item.Kind.IsMedia() {
				r.SourceFrame = sourceFrameAt(item, frame)
			}
			if tr != nil {
				r.TransitionID = tr.ID
				r.TransitionProgress = progressIn(window, frame)
			}
			resolved = append(resolved, r)
		}
	}
	return resolved
}

type frameWindow struct {
	start, end int64
}

func activeTransition(item Item, trackItems []Item, transitions []Transition, frame int64) (*Transition, frameWindow) {
	for _, tr := range transitions {
		if tr.LeftClipID != item.ID && tr.RightClipID != item.ID {
			continue
		}
		if ValidateTransition(tr, trackItems) != nil {
			continue
		}
		left, _ := lo.Find(trackItems, func(i Item) bool { return i.ID == tr.LeftClipID })
		right, _ := lo.Find(trackItems, func(i Item) bool { return i.ID == tr.RightClipID })
		start, end := TransitionWindow(tr, left, right)
		if frame >= start && frame < end {
			t := tr
			return &t, frameWindow{start: start, end: end}
		}
	}
	return nil, frameWindow{}
}

func progressIn(w frameWindow, frame int64) float64 {
	if w.end <= w.start {
		return 0
	}
	return float64(frame-w.start) / float64(w.end-w.start)
}

func audible(item Item, track Track, soloed bool) bool {
	if item.Kind != KindAudio && item.Kind != KindVideo {
		return false
	}
	if item.Muted || track.Muted {
		return false
	}
	if soloed && !track.Solo {
		return false
	}
	return true
}

// sourceFrameAt maps a timeline frame inside the item to the source frame to
// decode, clamped into the consumed span so rounding at the tail never asks
// for a frame past the out-point.
func sourceFrameAt(item Item, frame int64) int64 {
	offset := frame - item.From
	if offset < 0 {
		offset = 0
	}
	if offset >= item.DurationInFrames {
		offset = item.DurationInFrames - 1
	}
	source := item.SourceStart + TimelineToSource(offset, item.SpeedOrDefault())
	last := item.SourceEndOrDerived() - 1
	if source > last {
		source = last
	}
	if source < item.SourceStart {
		source = item.SourceStart
	}
	return int64(math.Floor(source))
}

func fitModeOrDefault(mode FitMode) FitMode {
	if mode.Value == "" {
		return FitContain
	}
	return mode
}

// SourceRange is the decode plan for one item: the whole-frame source span a
// decoder must be able to produce, plus the playback speed. The range is
// clamped into the known source duration when the item carries one.
func SourceRange(item Item) (start, end int64, speed float64) {
	speed = item.SpeedOrDefault()
	start = int64(math.Floor(item.SourceStart))
	end = int64(math.Ceil(item.SourceEndOrDerived()))
	if item.SourceDuration > 0 && end > int64(item.SourceDuration) {
		end = int64(item.SourceDuration)
	}
	if start < 0 {
		start = 0
	}
	if end <= start {
		end = start + 1
	}
	return start, end, speed
}
