package timeline

import (
	"encoding/json"

	"github.com/ansel1/merry/v2"
	"github.com/orsinium-labs/enum"
	"github.com/samber/lo"
)

type TransitionPresentation enum.Member[string]

//goland:noinspection GoMixedReceiverTypes
func (p TransitionPresentation) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (p *TransitionPresentation) UnmarshalJSON(value []byte) error {
	var stringValue string
	err := json.Unmarshal(value, &stringValue)
	if err != nil {
		return err
	}
	presentation := TransitionPresentations.Parse(stringValue)
	if presentation == nil {
		return ErrPresentationNotFound
	}
	*p = *presentation
	return nil
}

var (
	PresentationCrossfade   = TransitionPresentation{Value: "crossfade"}
	PresentationWipe        = TransitionPresentation{Value: "wipe"}
	PresentationSlide       = TransitionPresentation{Value: "slide"}
	PresentationFlip        = TransitionPresentation{Value: "flip"}
	TransitionPresentations = enum.New(PresentationCrossfade, PresentationWipe, PresentationSlide, PresentationFlip)

	ErrPresentationNotFound = merry.Sentinel("transition presentation not found")
	ErrDirectionNotFound    = merry.Sentinel("transition direction not found")
)

type TransitionDirection enum.Member[string]

//goland:noinspection GoMixedReceiverTypes
func (d TransitionDirection) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (d *TransitionDirection) UnmarshalJSON(value []byte) error {
	var stringValue string
	err := json.Unmarshal(value, &stringValue)
	if err != nil {
		return err
	}
	if stringValue == "" {
		*d = TransitionDirection{}
		return nil
	}
	direction := TransitionDirections.Parse(stringValue)
	if direction == nil {
		return ErrDirectionNotFound
	}
	*d = *direction
	return nil
}

var (
	DirectionLeft        = TransitionDirection{Value: "left"}
	DirectionRight       = TransitionDirection{Value: "right"}
	DirectionUp          = TransitionDirection{Value: "up"}
	DirectionDown        = TransitionDirection{Value: "down"}
	TransitionDirections = enum.New(DirectionLeft, DirectionRight, DirectionUp, DirectionDown)
)

// Transition blends the seam between two adjacent items. The clip references
// are weak: items get deleted and re-created by split/join, so every consumer
// revalidates them against the current item set.
type Transition struct {
	ID               string                 `json:"id"`
	TrackID          string                 `json:"trackId"`
	LeftClipID       string                 `json:"leftClipId"`
	RightClipID      string                 `json:"rightClipId"`
	DurationInFrames int64                  `json:"durationInFrames"`
	Presentation     TransitionPresentation `json:"presentation"`
	Direction        TransitionDirection    `json:"direction,omitempty"`

	// Alignment splits the transition window across the seam, 0 places it
	// entirely inside the left clip, 1 entirely inside the right.
	Alignment float64 `json:"alignment"`
}

var (
	ErrCrossTrackOperation      = merry.Sentinel("operation spans multiple tracks")
	ErrTransitionBridgeConflict = merry.Sentinel("edit conflicts with a transition bridging the edge")
	ErrDanglingTransitionRef    = merry.Sentinel("transition references a missing item")
	ErrTransitionNotAdjacent    = merry.Sentinel("transition clips are not adjacent")
)

// TransitionSlot is the answer to "where can this item get a transition":
// the directed clip pair and, when that pair already hosts one, the existing
// transition so the caller updates instead of duplicating.
type TransitionSlot struct {
	LeftClipID  string      `json:"leftClipId"`
	RightClipID string      `json:"rightClipId"`
	Existing    *Transition `json:"existing,omitempty"`
}

func (s TransitionSlot) HasExisting() bool {
	return s.Existing != nil
}

// MediaNeighbors finds the nearest media-kind items on the same track before
// and after the given item.
func MediaNeighbors(item Item, items []Item) (left *Item, right *Item) {
	media := lo.Filter(items, func(i Item, _ int) bool {
		return i.Kind.IsMedia()
	})
	return NeighborItems(item, media)
}

// FindTransitionSlot picks the seam a new transition for the selected item
// should attach to. Only exact frame adjacency qualifies, and when both sides
// of the item qualify the right seam wins so repeated invocations stay
// deterministic.
func FindTransitionSlot(item Item, items []Item, transitions []Transition) (TransitionSlot, bool) {
	if !item.Kind.IsMedia() {
		return TransitionSlot{}, false
	}
	left, right := MediaNeighbors(item, items)

	if right != nil && item.End() == right.From {
		return slotFor(item.ID, right.ID, transitions), true
	}
	if left != nil && left.End() == item.From {
		return slotFor(left.ID, item.ID, transitions), true
	}
	return TransitionSlot{}, false
}

func slotFor(leftID, rightID string, transitions []Transition) TransitionSlot {
	slot := TransitionSlot{LeftClipID: leftID, RightClipID: rightID}
	existing, found := lo.Find(transitions, func(t Transition) bool {
		return t.LeftClipID == leftID && t.RightClipID == rightID
	})
	if found {
		slot.Existing = &existing
	}
	return slot
}

// ValidateTransition checks a transition against the current item set:
// both clips must exist, sit on the transition's track and actually meet.
// Items may overlap by at most the transition's duration, which is the shape
// a bridged overlap takes once the transition is applied.
func ValidateTransition(tr Transition, items []Item) error {
	left, leftOK := lo.Find(items, func(i Item) bool { return i.ID == tr.LeftClipID })
	right, rightOK := lo.Find(items, func(i Item) bool { return i.ID == tr.RightClipID })
	if !leftOK || !rightOK {
		return merry.Wrap(ErrDanglingTransitionRef)
	}
	if left.TrackID != right.TrackID || left.TrackID != tr.TrackID {
		return merry.Wrap(ErrCrossTrackOperation)
	}
	if left.From >= right.From {
		return merry.Wrap(ErrTransitionNotAdjacent)
	}
	overlap := left.End() - right.From
	if overlap < 0 || overlap > tr.DurationInFrames {
		return merry.Wrap(ErrTransitionNotAdjacent)
	}
	return nil
}

// HasTransitionBridgeAtHandle reports the transition, if any, whose incoming
// edge is the given trim handle. Trimming such an edge breaks the
// transition's frame math, so callers check before applying.
func HasTransitionBridgeAtHandle(item Item, handle TrimHandle, transitions []Transition) (*Transition, bool) {
	tr, found := lo.Find(transitions, func(t Transition) bool {
		switch handle {
		case HandleStart:
			return t.RightClipID == item.ID
		case HandleEnd:
			return t.LeftClipID == item.ID
		}
		return false
	})
	if !found {
		return nil, false
	}
	return &tr, true
}

// HasAnyTransitionBridge reports whether the item is referenced by any
// transition on either side.
func HasAnyTransitionBridge(item Item, transitions []Transition) bool {
	return lo.SomeBy(transitions, func(t Transition) bool {
		return t.LeftClipID == item.ID || t.RightClipID == item.ID
	})
}

// TransitionWindow computes the timeline frame range the transition occupies.
// For exactly adjacent clips the window straddles the seam according to
// alignment; for overlapping clips the overlap itself is the window.
func TransitionWindow(tr Transition, left, right Item) (start, end int64) {
	if left.End() == right.From {
		dur := tr.DurationInFrames
		intoLeft := int64(float64(dur) * (1 - tr.Alignment))
		start = right.From - intoLeft
		if start < left.From {
			start = left.From
		}
		end = start + dur
		if end > right.End() {
			end = right.End()
		}
		return start, end
	}
	return right.From, left.End()
}
