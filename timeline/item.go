package timeline

import (
	"encoding/json"

	"github.com/ansel1/merry/v2"
	"github.com/orsinium-labs/enum"
)

type ItemKind enum.Member[string]

//goland:noinspection GoMixedReceiverTypes
func (k ItemKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (k *ItemKind) UnmarshalJSON(value []byte) error {
	var stringValue string
	err := json.Unmarshal(value, &stringValue)
	if err != nil {
		return err
	}
	kind := ItemKinds.Parse(stringValue)
	if kind == nil {
		return ErrItemKindNotFound
	}
	*k = *kind
	return nil
}

var (
	KindVideo       = ItemKind{Value: "video"}
	KindAudio       = ItemKind{Value: "audio"}
	KindText        = ItemKind{Value: "text"}
	KindImage       = ItemKind{Value: "image"}
	KindShape       = ItemKind{Value: "shape"}
	KindComposition = ItemKind{Value: "composition"}
	KindAdjustment  = ItemKind{Value: "adjustment"}
	ItemKinds       = enum.New(KindVideo, KindAudio, KindText, KindImage, KindShape, KindComposition, KindAdjustment)

	ErrItemKindNotFound = merry.Sentinel("item kind not found")
	ErrFitModeNotFound  = merry.Sentinel("fit mode not found")
)

// IsMedia reports whether the kind references recorded source material and
// therefore carries source-frame bookkeeping.
//
//goland:noinspection GoMixedReceiverTypes
func (k ItemKind) IsMedia() bool {
	return k == KindVideo || k == KindAudio
}

//goland:noinspection GoMixedReceiverTypes
func (k ItemKind) IsVisual() bool {
	return k != KindAudio
}

type FitMode enum.Member[string]

//goland:noinspection GoMixedReceiverTypes
func (f FitMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (f *FitMode) UnmarshalJSON(value []byte) error {
	var stringValue string
	err := json.Unmarshal(value, &stringValue)
	if err != nil {
		return err
	}
	if stringValue == "" {
		*f = FitMode{}
		return nil
	}
	mode := FitModes.Parse(stringValue)
	if mode == nil {
		return ErrFitModeNotFound
	}
	*f = *mode
	return nil
}

var (
	FitContain = FitMode{Value: "contain"}
	FitCover   = FitMode{Value: "cover"}
	FitFill    = FitMode{Value: "fill"}
	FitModes   = enum.New(FitContain, FitCover, FitFill)
)

// Transform places a visual item on the canvas. X and Y are offsets from the
// canvas center in pixels, rotation is in degrees.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
}

func DefaultTransform() Transform {
	return Transform{
		ScaleX:  1,
		ScaleY:  1,
		Opacity: 1,
	}
}

// Item is one placed element on a track. From and DurationInFrames are
// integer timeline frames. The source fields are only meaningful for media
// kinds and are expressed in source frames, which stay fractional because
// speed scaling produces non-integer positions.
type Item struct {
	ID               string   `json:"id"`
	TrackID          string   `json:"trackId"`
	Kind             ItemKind `json:"kind"`
	Name             string   `json:"name,omitempty"`
	From             int64    `json:"from"`
	DurationInFrames int64    `json:"durationInFrames"`

	MediaID        string  `json:"mediaId,omitempty"`
	OriginID       string  `json:"originId,omitempty"`
	SourceStart    float64 `json:"sourceStart,omitempty"`
	SourceEnd      float64 `json:"sourceEnd,omitempty"`
	SourceDuration float64 `json:"sourceDuration,omitempty"`
	TrimStart      float64 `json:"trimStart,omitempty"`
	TrimEnd        float64 `json:"trimEnd,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
	Volume         float64 `json:"volume,omitempty"`
	Muted          bool    `json:"muted,omitempty"`

	Transform *Transform `json:"transform,omitempty"`
	FitMode   FitMode    `json:"fitMode,omitempty"`

	// Text and shape payloads are carried opaquely, the engine never
	// interprets them.
	Properties map[string]any `json:"properties,omitempty"`
}

func (i Item) Clone() Item {
	out := i
	if i.Transform != nil {
		t := *i.Transform
		out.Transform = &t
	}
	if i.Properties != nil {
		props := make(map[string]any, len(i.Properties))
		for k, v := range i.Properties {
			props[k] = v
		}
		out.Properties = props
	}
	return out
}

// End is the first frame after the item, so items are adjacent when one's End
// equals the other's From.
func (i Item) End() int64 {
	return i.From + i.DurationInFrames
}

func (i Item) SpeedOrDefault() float64 {
	if i.Speed <= 0 {
		return 1
	}
	return i.Speed
}

func (i Item) VolumeOrDefault() float64 {
	if i.Volume <= 0 {
		return 1
	}
	return i.Volume
}

// HasSourceBounds reports whether the item carries explicit source in/out
// points. Generated kinds and freshly probed media without metadata do not.
func (i Item) HasSourceBounds() bool {
	return i.SourceEnd > 0 || i.SourceStart > 0
}

// SourceEndOrDerived returns the exclusive source out-point, deriving it from
// duration and speed when the item carries no explicit one.
func (i Item) SourceEndOrDerived() float64 {
	if i.SourceEnd > 0 {
		return i.SourceEnd
	}
	return i.SourceStart + TimelineToSource(i.DurationInFrames, i.SpeedOrDefault())
}

// OriginOrSelf returns the lineage id, falling back to the item's own id for
// items that were never split.
func (i Item) OriginOrSelf() string {
	if i.OriginID != "" {
		return i.OriginID
	}
	return i.ID
}

// ContainsFrame reports whether the timeline frame falls inside the item.
func (i Item) ContainsFrame(frame int64) bool {
	return frame >= i.From && frame < i.End()
}

// Overlaps reports whether two items on the same track share any frame.
func (i Item) Overlaps(other Item) bool {
	if i.TrackID != other.TrackID {
		return false
	}
	return i.From < other.End() && other.From < i.End()
}
