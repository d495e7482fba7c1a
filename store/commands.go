package store

import (
	"github.com/ansel1/merry/v2"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/reelcut/reelcut-engine/events"
	"github.com/reelcut/reelcut-engine/timeline"
	"github.com/samber/lo"
)

var (
	ErrUnknownItem               = merry.Sentinel("item not found")
	ErrUnknownTransition         = merry.Sentinel("transition not found")
	ErrTrackLocked               = merry.Sentinel("track is locked")
	ErrInvalidTransitionDuration = merry.Sentinel("transition duration must be at least one frame")
)

// Command is one edit applied to a project document. Apply mutates the given
// timeline, which is always a clone; the store validates the result and
// commits it atomically, so a failing command leaves the project untouched.
type Command interface {
	Name() string
	EventType() string
	Apply(tl *timeline.Timeline) (*Outcome, error)
}

// Outcome reports what a command changed beyond the document itself. It is
// also the payload of the published change event.
type Outcome struct {
	CreatedItemIDs       []string `json:"createdItemIds,omitempty"`
	RemovedItemIDs       []string `json:"removedItemIds,omitempty"`
	CreatedTrackIDs      []string `json:"createdTrackIds,omitempty"`
	CreatedTransitionIDs []string `json:"createdTransitionIds,omitempty"`
	UpdatedTransitionIDs []string `json:"updatedTransitionIds,omitempty"`
	RemovedTransitionIDs []string `json:"removedTransitionIds,omitempty"`
	AppliedDelta         int64    `json:"appliedDelta,omitempty"`
	FramesRemoved        int64    `json:"framesRemoved,omitempty"`
}

type SplitItem struct {
	ItemID  string `json:"itemId"`
	AtFrame int64  `json:"atFrame"`
}

func (c SplitItem) Name() string      { return "splitItem" }
func (c SplitItem) EventType() string { return events.TypeItemSplit }

func (c SplitItem) Apply(tl *timeline.Timeline) (*Outcome, error) {
	item, err := itemByID(tl, c.ItemID)
	if err != nil {
		return nil, err
	}
	if err := ensureUnlocked(tl, item.TrackID); err != nil {
		return nil, err
	}

	first, second, err := timeline.Split(item, c.AtFrame)
	if err != nil {
		return nil, err
	}

	replaceItem(tl, item.ID, first, second)

	// Transitions keep following the outer handles of the split pair.
	for i := range tl.Transitions {
		if tl.Transitions[i].RightClipID == item.ID {
			tl.Transitions[i].RightClipID = first.ID
		}
		if tl.Transitions[i].LeftClipID == item.ID {
			tl.Transitions[i].LeftClipID = second.ID
		}
	}

	return &Outcome{
		CreatedItemIDs: []string{first.ID, second.ID},
		RemovedItemIDs: []string{item.ID},
	}, nil
}

type JoinItems struct {
	ItemIDs []string `json:"itemIds"`
	Force   bool     `json:"force,omitempty"`
}

func (c JoinItems) Name() string      { return "joinItems" }
func (c JoinItems) EventType() string { return events.TypeItemJoined }

func (c JoinItems) Apply(tl *timeline.Timeline) (*Outcome, error) {
	ids := lo.Uniq(c.ItemIDs)
	if len(ids) < 2 {
		return nil, merry.Wrap(timeline.ErrIncompatibleJoin)
	}

	items := make([]timeline.Item, 0, len(ids))
	for _, id := range ids {
		item, err := itemByID(tl, id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	trackIDs := lo.Uniq(lo.Map(items, func(i timeline.Item, _ int) string { return i.TrackID }))
	if len(trackIDs) > 1 {
		return nil, merry.Wrap(timeline.ErrCrossTrackOperation)
	}
	if err := ensureUnlocked(tl, trackIDs[0]); err != nil {
		return nil, err
	}

	ordered := timeline.OrderItemsByPosition(items)
	if !timeline.CanJoinMultiple(ordered) {
		return nil, merry.Wrap(timeline.ErrIncompatibleJoin)
	}

	// Transitions sitting on the seams being merged away either block the
	// join or, when forced, go with the seams.
	var seamTransitionIDs []string
	for i := 0; i < len(ordered)-1; i++ {
		left, right := ordered[i], ordered[i+1]
		tr, found := lo.Find(tl.Transitions, func(t timeline.Transition) bool {
			return t.LeftClipID == left.ID && t.RightClipID == right.ID
		})
		if found {
			if !c.Force {
				return nil, merry.Wrap(timeline.ErrTransitionBridgeConflict)
			}
			seamTransitionIDs = append(seamTransitionIDs, tr.ID)
		}
	}

	merged, err := timeline.JoinChain(ordered)
	if err != nil {
		return nil, err
	}

	removeTransitions(tl, seamTransitionIDs)
	for i := range tl.Transitions {
		if tl.Transitions[i].RightClipID == ordered[0].ID {
			tl.Transitions[i].RightClipID = merged.ID
		}
		if tl.Transitions[i].LeftClipID == ordered[len(ordered)-1].ID {
			tl.Transitions[i].LeftClipID = merged.ID
		}
	}

	removeItems(tl, ids...)
	tl.Items = append(tl.Items, merged)

	return &Outcome{
		CreatedItemIDs:       []string{merged.ID},
		RemovedItemIDs:       ids,
		RemovedTransitionIDs: seamTransitionIDs,
	}, nil
}

type TrimItem struct {
	ItemID string              `json:"itemId"`
	Handle timeline.TrimHandle `json:"handle"`
	Delta  int64               `json:"delta"`
	Force  bool                `json:"force,omitempty"`
}

func (c TrimItem) Name() string      { return "trimItem" }
func (c TrimItem) EventType() string { return events.TypeItemTrimmed }

func (c TrimItem) Apply(tl *timeline.Timeline) (*Outcome, error) {
	item, err := itemByID(tl, c.ItemID)
	if err != nil {
		return nil, err
	}
	if err := ensureUnlocked(tl, item.TrackID); err != nil {
		return nil, err
	}

	var removedTransitionIDs []string
	if tr, bridged := timeline.HasTransitionBridgeAtHandle(item, c.Handle, tl.Transitions); bridged {
		if !c.Force {
			return nil, merry.Wrap(timeline.ErrTransitionBridgeConflict)
		}
		removedTransitionIDs = append(removedTransitionIDs, tr.ID)
		removeTransitions(tl, removedTransitionIDs)
	}

	clamped := timeline.ClampToAdjacentItems(item, c.Handle, c.Delta, tl.Items)
	trimmed, err := timeline.ApplyTrim(item, c.Handle, clamped)
	if err != nil {
		return nil, err
	}

	applied := trimmed.DurationInFrames - item.DurationInFrames
	if c.Handle == timeline.HandleStart {
		applied = trimmed.From - item.From
	}

	replaceItem(tl, item.ID, trimmed)

	return &Outcome{
		AppliedDelta:         applied,
		RemovedTransitionIDs: removedTransitionIDs,
	}, nil
}

type MoveItem struct {
	ItemID    string `json:"itemId"`
	ToTrackID string `json:"toTrackId,omitempty"`
	ToFrame   int64  `json:"toFrame"`
	Force     bool   `json:"force,omitempty"`
}

func (c MoveItem) Name() string      { return "moveItem" }
func (c MoveItem) EventType() string { return events.TypeItemMoved }

func (c MoveItem) Apply(tl *timeline.Timeline) (*Outcome, error) {
	item, err := itemByID(tl, c.ItemID)
	if err != nil {
		return nil, err
	}
	if err := ensureUnlocked(tl, item.TrackID); err != nil {
		return nil, err
	}

	moved := item.Clone()
	moved.From = c.ToFrame
	if c.ToTrackID != "" && c.ToTrackID != item.TrackID {
		if err := ensureUnlocked(tl, c.ToTrackID); err != nil {
			return nil, err
		}
		moved.TrackID = c.ToTrackID
	}

	replaceItem(tl, item.ID, moved)

	// A move that keeps a seam intact keeps its transition; any transition
	// the move breaks needs force, and force drops it.
	var removedTransitionIDs []string
	for _, tr := range tl.Transitions {
		if tr.LeftClipID != item.ID && tr.RightClipID != item.ID {
			continue
		}
		if timeline.ValidateTransition(tr, tl.Items) != nil {
			if !c.Force {
				return nil, merry.Wrap(timeline.ErrTransitionBridgeConflict)
			}
			removedTransitionIDs = append(removedTransitionIDs, tr.ID)
		}
	}
	removeTransitions(tl, removedTransitionIDs)

	return &Outcome{
		AppliedDelta:         moved.From - item.From,
		RemovedTransitionIDs: removedTransitionIDs,
	}, nil
}

type DeleteItem struct {
	ItemID string `json:"itemId"`
	Ripple bool   `json:"ripple,omitempty"`
}

func (c DeleteItem) Name() string      { return "deleteItem" }
func (c DeleteItem) EventType() string { return events.TypeItemDeleted }

func (c DeleteItem) Apply(tl *timeline.Timeline) (*Outcome, error) {
	item, err := itemByID(tl, c.ItemID)
	if err != nil {
		return nil, err
	}
	if err := ensureUnlocked(tl, item.TrackID); err != nil {
		return nil, err
	}

	var removedTransitionIDs []string
	for _, tr := range tl.Transitions {
		if tr.LeftClipID == item.ID || tr.RightClipID == item.ID {
			removedTransitionIDs = append(removedTransitionIDs, tr.ID)
		}
	}
	removeTransitions(tl, removedTransitionIDs)
	removeItems(tl, item.ID)

	var framesRemoved int64
	if c.Ripple {
		framesRemoved = item.DurationInFrames
		for i := range tl.Items {
			other := &tl.Items[i]
			if other.TrackID == item.TrackID && other.From >= item.End() {
				other.From -= item.DurationInFrames
			}
		}
	}

	return &Outcome{
		RemovedItemIDs:       []string{item.ID},
		RemovedTransitionIDs: removedTransitionIDs,
		FramesRemoved:        framesRemoved,
	}, nil
}

type AddItem struct {
	Item timeline.Item `json:"item"`
}

func (c AddItem) Name() string      { return "addItem" }
func (c AddItem) EventType() string { return events.TypeItemAdded }

func (c AddItem) Apply(tl *timeline.Timeline) (*Outcome, error) {
	item := c.Item.Clone()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.OriginID == "" {
		item.OriginID = item.ID
	}
	if err := ensureUnlocked(tl, item.TrackID); err != nil {
		return nil, err
	}

	tl.Items = append(tl.Items, item)

	return &Outcome{CreatedItemIDs: []string{item.ID}}, nil
}

// UpdateItem changes presentation properties of one item. Position, duration
// and source fields stay with the dedicated edit commands.
type UpdateItem struct {
	ItemID    string              `json:"itemId"`
	NewName   *string             `json:"name,omitempty"`
	Volume    *float64            `json:"volume,omitempty"`
	Muted     *bool               `json:"muted,omitempty"`
	Transform *timeline.Transform `json:"transform,omitempty"`
	FitMode   *timeline.FitMode   `json:"fitMode,omitempty"`
}

func (c UpdateItem) Name() string      { return "updateItem" }
func (c UpdateItem) EventType() string { return events.TypeItemUpdated }

func (c UpdateItem) Apply(tl *timeline.Timeline) (*Outcome, error) {
	item, err := itemByID(tl, c.ItemID)
	if err != nil {
		return nil, err
	}
	if err := ensureUnlocked(tl, item.TrackID); err != nil {
		return nil, err
	}

	updated := item.Clone()
	if c.NewName != nil {
		updated.Name = *c.NewName
	}
	if c.Volume != nil {
		updated.Volume = *c.Volume
	}
	if c.Muted != nil {
		updated.Muted = *c.Muted
	}
	if c.Transform != nil {
		t := *c.Transform
		updated.Transform = &t
	}
	if c.FitMode != nil {
		updated.FitMode = *c.FitMode
	}

	replaceItem(tl, item.ID, updated)

	return &Outcome{}, nil
}

// UpdateTrack changes track-level flags and presentation fields.
type UpdateTrack struct {
	TrackID string  `json:"trackId"`
	NewName *string `json:"name,omitempty"`
	Height  *int    `json:"height,omitempty"`
	Locked  *bool   `json:"locked,omitempty"`
	Visible *bool   `json:"visible,omitempty"`
	Muted   *bool   `json:"muted,omitempty"`
	Solo    *bool   `json:"solo,omitempty"`
}

func (c UpdateTrack) Name() string      { return "updateTrack" }
func (c UpdateTrack) EventType() string { return events.TypeTrackUpdated }

func (c UpdateTrack) Apply(tl *timeline.Timeline) (*Outcome, error) {
	idx := -1
	for i, track := range tl.Tracks {
		if track.ID == c.TrackID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, merry.Wrap(timeline.ErrUnknownTrack)
	}

	track := tl.Tracks[idx]
	if c.NewName != nil {
		track.Name = *c.NewName
	}
	if c.Height != nil {
		track.Height = *c.Height
	}
	if c.Locked != nil {
		track.Locked = *c.Locked
	}
	if c.Visible != nil {
		track.Visible = *c.Visible
	}
	if c.Muted != nil {
		track.Muted = *c.Muted
	}
	if c.Solo != nil {
		track.Solo = *c.Solo
	}
	tl.Tracks[idx] = track

	return &Outcome{}, nil
}

type AddTrack struct {
	NewName string `json:"name,omitempty"`
}

func (c AddTrack) Name() string      { return "addTrack" }
func (c AddTrack) EventType() string { return events.TypeTrackAdded }

func (c AddTrack) Apply(tl *timeline.Timeline) (*Outcome, error) {
	order := 0
	for _, track := range tl.Tracks {
		if track.Order >= order {
			order = track.Order + 1
		}
	}

	track := timeline.Track{
		ID:      uuid.NewString(),
		Name:    c.NewName,
		Order:   order,
		Visible: true,
	}
	tl.Tracks = append(tl.Tracks, track)

	return &Outcome{CreatedTrackIDs: []string{track.ID}}, nil
}

type AddTransition struct {
	ItemID           string                          `json:"itemId"`
	DurationInFrames int64                           `json:"durationInFrames"`
	Presentation     timeline.TransitionPresentation `json:"presentation"`
	Direction        timeline.TransitionDirection    `json:"direction,omitempty"`
	Alignment        *float64                        `json:"alignment,omitempty"`
}

func (c AddTransition) Name() string      { return "addTransition" }
func (c AddTransition) EventType() string { return events.TypeTransitionAdded }

func (c AddTransition) Apply(tl *timeline.Timeline) (*Outcome, error) {
	if c.DurationInFrames < 1 {
		return nil, merry.Wrap(ErrInvalidTransitionDuration)
	}

	item, err := itemByID(tl, c.ItemID)
	if err != nil {
		return nil, err
	}
	if err := ensureUnlocked(tl, item.TrackID); err != nil {
		return nil, err
	}

	slot, ok := timeline.FindTransitionSlot(item, tl.Items, tl.Transitions)
	if !ok {
		return nil, merry.Wrap(timeline.ErrTransitionNotAdjacent)
	}
	if slot.HasExisting() {
		return nil, merry.Wrap(timeline.ErrTransitionBridgeConflict)
	}

	presentation := c.Presentation
	if presentation == (timeline.TransitionPresentation{}) {
		presentation = timeline.PresentationCrossfade
	}
	alignment := 0.5
	if c.Alignment != nil {
		alignment = *c.Alignment
	}

	tr := timeline.Transition{
		ID:               uuid.NewString(),
		TrackID:          item.TrackID,
		LeftClipID:       slot.LeftClipID,
		RightClipID:      slot.RightClipID,
		DurationInFrames: c.DurationInFrames,
		Presentation:     presentation,
		Direction:        c.Direction,
		Alignment:        alignment,
	}
	if err := timeline.ValidateTransition(tr, tl.Items); err != nil {
		return nil, err
	}

	tl.Transitions = append(tl.Transitions, tr)

	return &Outcome{CreatedTransitionIDs: []string{tr.ID}}, nil
}

type UpdateTransition struct {
	TransitionID     string                           `json:"transitionId"`
	DurationInFrames *int64                           `json:"durationInFrames,omitempty"`
	Presentation     *timeline.TransitionPresentation `json:"presentation,omitempty"`
	Direction        *timeline.TransitionDirection    `json:"direction,omitempty"`
	Alignment        *float64                         `json:"alignment,omitempty"`
}

func (c UpdateTransition) Name() string      { return "updateTransition" }
func (c UpdateTransition) EventType() string { return events.TypeTransitionUpdated }

func (c UpdateTransition) Apply(tl *timeline.Timeline) (*Outcome, error) {
	idx := -1
	for i, tr := range tl.Transitions {
		if tr.ID == c.TransitionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, merry.Wrap(ErrUnknownTransition)
	}

	tr := tl.Transitions[idx]
	if c.DurationInFrames != nil {
		if *c.DurationInFrames < 1 {
			return nil, merry.Wrap(ErrInvalidTransitionDuration)
		}
		tr.DurationInFrames = *c.DurationInFrames
	}
	if c.Presentation != nil {
		tr.Presentation = *c.Presentation
	}
	if c.Direction != nil {
		tr.Direction = *c.Direction
	}
	if c.Alignment != nil {
		tr.Alignment = *c.Alignment
	}

	if err := timeline.ValidateTransition(tr, tl.Items); err != nil {
		return nil, err
	}
	tl.Transitions[idx] = tr

	return &Outcome{UpdatedTransitionIDs: []string{tr.ID}}, nil
}

type RemoveTransition struct {
	TransitionID string `json:"transitionId"`
}

func (c RemoveTransition) Name() string      { return "removeTransition" }
func (c RemoveTransition) EventType() string { return events.TypeTransitionRemoved }

func (c RemoveTransition) Apply(tl *timeline.Timeline) (*Outcome, error) {
	_, found := lo.Find(tl.Transitions, func(t timeline.Transition) bool {
		return t.ID == c.TransitionID
	})
	if !found {
		return nil, merry.Wrap(ErrUnknownTransition)
	}

	removeTransitions(tl, []string{c.TransitionID})

	return &Outcome{RemovedTransitionIDs: []string{c.TransitionID}}, nil
}

type CloseGaps struct {
	TrackID string `json:"trackId,omitempty"`
}

func (c CloseGaps) Name() string      { return "closeGaps" }
func (c CloseGaps) EventType() string { return events.TypeGapsClosed }

func (c CloseGaps) Apply(tl *timeline.Timeline) (*Outcome, error) {
	if c.TrackID != "" {
		if err := ensureUnlocked(tl, c.TrackID); err != nil {
			return nil, err
		}
	}

	gaps := timeline.FindGaps(tl.Items, c.TrackID)
	var framesRemoved int64
	for _, gap := range gaps {
		framesRemoved += gap.DurationInFrames
	}

	tl.Items = timeline.RemoveGaps(tl.Items, c.TrackID)

	return &Outcome{FramesRemoved: framesRemoved}, nil
}

type CloseLeadingGaps struct{}

func (c CloseLeadingGaps) Name() string      { return "closeLeadingGaps" }
func (c CloseLeadingGaps) EventType() string { return events.TypeGapsClosed }

func (c CloseLeadingGaps) Apply(tl *timeline.Timeline) (*Outcome, error) {
	var framesRemoved int64
	for _, track := range tl.Tracks {
		onTrack := tl.ItemsOnTrack(track.ID)
		if len(onTrack) > 0 {
			framesRemoved += onTrack[0].From
		}
	}

	tl.Items = timeline.RemoveLeadingGaps(tl.Items)

	return &Outcome{FramesRemoved: framesRemoved}, nil
}

func itemByID(tl *timeline.Timeline, id string) (timeline.Item, error) {
	item, found := tl.ItemByID(id)
	if !found {
		return timeline.Item{}, merry.Wrap(ErrUnknownItem)
	}
	return item, nil
}

func ensureUnlocked(tl *timeline.Timeline, trackID string) error {
	track, found := tl.TrackByID(trackID)
	if !found {
		return merry.Wrap(timeline.ErrUnknownTrack)
	}
	if track.Locked {
		return merry.Wrap(ErrTrackLocked)
	}
	return nil
}

func replaceItem(tl *timeline.Timeline, id string, with ...timeline.Item) {
	idx := -1
	for i, item := range tl.Items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		tl.Items = append(tl.Items, with...)
		return
	}
	out := make([]timeline.Item, 0, len(tl.Items)-1+len(with))
	out = append(out, tl.Items[:idx]...)
	out = append(out, with...)
	out = append(out, tl.Items[idx+1:]...)
	tl.Items = out
}

func removeItems(tl *timeline.Timeline, ids ...string) {
	set := mapset.NewSet[string](ids...)
	tl.Items = lo.Filter(tl.Items, func(i timeline.Item, _ int) bool {
		return !set.Contains(i.ID)
	})
}

func removeTransitions(tl *timeline.Timeline, ids []string) {
	if len(ids) == 0 {
		return
	}
	set := mapset.NewSet[string](ids...)
	tl.Transitions = lo.Filter(tl.Transitions, func(t timeline.Transition, _ int) bool {
		return !set.Contains(t.ID)
	})
}

// dropInvalidTransitions removes transitions that no longer describe a valid
// seam after a command ran, so stale bridges never linger in the document.
func dropInvalidTransitions(tl *timeline.Timeline) []string {
	var removed []string
	var kept []timeline.Transition
	for _, tr := range tl.Transitions {
		if timeline.ValidateTransition(tr, tl.Items) != nil {
			removed = append(removed, tr.ID)
			continue
		}
		kept = append(kept, tr)
	}
	tl.Transitions = kept
	return removed
}
