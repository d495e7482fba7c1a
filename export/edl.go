package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/ansel1/merry/v2"
	"github.com/reelcut/reelcut-engine/timeline"
	"github.com/reelcut/reelcut-engine/utils"
	"github.com/samber/lo"
)

const edlReel = "AX"

// GenerateEDL renders one track as a CMX3600 edit decision list. Record
// timecodes mirror the item positions on the timeline, so gaps come out as
// black between events. Transitions between adjacent clips become two-line
// dissolve or wipe events, and clips playing off-speed get an M2 motion
// memory line carrying the adjusted source rate.
func GenerateEDL(tl timeline.Timeline, opts Options) (string, error) {
	track, err := exportTrack(tl, opts.TrackID)
	if err != nil {
		return "", err
	}

	fps := utils.RoundFPS(tl.FPS)
	items := lo.Filter(tl.ItemsOnTrack(track.ID), func(item timeline.Item, _ int) bool {
		return item.Kind.IsMedia()
	})
	items = timeline.OrderItemsByPosition(items)

	title := opts.Title
	if title == "" {
		title = "Untitled"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("TITLE: %s\n", title))
	if utils.IsDropFrameRate(tl.FPS) {
		sb.WriteString("FCM: DROP FRAME\n\n")
	} else {
		sb.WriteString("FCM: NON-DROP FRAME\n\n")
	}

	for i, item := range items {
		srcStart, srcEnd, speed := timeline.SourceRange(item)
		srcIn := utils.FramesToTimecode(srcStart, fps)
		srcOut := utils.FramesToTimecode(srcEnd, fps)
		recIn := utils.FramesToTimecode(item.From, fps)
		recOut := utils.FramesToTimecode(item.End(), fps)
		letter := trackLetter(item.Kind)

		tr := incomingTransition(tl, track.ID, item, items)
		if tr != nil {
			// CMX dissolves are two lines under one event number: a
			// zero-length tail of the outgoing clip at the seam, then the
			// incoming clip with the edit type and frame count.
			left, _ := tl.ItemByID(tr.LeftClipID)
			_, leftSrcEnd, _ := timeline.SourceRange(left)
			leftOut := utils.FramesToTimecode(leftSrcEnd, fps)
			sb.WriteString(fmt.Sprintf("%03d  %-8s %-5s %-4s%-5s%s %s %s %s\n",
				i+1, edlReel, letter, "C", "", leftOut, leftOut, recIn, recIn))
			sb.WriteString(fmt.Sprintf("%03d  %-8s %-5s %-4s%-5s%s %s %s %s\n",
				i+1, edlReel, letter, editType(tr.Presentation), fmt.Sprintf("%03d", tr.DurationInFrames),
				srcIn, srcOut, recIn, recOut))
			sb.WriteString(fmt.Sprintf("* EFFECT NAME: %s\n", effectName(tr.Presentation)))
		} else {
			sb.WriteString(fmt.Sprintf("%03d  %-8s %-5s %-4s%-5s%s %s %s %s\n",
				i+1, edlReel, letter, "C", "", srcIn, srcOut, recIn, recOut))
		}

		if math.Abs(speed-1) > 1e-9 {
			sb.WriteString(fmt.Sprintf("M2   %-8s %05.1f                 %s\n",
				edlReel, speed*float64(fps), srcIn))
		}

		if name := clipName(item); name != "" {
			sb.WriteString(fmt.Sprintf("* FROM CLIP NAME:  %s\n", name))
		}
		if path, ok := opts.MediaPaths[item.MediaID]; ok && path != "" {
			sb.WriteString(fmt.Sprintf("* MEDIA PATH:  %s\n", path))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func exportTrack(tl timeline.Timeline, trackID string) (timeline.Track, error) {
	if trackID != "" {
		track, found := tl.TrackByID(trackID)
		if !found {
			return timeline.Track{}, merry.Wrap(timeline.ErrUnknownTrack)
		}
		return track, nil
	}
	for _, track := range tl.TracksInOrder() {
		hasMedia := lo.SomeBy(tl.ItemsOnTrack(track.ID), func(item timeline.Item) bool {
			return item.Kind.IsMedia()
		})
		if hasMedia {
			return track, nil
		}
	}
	return timeline.Track{}, merry.Wrap(ErrNoExportableTrack)
}

// incomingTransition reports the transition ending on item, but only when it
// still bridges a real seam with the previous clip in the listing.
func incomingTransition(tl timeline.Timeline, trackID string, item timeline.Item, ordered []timeline.Item) *timeline.Transition {
	tr, found := lo.Find(tl.Transitions, func(tr timeline.Transition) bool {
		return tr.TrackID == trackID && tr.RightClipID == item.ID
	})
	if !found {
		return nil
	}
	if err := timeline.ValidateTransition(tr, tl.Items); err != nil {
		return nil
	}
	idx := lo.IndexOf(lo.Map(ordered, func(it timeline.Item, _ int) string { return it.ID }), item.ID)
	if idx < 1 || ordered[idx-1].ID != tr.LeftClipID {
		return nil
	}
	return &tr
}

func trackLetter(kind timeline.ItemKind) string {
	if kind == timeline.KindAudio {
		return "A"
	}
	return "V"
}

func editType(p timeline.TransitionPresentation) string {
	if p == timeline.PresentationCrossfade {
		return "D"
	}
	return "W"
}

func effectName(p timeline.TransitionPresentation) string {
	switch p {
	case timeline.PresentationCrossfade:
		return "CROSS DISSOLVE"
	case timeline.PresentationWipe:
		return "WIPE"
	case timeline.PresentationSlide:
		return "SLIDE"
	case timeline.PresentationFlip:
		return "FLIP"
	}
	return strings.ToUpper(p.Value)
}

func clipName(item timeline.Item) string {
	if item.Name != "" {
		return item.Name
	}
	return item.MediaID
}
