package store

import (
	"github.com/reelcut/reelcut-engine/timeline"
)

const (
	TrackHeightMin = 24
	TrackHeightMax = 320

	RotationMax = 360
)

// Normalize upgrades a loaded document to the current schema and clamps every
// stored value into its legal range. Runs on every load so documents written
// by older builds, or edited by hand, never reach the engine out of range.
// Reports whether anything changed so callers persist the repaired document.
func Normalize(p *Project) bool {
	changed := false

	if p.SchemaVersion < CurrentSchemaVersion {
		migrateV1(p)
		p.SchemaVersion = CurrentSchemaVersion
		changed = true
	}

	tl := &p.Timeline

	for i := range tl.Tracks {
		track := &tl.Tracks[i]
		if track.Height != 0 && clampInt(&track.Height, TrackHeightMin, TrackHeightMax) {
			changed = true
		}
	}

	for i := range tl.Items {
		item := &tl.Items[i]
		if item.From < 0 {
			item.From = 0
			changed = true
		}
		if item.DurationInFrames < 1 {
			item.DurationInFrames = 1
			changed = true
		}
		if item.Speed != 0 {
			if clamped := timeline.ClampSpeed(item.Speed); clamped != item.Speed {
				item.Speed = clamped
				changed = true
			}
		}
		if clampFloat(&item.Volume, 0, 1) {
			changed = true
		}
		if item.Transform != nil {
			if clampFloat(&item.Transform.Rotation, -RotationMax, RotationMax) {
				changed = true
			}
			if clampFloat(&item.Transform.Opacity, 0, 1) {
				changed = true
			}
		}
	}

	for i := range tl.Transitions {
		tr := &tl.Transitions[i]
		if tr.DurationInFrames < 1 {
			tr.DurationInFrames = 1
			changed = true
		}
		if clampFloat(&tr.Alignment, 0, 1) {
			changed = true
		}
	}

	return changed
}

// migrateV1 fills the fields version 1 documents never carried: lineage ids,
// track visibility and seam alignment.
func migrateV1(p *Project) {
	tl := &p.Timeline
	for i := range tl.Items {
		if tl.Items[i].OriginID == "" {
			tl.Items[i].OriginID = tl.Items[i].ID
		}
	}
	for i := range tl.Tracks {
		tl.Tracks[i].Visible = true
	}
	for i := range tl.Transitions {
		if tl.Transitions[i].Alignment == 0 {
			tl.Transitions[i].Alignment = 0.5
		}
	}
}

func clampFloat(v *float64, min, max float64) bool {
	if *v < min {
		*v = min
		return true
	}
	if *v > max {
		*v = max
		return true
	}
	return false
}

func clampInt(v *int, min, max int) bool {
	if *v < min {
		*v = min
		return true
	}
	if *v > max {
		*v = max
		return true
	}
	return false
}
