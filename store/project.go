// Package store owns persisted projects: SQLite-backed documents, schema
// migration and normalization on load, command application with undo/redo,
// and change-event publication.
package store

import (
	"github.com/ansel1/merry/v2"
	"github.com/reelcut/reelcut-engine/timeline"
)

// CurrentSchemaVersion is the document schema this build writes. Version 1
// documents predate item lineage, track visibility flags and transition
// alignment; Normalize upgrades them on load.
const CurrentSchemaVersion = 2

var (
	ErrProjectNotFound = merry.Sentinel("project not found")
	ErrNothingToUndo   = merry.Sentinel("nothing to undo")
	ErrNothingToRedo   = merry.Sentinel("nothing to redo")
)

type Project struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	SchemaVersion int               `json:"schemaVersion"`
	Timeline      timeline.Timeline `json:"timeline"`
	CreatedAt     int64             `json:"createdAt"`
	UpdatedAt     int64             `json:"updatedAt"`
}

func (p Project) Clone() Project {
	out := p
	out.Timeline = p.Timeline.Clone()
	return out
}

// ProjectSummary is the listing row, everything but the document itself.
type ProjectSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SchemaVersion int    `json:"schemaVersion"`
	CreatedAt     int64  `json:"createdAt"`
	UpdatedAt     int64  `json:"updatedAt"`
}
