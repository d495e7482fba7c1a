// Package mediainfo looks up probed metadata for source assets referenced by
// timeline items. The engine itself never touches media files, it only needs
// durations and dimensions to bound source ranges.
package mediainfo

import (
	"context"

	"github.com/ansel1/merry/v2"
)

var ErrMediaNotFound = merry.Sentinel("media not found")

// MediaInfo describes one source asset. DurationFrames is in source frames at
// the asset's native frame rate and stays fractional because probed durations
// rarely land on frame boundaries.
type MediaInfo struct {
	MediaID        string  `json:"mediaId"`
	Path           string  `json:"path,omitempty"`
	DurationFrames float64 `json:"durationFrames"`
	FrameRate      float64 `json:"frameRate"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	HasAudio       bool    `json:"hasAudio,omitempty"`
	HasVideo       bool    `json:"hasVideo,omitempty"`
}

type Provider interface {
	Lookup(ctx context.Context, mediaID string) (MediaInfo, error)
}
