package export

import (
	"strconv"

	"github.com/ansel1/merry/v2"
	"github.com/gocarina/gocsv"
	"github.com/reelcut/reelcut-engine/timeline"
	"github.com/reelcut/reelcut-engine/utils"
)

type ShotListRow struct {
	Event     int    `csv:"Event"`
	Track     string `csv:"Track"`
	Kind      string `csv:"Kind"`
	ClipName  string `csv:"Clip name"`
	MediaID   string `csv:"Media ID"`
	RecordIn  string `csv:"Record in"`
	RecordOut string `csv:"Record out"`
	Duration  int64  `csv:"Duration frames"`
	SourceIn  string `csv:"Source in"`
	SourceOut string `csv:"Source out"`
	Speed     string `csv:"Speed"`
	Volume    string `csv:"Volume"`
}

// GenerateShotList renders every item as one CSV row, tracks in stacking
// order and items in timeline order. Non-media items keep their source and
// speed columns empty.
func GenerateShotList(tl timeline.Timeline, opts Options) ([]byte, error) {
	fps := utils.RoundFPS(tl.FPS)

	tracks := tl.TracksInOrder()
	if opts.TrackID != "" {
		track, found := tl.TrackByID(opts.TrackID)
		if !found {
			return nil, merry.Wrap(timeline.ErrUnknownTrack)
		}
		tracks = []timeline.Track{track}
	}

	var rows []ShotListRow
	for _, track := range tracks {
		trackName := track.Name
		if trackName == "" {
			trackName = track.ID
		}
		for _, item := range timeline.OrderItemsByPosition(tl.ItemsOnTrack(track.ID)) {
			row := ShotListRow{
				Event:     len(rows) + 1,
				Track:     trackName,
				Kind:      item.Kind.Value,
				ClipName:  clipName(item),
				MediaID:   item.MediaID,
				RecordIn:  utils.FramesToTimecode(item.From, fps),
				RecordOut: utils.FramesToTimecode(item.End(), fps),
				Duration:  item.DurationInFrames,
			}
			if item.Kind.IsMedia() {
				srcStart, srcEnd, speed := timeline.SourceRange(item)
				row.SourceIn = utils.FramesToTimecode(srcStart, fps)
				row.SourceOut = utils.FramesToTimecode(srcEnd, fps)
				row.Speed = strconv.FormatFloat(speed, 'g', -1, 64)
				row.Volume = strconv.FormatFloat(item.VolumeOrDefault(), 'g', -1, 64)
			}
			rows = append(rows, row)
		}
	}

	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	return out, nil
}
