// Package export flattens a timeline into interchange formats: CMX3600 EDLs
// for conform, CSV shot lists for review and plain JSON for round-tripping.
package export

import (
	"encoding/json"

	"github.com/ansel1/merry/v2"
	"github.com/orsinium-labs/enum"
	"github.com/reelcut/reelcut-engine/timeline"
)

type Format enum.Member[string]

var (
	FormatEDL  = Format{Value: "edl"}
	FormatCSV  = Format{Value: "csv"}
	FormatJSON = Format{Value: "json"}
	Formats    = enum.New(FormatEDL, FormatCSV, FormatJSON)

	ErrFormatNotFound    = merry.Sentinel("export format not found")
	ErrNoExportableTrack = merry.Sentinel("no track with media items to export")
)

// Options selects what to export. TrackID narrows EDL and CSV output to one
// track, empty picks the lowest-order track carrying media. MediaPaths maps
// media ids to the paths remark lines should reference.
type Options struct {
	Title      string
	TrackID    string
	MediaPaths map[string]string
}

// Export renders the timeline in the named format.
func Export(tl timeline.Timeline, format string, opts Options) ([]byte, string, error) {
	f := Formats.Parse(format)
	if f == nil {
		return nil, "", merry.Wrap(ErrFormatNotFound)
	}

	switch *f {
	case FormatEDL:
		out, err := GenerateEDL(tl, opts)
		if err != nil {
			return nil, "", err
		}
		return []byte(out), "text/plain; charset=utf-8", nil
	case FormatCSV:
		out, err := GenerateShotList(tl, opts)
		if err != nil {
			return nil, "", err
		}
		return out, "text/csv", nil
	case FormatJSON:
		out, err := json.MarshalIndent(tl, "", "  ")
		if err != nil {
			return nil, "", merry.Wrap(err)
		}
		return out, "application/json", nil
	}
	return nil, "", merry.Wrap(ErrFormatNotFound)
}
