package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TimecodeToFrames parses a H:MM:SS:FF timecode at the given frame rate.
func TimecodeToFrames(timecode string, frameRate int) (int64, error) {
	parts := strings.Split(timecode, ":")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid timecode format")
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}

	seconds, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, err
	}

	frames, err := strconv.Atoi(parts[3])
	if err != nil {
		return 0, err
	}

	if minutes > 59 || seconds > 59 || frames >= frameRate {
		return 0, fmt.Errorf("timecode component out of range: %s", timecode)
	}

	totalFrames := int64(hours*3600+minutes*60+seconds)*int64(frameRate) + int64(frames)
	return totalFrames, nil
}

// FramesToTimecode renders a frame count as a HH:MM:SS:FF timecode.
func FramesToTimecode(frames int64, frameRate int) string {
	if frameRate <= 0 {
		frameRate = 25
	}
	fps := int64(frameRate)
	ff := frames % fps
	totalSeconds := frames / fps
	ss := totalSeconds % 60
	mm := (totalSeconds / 60) % 60
	hh := totalSeconds / 3600
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hh, mm, ss, ff)
}

// MsToFrames converts a millisecond position to the containing frame.
func MsToFrames(ms float64, fps float64) int64 {
	return int64(math.Floor(ms * fps / 1000))
}

// FramesToMs converts a frame position to milliseconds.
func FramesToMs(frames int64, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frames) * 1000 / fps
}

// IsDropFrameRate reports whether the rate is one of the NTSC fractional
// rates that use drop-frame timecode counting.
func IsDropFrameRate(fps float64) bool {
	return math.Abs(fps-29.97) < 0.01 || math.Abs(fps-59.94) < 0.01 || math.Abs(fps-23.976) < 0.001
}

// RoundFPS maps fractional NTSC rates to the nominal integer rate timecodes
// count in.
func RoundFPS(fps float64) int {
	if fps <= 0 {
		return 25
	}
	return int(math.Round(fps))
}
