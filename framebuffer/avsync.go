package framebuffer

import (
	"math"
	"sync"

	"github.com/orsinium-labs/enum"
)

type SyncAction enum.Member[string]

var (
	// ActionDrop catches video up by skipping a frame.
	ActionDrop = SyncAction{Value: "drop"}
	// ActionDisplay presents normally.
	ActionDisplay = SyncAction{Value: "display"}
	// ActionWait repeats the current frame until audio catches up.
	ActionWait  = SyncAction{Value: "wait"}
	SyncActions = enum.New(ActionDrop, ActionDisplay, ActionWait)
)

// AVSync tracks the drift between the audio clock and the video clock and
// recommends how the display loop should react. Audio is the master clock.
type AVSync struct {
	mu sync.Mutex

	thresholdMs float64
	audioTimeMs float64
	videoTimeMs float64
	driftMs     float64
}

func NewAVSync(thresholdMs float64) *AVSync {
	return &AVSync{thresholdMs: thresholdMs}
}

func (s *AVSync) SetAudioTime(timeMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audioTimeMs = timeMs
	s.driftMs = s.videoTimeMs - s.audioTimeMs
}

func (s *AVSync) SetVideoTime(timeMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.videoTimeMs = timeMs
	s.driftMs = s.videoTimeMs - s.audioTimeMs
}

func (s *AVSync) InSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return math.Abs(s.driftMs) <= s.thresholdMs
}

func (s *AVSync) Action() SyncAction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.driftMs > s.thresholdMs {
		return ActionWait
	}
	if s.driftMs < -s.thresholdMs {
		return ActionDrop
	}
	return ActionDisplay
}

// Drift is positive when video runs ahead of audio.
func (s *AVSync) Drift() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.driftMs
}

func (s *AVSync) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audioTimeMs = 0
	s.videoTimeMs = 0
	s.driftMs = 0
}
