// Package framebuffer holds decoded-frame bookkeeping for preview playback,
// decoupling the decoder from the display loop. Only metadata lives here, the
// pixel data stays with the decoder under the handle each frame carries.
package framebuffer

import (
	"encoding/json"
	"sync"

	"github.com/orsinium-labs/enum"
)

// FrameInfo describes one decoded frame.
type FrameInfo struct {
	FrameNumber int64   `json:"frameNumber"`
	PTSMs       float64 `json:"ptsMs"`
	DurationMs  float64 `json:"durationMs"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Handle      int64   `json:"handle"`
	Keyframe    bool    `json:"keyframe"`
}

type State enum.Member[string]

//goland:noinspection GoMixedReceiverTypes
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

var (
	StateStarving = State{Value: "starving"}
	StateLow      = State{Value: "low"}
	StateHealthy  = State{Value: "healthy"}
	StateFull     = State{Value: "full"}
	States        = enum.New(StateStarving, StateLow, StateHealthy, StateFull)
)

type Stats struct {
	FrameCount       int     `json:"frameCount"`
	Capacity         int     `json:"capacity"`
	FramesDropped    int     `json:"framesDropped"`
	FramesDecoded    int     `json:"framesDecoded"`
	FramesDisplayed  int     `json:"framesDisplayed"`
	State            State   `json:"state"`
	BufferDurationMs float64 `json:"bufferDurationMs"`
}

// Buffer keeps decoded frames sorted by presentation time. The display side
// asks for the frame matching a wall-clock position, the decode side asks
// what to decode next and whether to keep going. Safe for use from both
// goroutines.
type Buffer struct {
	mu sync.Mutex

	frames       []FrameInfo
	capacity     int
	targetSize   int
	lowWaterMark int
	fps          float64
	stats        Stats

	// lastDisplayed is -1 until a frame has been handed to the display, so
	// the same frame is never returned twice.
	lastDisplayed int64

	playing            bool
	playbackStartMs    float64
	playbackStartFrame int64
}

func New(capacity int, fps float64) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		frames:       make([]FrameInfo, 0, capacity),
		capacity:     capacity,
		targetSize:   capacity * 3 / 4,
		lowWaterMark: capacity / 4,
		fps:          fps,
		stats: Stats{
			Capacity: capacity,
			State:    StateStarving,
		},
		lastDisplayed: -1,
	}
}

// Push inserts a decoded frame in presentation order. When the buffer is at
// capacity the oldest frame is evicted and its handle returned so the caller
// can release the pixel data.
func (b *Buffer) Push(frame FrameInfo) (evicted int64, didEvict bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.FramesDecoded++

	if len(b.frames) >= b.capacity {
		evicted = b.frames[0].Handle
		didEvict = true
		b.frames = b.frames[1:]
	}

	pos := len(b.frames)
	for i, f := range b.frames {
		if f.PTSMs > frame.PTSMs {
			pos = i
			break
		}
	}
	b.frames = append(b.frames, FrameInfo{})
	copy(b.frames[pos+1:], b.frames[pos:])
	b.frames[pos] = frame

	b.updateState()
	return evicted, didEvict
}

// FrameForTime pops the frame to display at the given clock position: the
// latest frame at or before it. Older frames are dropped and counted, and a
// frame already displayed is never returned again.
func (b *Buffer) FrameForTime(currentTimeMs float64) (FrameInfo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) == 0 {
		return FrameInfo{}, false
	}

	bestIdx := -1
	for i, f := range b.frames {
		if f.PTSMs <= currentTimeMs {
			bestIdx = i
		} else {
			break
		}
	}
	if bestIdx < 0 {
		return FrameInfo{}, false
	}

	frame := b.frames[bestIdx]
	if frame.FrameNumber == b.lastDisplayed {
		return FrameInfo{}, false
	}

	b.stats.FramesDropped += bestIdx
	b.frames = b.frames[bestIdx+1:]

	b.lastDisplayed = frame.FrameNumber
	b.stats.FramesDisplayed++
	b.updateState()
	return frame, true
}

// FrameByNumber looks a frame up without consuming it, for scrubbing.
func (b *Buffer) FrameByNumber(frameNumber int64) (FrameInfo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, f := range b.frames {
		if f.FrameNumber == frameNumber {
			return f, true
		}
	}
	return FrameInfo{}, false
}

// StartPlayback anchors the playback clock: frame startFrame corresponds to
// the given wall-clock time.
func (b *Buffer) StartPlayback(startFrame int64, currentTimeMs float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.playing = true
	b.playbackStartMs = currentTimeMs
	b.playbackStartFrame = startFrame
	b.lastDisplayed = -1
}

func (b *Buffer) StopPlayback() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.playing = false
}

// PresentationTime maps wall-clock time to the stream position in ms.
func (b *Buffer) PresentationTime(currentTimeMs float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.playing {
		return 0
	}
	elapsed := currentTimeMs - b.playbackStartMs
	startPTS := float64(b.playbackStartFrame) * (1000.0 / b.fps)
	return startPTS + elapsed
}

// TargetFrame is the frame number that should be on screen at the given
// wall-clock time.
func (b *Buffer) TargetFrame(currentTimeMs float64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.playing {
		return b.playbackStartFrame
	}
	elapsed := currentTimeMs - b.playbackStartMs
	framesElapsed := int64(elapsed * b.fps / 1000.0)
	return b.playbackStartFrame + framesElapsed
}

// Clear drops all buffered frames and returns their handles for release.
func (b *Buffer) Clear() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	handles := make([]int64, len(b.frames))
	for i, f := range b.frames {
		handles[i] = f.Handle
	}
	b.frames = b.frames[:0]
	b.lastDisplayed = -1
	b.updateState()
	return handles
}

func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.stats
}

// NeedsFrames reports whether the decoder should keep producing.
func (b *Buffer) NeedsFrames() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.frames) < b.targetSize
}

func (b *Buffer) IsFull() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.frames) >= b.capacity
}

// NextDecodeFrame is the frame number the decoder should produce next, the
// one after the latest buffered frame.
func (b *Buffer) NextDecodeFrame() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) == 0 {
		return b.playbackStartFrame
	}
	return b.frames[len(b.frames)-1].FrameNumber + 1
}

func (b *Buffer) EarliestFrame() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) == 0 {
		return 0, false
	}
	return b.frames[0].FrameNumber, true
}

func (b *Buffer) LatestFrame() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) == 0 {
		return 0, false
	}
	return b.frames[len(b.frames)-1].FrameNumber, true
}

func (b *Buffer) updateState() {
	count := len(b.frames)
	b.stats.FrameCount = count

	switch {
	case count == 0:
		b.stats.State = StateStarving
	case count < b.lowWaterMark:
		b.stats.State = StateLow
	case count >= b.capacity:
		b.stats.State = StateFull
	default:
		b.stats.State = StateHealthy
	}

	if count > 0 {
		first := b.frames[0]
		last := b.frames[count-1]
		b.stats.BufferDurationMs = last.PTSMs - first.PTSMs + last.DurationMs
	} else {
		b.stats.BufferDurationMs = 0
	}
}
