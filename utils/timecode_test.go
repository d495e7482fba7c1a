package utils_test

import (
	"testing"

	"github.com/reelcut/reelcut-engine/utils"
	"github.com/stretchr/testify/assert"
)

func TestTimecodeToFrames(t *testing.T) {
	type args struct {
		tc       string
		fps      int
		expected int64
	}

	tests := []args{
		{"0:00:01:00", 25, 25},
		{"0:00:00:01", 25, 1},
		{"00:00:10:12", 30, 312},
		{"01:00:00:00", 25, 90000},
		{"13:50:38:05", 25, 1245955},
	}

	for _, tt := range tests {
		res, err := utils.TimecodeToFrames(tt.tc, tt.fps)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, res)
	}
}

func TestTimecodeToFramesInvalid(t *testing.T) {
	invalid := []string{
		"",
		"00:00:10",
		"00:00:10:12:05",
		"aa:bb:cc:dd",
		"00:61:00:00",
		"00:00:00:30",
	}

	for _, tc := range invalid {
		_, err := utils.TimecodeToFrames(tc, 30)
		assert.Error(t, err, tc)
	}
}

func TestFramesToTimecode(t *testing.T) {
	type args struct {
		frames   int64
		fps      int
		expected string
	}

	tests := []args{
		{0, 25, "00:00:00:00"},
		{25, 25, "00:00:01:00"},
		{312, 30, "00:00:10:12"},
		{90000, 25, "01:00:00:00"},
		{1245955, 25, "13:50:38:05"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, utils.FramesToTimecode(tt.frames, tt.fps))
	}
}

func TestTimecodeRoundTrip(t *testing.T) {
	for _, fps := range []int{24, 25, 30, 60} {
		for _, frames := range []int64{0, 1, 99, 1500, 123456} {
			tc := utils.FramesToTimecode(frames, fps)
			back, err := utils.TimecodeToFrames(tc, fps)
			assert.NoError(t, err)
			assert.Equal(t, frames, back, "fps %d frames %d", fps, frames)
		}
	}
}

func TestMsToFrames(t *testing.T) {
	type args struct {
		ms       float64
		fps      float64
		expected int64
	}

	tests := []args{
		{0, 25, 0},
		{1000, 25, 25},
		{999, 25, 24},
		{33.4, 29.97, 1},
		{1001, 29.97, 29},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, utils.MsToFrames(tt.ms, tt.fps))
	}
}

func TestIsDropFrameRate(t *testing.T) {
	assert.True(t, utils.IsDropFrameRate(29.97))
	assert.True(t, utils.IsDropFrameRate(59.94))
	assert.True(t, utils.IsDropFrameRate(23.976))
	assert.False(t, utils.IsDropFrameRate(25))
	assert.False(t, utils.IsDropFrameRate(30))
	assert.False(t, utils.IsDropFrameRate(24))
}

func TestRoundFPS(t *testing.T) {
	assert.Equal(t, 30, utils.RoundFPS(29.97))
	assert.Equal(t, 24, utils.RoundFPS(23.976))
	assert.Equal(t, 25, utils.RoundFPS(25))
	assert.Equal(t, 25, utils.RoundFPS(0))
}
