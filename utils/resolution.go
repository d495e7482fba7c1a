package utils

import (
	"fmt"
)

var (
	Resolution4K       = MustResolution("3840x2160")
	Resolution1080     = MustResolution("1920x1080")
	Resolution720      = MustResolution("1280x720")
	ResolutionVertical = MustResolution("1080x1920")
)

type Resolution struct {
	Width  int
	Height int
}

func ResolutionFromString(str string) (*Resolution, error) {
	var r Resolution
	_, err := fmt.Sscanf(str, "%dx%d", &r.Width, &r.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to parse resolution string %s, err: %v", str, err)
	}
	return &r, nil
}

func MustResolution(str string) *Resolution {
	r, err := ResolutionFromString(str)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// EnsureEven bumps odd dimensions up by one. Video encoders reject odd sizes.
func (r *Resolution) EnsureEven() {
	if r.Height%2 != 0 {
		r.Height = r.Height + 1
	}

	if r.Width%2 != 0 {
		r.Width = r.Width + 1
	}
}

func (r *Resolution) AspectRatio() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

// ResizedToFit returns the biggest resolution in the aspect ratio of the
// source that fits inside the target without cropping.
//
// If the target and source are in different modes (landscape vs portrait) the
// target is rotated to fit the source better, the main use case being
// vertical exports of landscape material.
func (r *Resolution) ResizedToFit(target Resolution) Resolution {
	tAspect := float64(target.Width) / float64(target.Height)
	sAspect := float64(r.Width) / float64(r.Height)

	flip := tAspect < 1 && sAspect > 1 || tAspect > 1 && sAspect < 1

	if flip {
		sAspect = float64(r.Height) / float64(r.Width)
	}

	out := Resolution{
		Width:  target.Width,
		Height: target.Height,
	}

	if tAspect > sAspect {
		out.Width = int(float64(target.Height) * sAspect)
	} else {
		out.Height = int(float64(target.Width) / sAspect)
	}

	if flip {
		out.Width, out.Height = out.Height, out.Width
	}

	return out
}

// ResizedToFill returns the smallest resolution in the aspect ratio of the
// source that fully covers the target, the excess is cropped by the caller.
func (r *Resolution) ResizedToFill(target Resolution) Resolution {
	tAspect := float64(target.Width) / float64(target.Height)
	sAspect := float64(r.Width) / float64(r.Height)

	out := Resolution{
		Width:  target.Width,
		Height: target.Height,
	}

	if tAspect > sAspect {
		out.Height = int(float64(target.Width) / sAspect)
	} else {
		out.Width = int(float64(target.Height) * sAspect)
	}

	return out
}

// FitScale computes the scale factors that map content into a canvas for the
// given fit behavior: contain letterboxes, cover crops, fill stretches both
// axes independently.
func FitScale(content, canvas Resolution, mode string) (scaleX, scaleY float64) {
	if content.Width == 0 || content.Height == 0 {
		return 1, 1
	}
	wRatio := float64(canvas.Width) / float64(content.Width)
	hRatio := float64(canvas.Height) / float64(content.Height)

	switch mode {
	case "cover":
		s := wRatio
		if hRatio > s {
			s = hRatio
		}
		return s, s
	case "fill":
		return wRatio, hRatio
	default:
		s := wRatio
		if hRatio < s {
			s = hRatio
		}
		return s, s
	}
}
