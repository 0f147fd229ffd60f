// Package highpass removes low spatial frequencies from an image by
// subtracting a Gaussian-blurred copy and re-adding the per-channel mean:
//
//	result = clip(image - blur(image, sigma) + mean(image), 0, max)
//
// The filter is lossy and not idempotent: running it on its own output
// generally changes the image again.
package highpass

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/himbeles/texturize/internal/blur"
	"github.com/himbeles/texturize/internal/ir"
)

// DefaultCutoffDistance is the Gaussian spread used when none is given.
const DefaultCutoffDistance = 50.0

// ComputeError reports an image the compositor cannot process.
type ComputeError struct {
	Err error
}

func (e *ComputeError) Error() string { return e.Err.Error() }

func (e *ComputeError) Unwrap() error { return e.Err }

// Apply returns the high-pass filtered copy of src. cutoffDistance is the
// Gaussian sigma in pixels on both spatial axes; values <= 0 disable the
// blur, which leaves every sample at its channel mean.
//
// The result has the same dimensions, mode, sample kind, palette and ICC
// profile as src. Samples are clipped to [0, max] and truncated toward zero.
func Apply(src *ir.Image, cutoffDistance float64) (*ir.Image, error) {
	if src == nil {
		return nil, &ComputeError{Err: fmt.Errorf("no image")}
	}
	maxValue, ok := src.Kind.MaxValue()
	if !ok {
		return nil, &ComputeError{Err: fmt.Errorf("unsupported sample kind %v: no maximum value", src.Kind)}
	}
	if err := src.Validate(); err != nil {
		return nil, &ComputeError{Err: fmt.Errorf("invalid image shape: %w", err)}
	}
	if math.IsNaN(cutoffDistance) || math.IsInf(cutoffDistance, 0) {
		return nil, &ComputeError{Err: fmt.Errorf("cutoff distance %v is not finite", cutoffDistance)}
	}

	start := time.Now()
	filter := blur.New(cutoffDistance)

	dst := &ir.Image{
		Width:   src.Width,
		Height:  src.Height,
		Mode:    src.Mode,
		Kind:    src.Kind,
		Pix:     make([]byte, len(src.Pix)),
		Palette: src.Palette,
		ICC:     src.ICC,
	}

	channels := src.Channels()
	for c := 0; c < channels; c++ {
		plane := extractPlane(src, c)
		blurred := filter.Apply(plane)
		mean := Mean(plane)
		composite(plane, blurred, mean, maxValue)
		storePlane(dst, c, plane)

		log.Debug().
			Int("channel", c).
			Float32("mean", mean).
			Msg("channel filtered")
	}

	log.Debug().
		Float64("sigma", cutoffDistance).
		Int("radius_x", filter.RadiusX()).
		Int("radius_y", filter.RadiusY()).
		Str("shape", src.ShapeString()).
		Dur("elapsed", time.Since(start)).
		Msg("high-pass applied")

	return dst, nil
}

// Mean returns the arithmetic mean of p, accumulated in float64.
func Mean(p *ir.Plane) float32 {
	if len(p.Pix) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.Pix {
		sum += float64(v)
	}
	return float32(sum / float64(len(p.Pix)))
}

// composite computes plane = clip(plane - blurred + mean, 0, maxValue) in place.
func composite(plane, blurred *ir.Plane, mean, maxValue float32) {
	for i, v := range plane.Pix {
		r := v - blurred.Pix[i] + mean
		if r < 0 {
			r = 0
		} else if r > maxValue {
			r = maxValue
		}
		plane.Pix[i] = r
	}
}

// extractPlane copies channel c of img into a float32 plane.
func extractPlane(img *ir.Image, c int) *ir.Plane {
	p := ir.NewPlane(img.Width, img.Height)
	channels := img.Channels()
	for i := range p.Pix {
		p.Pix[i] = float32(img.Sample(i*channels + c))
	}
	return p
}

// storePlane truncates the clipped plane into channel c of img.
func storePlane(img *ir.Image, c int, p *ir.Plane) {
	channels := img.Channels()
	for i, v := range p.Pix {
		img.SetSample(i*channels+c, uint32(v))
	}
}
