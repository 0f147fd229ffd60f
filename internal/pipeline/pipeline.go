// Package pipeline wires loading, high-pass filtering and saving together.
package pipeline

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/himbeles/texturize/internal/highpass"
	"github.com/himbeles/texturize/internal/imageio"
	"github.com/himbeles/texturize/internal/ir"
)

// Options controls a single filter run.
type Options struct {
	InputPath      string
	OutputPath     string
	CutoffDistance float64 // Gaussian sigma in pixels
}

// Result describes the written image.
type Result struct {
	OutputPath string
	Width      int
	Height     int
	Channels   int
	Mode       string // e.g. "RGB", "I;16"
	ICCBytes   int
}

// Shape returns the output dimensions as (H, W) or (H, W, C).
func (r *Result) Shape() []int {
	if r.Channels == 1 {
		return []int{r.Height, r.Width}
	}
	return []int{r.Height, r.Width, r.Channels}
}

// ShapeString renders Shape like "(480, 640, 3)".
func (r *Result) ShapeString() string {
	s := r.Shape()
	if len(s) == 2 {
		return fmt.Sprintf("(%d, %d)", s[0], s[1])
	}
	return fmt.Sprintf("(%d, %d, %d)", s[0], s[1], s[2])
}

// Run executes load → high-pass → save. Errors are the *imageio.LoadError,
// *highpass.ComputeError or *imageio.SaveError of the failing step, and
// nothing is written unless every step before the save succeeded.
func Run(opts Options) (*Result, error) {
	start := time.Now()

	// 1. Load
	src, err := imageio.Load(opts.InputPath)
	if err != nil {
		return nil, err
	}

	// 2. Filter
	out, err := Process(src, opts.CutoffDistance)
	if err != nil {
		return nil, err
	}

	// 3. Save
	if err := imageio.Save(opts.OutputPath, out); err != nil {
		return nil, err
	}

	log.Debug().
		Str("input", opts.InputPath).
		Str("output", opts.OutputPath).
		Float64("cutoff", opts.CutoffDistance).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline finished")

	return &Result{
		OutputPath: opts.OutputPath,
		Width:      out.Width,
		Height:     out.Height,
		Channels:   out.Channels(),
		Mode:       out.ModeName(),
		ICCBytes:   len(out.ICC),
	}, nil
}

// Process filters an in-memory image. The source is not modified.
func Process(src *ir.Image, cutoff float64) (*ir.Image, error) {
	return highpass.Apply(src, cutoff)
}
