package blur

import (
	"github.com/himbeles/texturize/internal/ir"
)

// Filter blurs a plane with a Gaussian of the given spread along both
// spatial axes.
type Filter struct {
	// SigmaY is the vertical spread in pixels (axis 0).
	SigmaY float64

	// SigmaX is the horizontal spread in pixels (axis 1).
	SigmaX float64

	// Truncate is the kernel half-width in standard deviations.
	Truncate float64

	kernelY []float64
	kernelX []float64
}

// New creates a filter with equal spread on both axes.
func New(sigma float64) *Filter {
	return newXY(sigma, sigma)
}

// newXY creates a filter with independent horizontal and vertical spread.
func newXY(sigmaX, sigmaY float64) *Filter {
	return &Filter{
		SigmaY:   sigmaY,
		SigmaX:   sigmaX,
		Truncate: DefaultTruncate,
		kernelY:  GaussianKernel(sigmaY, DefaultTruncate),
		kernelX:  GaussianKernel(sigmaX, DefaultTruncate),
	}
}

// RadiusX returns the horizontal kernel half-width in pixels.
func (f *Filter) RadiusX() int { return len(f.kernelX) / 2 }

// RadiusY returns the vertical kernel half-width in pixels.
func (f *Filter) RadiusY() int { return len(f.kernelY) / 2 }

// Apply returns a blurred copy of src. src is not modified.
func (f *Filter) Apply(src *ir.Plane) *ir.Plane {
	out := src.Clone()
	if src.Width == 0 || src.Height == 0 {
		return out
	}
	if f.SigmaY > minSigma {
		out = blurVertical(out, f.kernelY)
	}
	if f.SigmaX > minSigma {
		out = blurHorizontal(out, f.kernelX)
	}
	return out
}

// blurVertical correlates every column with kernel. Rows are accumulated
// whole so the inner loop walks contiguous memory.
func blurVertical(src *ir.Plane, kernel []float64) *ir.Plane {
	radius := len(kernel) / 2
	rows := reflectTable(src.Height, radius)
	dst := ir.NewPlane(src.Width, src.Height)
	acc := make([]float64, src.Width)

	for y := 0; y < src.Height; y++ {
		for x := range acc {
			acc[x] = 0
		}
		for k, w := range kernel {
			row := src.Row(rows[y+k])
			for x, v := range row {
				acc[x] += w * float64(v)
			}
		}
		out := dst.Row(y)
		for x, v := range acc {
			out[x] = float32(v)
		}
	}
	return dst
}

// blurHorizontal correlates every row with kernel.
func blurHorizontal(src *ir.Plane, kernel []float64) *ir.Plane {
	radius := len(kernel) / 2
	cols := reflectTable(src.Width, radius)
	dst := ir.NewPlane(src.Width, src.Height)

	for y := 0; y < src.Height; y++ {
		in := src.Row(y)
		out := dst.Row(y)
		for x := range out {
			var sum float64
			for k, w := range kernel {
				sum += w * float64(in[cols[x+k]])
			}
			out[x] = float32(sum)
		}
	}
	return dst
}
