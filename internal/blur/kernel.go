package blur

import "math"

// DefaultTruncate is the kernel half-width in standard deviations.
const DefaultTruncate = 4.0

// minSigma is the spread below which an axis is not filtered at all.
const minSigma = 1e-15

// Radius returns the kernel half-width in samples for sigma.
// For sigma <= 1e-15 it returns 0.
func Radius(sigma, truncate float64) int {
	if sigma <= minSigma {
		return 0
	}
	return int(truncate*sigma + 0.5)
}

// GaussianKernel generates a 1D Gaussian kernel of size 2*Radius+1.
// The kernel is normalized so all values sum to 1.0.
//
// For sigma <= 1e-15, or when the radius rounds down to 0, it returns the
// identity kernel [1.0].
func GaussianKernel(sigma, truncate float64) []float64 {
	radius := Radius(sigma, truncate)
	if radius == 0 {
		return []float64{1.0}
	}

	size := 2*radius + 1
	kernel := make([]float64, size)

	// G(x) = exp(-x²/(2σ²)); the 1/(σ√(2π)) constant cancels on normalisation.
	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for i := range kernel {
		x := float64(i - radius)
		v := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// Reflect maps an out-of-range index into [0, size) by mirroring about the
// edges, repeating the edge sample. Indices further than one period away
// keep reflecting.
func Reflect(index, size int) int {
	if size <= 1 {
		return 0
	}
	period := 2 * size
	index %= period
	if index < 0 {
		index += period
	}
	if index >= size {
		index = period - index - 1
	}
	return index
}

// reflectTable returns, for j in [0, size+2*radius), the source index of
// padded position j, i.e. Reflect(j-radius, size).
func reflectTable(size, radius int) []int {
	idx := make([]int, size+2*radius)
	for j := range idx {
		idx[j] = Reflect(j-radius, size)
	}
	return idx
}
