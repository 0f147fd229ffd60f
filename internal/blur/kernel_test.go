package blur

import (
	"math"
	"testing"
)

func TestGaussianKernelZeroSigma(t *testing.T) {
	for _, sigma := range []float64{0, -5, 1e-16} {
		kernel := GaussianKernel(sigma, DefaultTruncate)
		if len(kernel) != 1 || kernel[0] != 1.0 {
			t.Errorf("GaussianKernel(%v) = %v, want [1]", sigma, kernel)
		}
	}
}

func TestGaussianKernelTinySigmaCollapses(t *testing.T) {
	// int(4*0.1 + 0.5) == 0
	kernel := GaussianKernel(0.1, DefaultTruncate)
	if len(kernel) != 1 {
		t.Errorf("GaussianKernel(0.1) len = %d, want 1", len(kernel))
	}
}

func TestGaussianKernelSize(t *testing.T) {
	tests := []struct {
		sigma    float64
		wantSize int
	}{
		{0.2, 3},    // int(0.8+0.5)=1
		{0.5, 5},    // int(2.5)=2
		{1.0, 9},    // int(4.5)=4
		{2.0, 17},   // int(8.5)=8
		{10.0, 81},  // int(40.5)=40
		{50.0, 401}, // int(200.5)=200
	}

	for _, tt := range tests {
		kernel := GaussianKernel(tt.sigma, DefaultTruncate)
		if len(kernel) != tt.wantSize {
			t.Errorf("GaussianKernel(%v) len = %d, want %d", tt.sigma, len(kernel), tt.wantSize)
		}
	}
}

func TestGaussianKernelNormalized(t *testing.T) {
	for _, sigma := range []float64{0.5, 1, 2, 3, 5, 10, 50} {
		var sum float64
		for _, v := range GaussianKernel(sigma, DefaultTruncate) {
			sum += v
		}
		if math.Abs(sum-1.0) > 1e-12 {
			t.Errorf("GaussianKernel(%v) sum = %v, want 1", sigma, sum)
		}
	}
}

func TestGaussianKernelSymmetricPeak(t *testing.T) {
	kernel := GaussianKernel(5, DefaultTruncate)
	n := len(kernel)
	center := n / 2

	for i := 0; i < n/2; i++ {
		if kernel[i] != kernel[n-1-i] {
			t.Errorf("kernel[%d] = %v != kernel[%d] = %v", i, kernel[i], n-1-i, kernel[n-1-i])
		}
		if kernel[i] >= kernel[center] {
			t.Errorf("kernel[%d] = %v not below peak %v", i, kernel[i], kernel[center])
		}
	}
}

func TestGaussianKernelValues(t *testing.T) {
	// sigma 0.5: radius 2, weights exp(-2x²) before normalisation.
	raw := []float64{math.Exp(-8), math.Exp(-2), 1, math.Exp(-2), math.Exp(-8)}
	var sum float64
	for _, v := range raw {
		sum += v
	}
	kernel := GaussianKernel(0.5, DefaultTruncate)
	for i, v := range raw {
		if want := v / sum; math.Abs(kernel[i]-want) > 1e-15 {
			t.Errorf("kernel[%d] = %v, want %v", i, kernel[i], want)
		}
	}
}

func TestReflect(t *testing.T) {
	tests := []struct {
		index, size, want int
	}{
		{0, 4, 0},
		{3, 4, 3},
		{-1, 4, 0},
		{-2, 4, 1},
		{-4, 4, 3},
		{-5, 4, 3},
		{4, 4, 3},
		{5, 4, 2},
		{7, 4, 0},
		{8, 4, 0},
		{9, 4, 1},
		{-3, 1, 0},
		{6, 1, 0},
	}

	for _, tt := range tests {
		if got := Reflect(tt.index, tt.size); got != tt.want {
			t.Errorf("Reflect(%d, %d) = %d, want %d", tt.index, tt.size, got, tt.want)
		}
	}
}
