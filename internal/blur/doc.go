// Package blur implements a separable Gaussian blur over float32 planes.
//
// The filter matches the conventions of the common numerical Gaussian
// filter routines:
//
//   - the kernel radius is int(truncate*sigma + 0.5) with truncate = 4,
//   - kernel weights are exp(-x²/(2σ²)) normalised to sum to 1,
//   - samples outside the plane are reflected about the edge, including the
//     edge sample itself (d c b a | a b c d | d c b a),
//   - an axis with sigma <= 1e-15 is left untouched.
//
// Rows are blurred first (axis 0, vertical), then columns (axis 1,
// horizontal). Accumulation happens in float64; each pass stores float32.
package blur
