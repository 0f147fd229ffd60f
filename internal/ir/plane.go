package ir

// Plane is a single-channel float32 image used as working memory by the
// blur and the compositor.
type Plane struct {
	Width  int
	Height int
	Pix    []float32 // len = Width * Height, row-major
}

// NewPlane allocates a zeroed plane.
func NewPlane(width, height int) *Plane {
	return &Plane{Width: width, Height: height, Pix: make([]float32, width*height)}
}

// Row returns the samples of row y.
func (p *Plane) Row(y int) []float32 {
	return p.Pix[y*p.Width : (y+1)*p.Width]
}

// Clone returns a deep copy of p.
func (p *Plane) Clone() *Plane {
	c := &Plane{Width: p.Width, Height: p.Height, Pix: make([]float32, len(p.Pix))}
	copy(c.Pix, p.Pix)
	return c
}
