package ir

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"strings"
)

// SampleKind is the numeric representation of one channel sample.
type SampleKind int

const (
	KindUnknown SampleKind = iota
	KindUint8
	KindUint16
)

// MaxValue returns the largest representable sample value. ok is false for
// kinds without a well-defined maximum.
func (k SampleKind) MaxValue() (v float32, ok bool) {
	switch k {
	case KindUint8:
		return 0xff, true
	case KindUint16:
		return 0xffff, true
	default:
		return 0, false
	}
}

// Bytes returns the storage size of one sample, or 0 for unknown kinds.
func (k SampleKind) Bytes() int {
	switch k {
	case KindUint8:
		return 1
	case KindUint16:
		return 2
	default:
		return 0
	}
}

func (k SampleKind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	default:
		return fmt.Sprintf("SampleKind(%d)", int(k))
	}
}

// Mode is the channel layout and colour-space tag of an image.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeL            // grayscale
	ModeLA           // grayscale + alpha
	ModeP            // palette indices
	ModeRGB
	ModeRGBA
	ModeCMYK
)

// Channels returns the number of samples per pixel.
func (m Mode) Channels() int {
	switch m {
	case ModeL, ModeP:
		return 1
	case ModeLA:
		return 2
	case ModeRGB:
		return 3
	case ModeRGBA, ModeCMYK:
		return 4
	default:
		return 0
	}
}

func (m Mode) String() string {
	switch m {
	case ModeL:
		return "L"
	case ModeLA:
		return "LA"
	case ModeP:
		return "P"
	case ModeRGB:
		return "RGB"
	case ModeRGBA:
		return "RGBA"
	case ModeCMYK:
		return "CMYK"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// HasAlpha reports whether the last channel is alpha.
func (m Mode) HasAlpha() bool {
	return m == ModeLA || m == ModeRGBA
}

// Image is the in-memory representation shared by the loader, the
// compositor and the writer. Pix holds interleaved samples, channel-last,
// row-major; 16-bit samples are stored big-endian.
type Image struct {
	Width   int
	Height  int
	Mode    Mode
	Kind    SampleKind
	Pix     []byte
	Palette color.Palette // ModeP only
	ICC     []byte        // embedded colour profile, nil if absent
}

// New allocates a zeroed image.
func New(width, height int, mode Mode, kind SampleKind) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Mode:   mode,
		Kind:   kind,
		Pix:    make([]byte, width*height*mode.Channels()*kind.Bytes()),
	}
}

// Channels returns the number of samples per pixel.
func (m *Image) Channels() int {
	return m.Mode.Channels()
}

// Shape returns [height, width] for single-channel images and
// [height, width, channels] otherwise.
func (m *Image) Shape() []int {
	if c := m.Channels(); c != 1 {
		return []int{m.Height, m.Width, c}
	}
	return []int{m.Height, m.Width}
}

// ShapeString renders Shape as a tuple, e.g. "(480, 640, 3)".
func (m *Image) ShapeString() string {
	shape := m.Shape()
	parts := make([]string, len(shape))
	for i, v := range shape {
		parts[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ModeName returns the mode tag including bit depth, e.g. "RGB" or "I;16".
func (m *Image) ModeName() string {
	if m.Kind != KindUint16 {
		return m.Mode.String()
	}
	if m.Mode == ModeL {
		return "I;16"
	}
	return m.Mode.String() + ";16"
}

// Len returns the number of samples (width * height * channels).
func (m *Image) Len() int {
	return m.Width * m.Height * m.Channels()
}

// Sample returns sample i as an unsigned integer.
func (m *Image) Sample(i int) uint32 {
	if m.Kind == KindUint16 {
		return uint32(binary.BigEndian.Uint16(m.Pix[2*i:]))
	}
	return uint32(m.Pix[i])
}

// SetSample stores v as sample i. v must fit the sample kind.
func (m *Image) SetSample(i int, v uint32) {
	if m.Kind == KindUint16 {
		binary.BigEndian.PutUint16(m.Pix[2*i:], uint16(v))
		return
	}
	m.Pix[i] = uint8(v)
}

// Validate checks that the dimensions, mode, kind and buffer size agree.
func (m *Image) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", m.Width, m.Height)
	}
	if m.Channels() == 0 {
		return fmt.Errorf("unsupported mode %v", m.Mode)
	}
	if m.Kind.Bytes() == 0 {
		return fmt.Errorf("unsupported sample kind %v", m.Kind)
	}
	if want := m.Len() * m.Kind.Bytes(); len(m.Pix) != want {
		return fmt.Errorf("expected %d sample bytes for %dx%d %s, got %d",
			want, m.Width, m.Height, m.ModeName(), len(m.Pix))
	}
	return nil
}
