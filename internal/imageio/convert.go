package imageio

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/himbeles/texturize/internal/ir"
)

// straight returns the non-premultiplied R, G, B, A samples of the pixel at
// (x, y) in the image's native bit depth.
type straight func(x, y int) [4]uint32

// fromImage converts a decoded image to an ir.Image. mode is the channel
// layout recorded in the file header, or ir.ModeUnknown to infer it from the
// decoded type.
func fromImage(m image.Image, mode ir.Mode) (*ir.Image, error) {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image %dx%d", w, h)
	}

	var (
		kind ir.SampleKind
		at   straight
	)
	switch src := m.(type) {
	case *image.Gray:
		return copyRows(src.Pix, src.Stride, b.Min, src.Rect.Min, w, h, ir.ModeL, ir.KindUint8), nil
	case *image.Gray16:
		return copyRows(src.Pix, src.Stride, b.Min, src.Rect.Min, w, h, ir.ModeL, ir.KindUint16), nil
	case *image.CMYK:
		return copyRows(src.Pix, src.Stride, b.Min, src.Rect.Min, w, h, ir.ModeCMYK, ir.KindUint8), nil
	case *image.Paletted:
		img := copyRows(src.Pix, src.Stride, b.Min, src.Rect.Min, w, h, ir.ModeP, ir.KindUint8)
		img.Palette = append(color.Palette(nil), src.Palette...)
		return img, nil

	case *image.NRGBA:
		kind = ir.KindUint8
		at = func(x, y int) [4]uint32 {
			c := src.NRGBAAt(x, y)
			return [4]uint32{uint32(c.R), uint32(c.G), uint32(c.B), uint32(c.A)}
		}
		if mode == ir.ModeUnknown {
			mode = ir.ModeRGBA
		}
	case *image.NRGBA64:
		kind = ir.KindUint16
		at = func(x, y int) [4]uint32 {
			c := src.NRGBA64At(x, y)
			return [4]uint32{uint32(c.R), uint32(c.G), uint32(c.B), uint32(c.A)}
		}
		if mode == ir.ModeUnknown {
			mode = ir.ModeRGBA
		}
	case *image.RGBA:
		kind = ir.KindUint8
		at = func(x, y int) [4]uint32 {
			c := src.RGBAAt(x, y)
			if c.A != 0xff {
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				return [4]uint32{uint32(n.R), uint32(n.G), uint32(n.B), uint32(n.A)}
			}
			return [4]uint32{uint32(c.R), uint32(c.G), uint32(c.B), 0xff}
		}
		if mode == ir.ModeUnknown {
			mode = opaqueMode(src.Opaque())
		}
	case *image.RGBA64:
		kind = ir.KindUint16
		at = func(x, y int) [4]uint32 {
			c := src.RGBA64At(x, y)
			if c.A != 0xffff {
				n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
				return [4]uint32{uint32(n.R), uint32(n.G), uint32(n.B), uint32(n.A)}
			}
			return [4]uint32{uint32(c.R), uint32(c.G), uint32(c.B), 0xffff}
		}
		if mode == ir.ModeUnknown {
			mode = opaqueMode(src.Opaque())
		}
	case *image.YCbCr:
		kind = ir.KindUint8
		at = func(x, y int) [4]uint32 {
			c := src.YCbCrAt(x, y)
			r, g, bl := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
			return [4]uint32{uint32(r), uint32(g), uint32(bl), 0xff}
		}
		mode = ir.ModeRGB
	case *image.NYCbCrA:
		kind = ir.KindUint8
		at = func(x, y int) [4]uint32 {
			c := src.NYCbCrAAt(x, y)
			r, g, bl := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
			return [4]uint32{uint32(r), uint32(g), uint32(bl), uint32(c.A)}
		}
		mode = ir.ModeRGBA
	default:
		return nil, fmt.Errorf("unsupported color model %T", m)
	}

	if mode == ir.ModeP || mode == ir.ModeCMYK || mode == ir.ModeUnknown {
		return nil, fmt.Errorf("decoded %T does not match header mode %v", m, mode)
	}

	img := ir.New(w, h, mode, kind)
	channels := mode.Channels()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := at(x, y)
			for _, c := range channelOrder(mode) {
				img.SetSample(i, px[c])
				i++
			}
		}
	}
	if i != w*h*channels {
		return nil, fmt.Errorf("converted %d samples, expected %d", i, w*h*channels)
	}
	return img, nil
}

func opaqueMode(opaque bool) ir.Mode {
	if opaque {
		return ir.ModeRGB
	}
	return ir.ModeRGBA
}

// channelOrder maps the mode's channels onto indices of an R, G, B, A pixel.
func channelOrder(mode ir.Mode) []int {
	switch mode {
	case ir.ModeL:
		return []int{0}
	case ir.ModeLA:
		return []int{0, 3}
	case ir.ModeRGB:
		return []int{0, 1, 2}
	default:
		return []int{0, 1, 2, 3}
	}
}

// copyRows copies w*h pixels of a packed image whose layout already matches
// the target mode.
func copyRows(pix []byte, stride int, from, origin image.Point, w, h int, mode ir.Mode, kind ir.SampleKind) *ir.Image {
	img := ir.New(w, h, mode, kind)
	rowBytes := w * mode.Channels() * kind.Bytes()
	pixBytes := mode.Channels() * kind.Bytes()
	for y := 0; y < h; y++ {
		start := (from.Y-origin.Y+y)*stride + (from.X-origin.X)*pixBytes
		copy(img.Pix[y*rowBytes:(y+1)*rowBytes], pix[start:start+rowBytes])
	}
	return img
}

// toImage converts img to the Go image type the stdlib and x/image
// encoders map onto the same mode and bit depth.
func toImage(img *ir.Image) (image.Image, error) {
	r := image.Rect(0, 0, img.Width, img.Height)
	switch {
	case img.Mode == ir.ModeL && img.Kind == ir.KindUint8:
		m := image.NewGray(r)
		copy(m.Pix, img.Pix)
		return m, nil
	case img.Mode == ir.ModeL && img.Kind == ir.KindUint16:
		m := image.NewGray16(r)
		copy(m.Pix, img.Pix)
		return m, nil
	case img.Mode == ir.ModeP && img.Kind == ir.KindUint8:
		m := image.NewPaletted(r, paletteCovering(img))
		copy(m.Pix, img.Pix)
		return m, nil
	case img.Mode == ir.ModeRGB && img.Kind == ir.KindUint8:
		m := image.NewRGBA(r)
		for i, j := 0, 0; i < len(img.Pix); i, j = i+3, j+4 {
			copy(m.Pix[j:j+3], img.Pix[i:i+3])
			m.Pix[j+3] = 0xff
		}
		return m, nil
	case img.Mode == ir.ModeRGB && img.Kind == ir.KindUint16:
		m := image.NewRGBA64(r)
		for i, j := 0, 0; i < len(img.Pix); i, j = i+6, j+8 {
			copy(m.Pix[j:j+6], img.Pix[i:i+6])
			binary.BigEndian.PutUint16(m.Pix[j+6:], 0xffff)
		}
		return m, nil
	case img.Mode == ir.ModeRGBA && img.Kind == ir.KindUint8:
		m := image.NewNRGBA(r)
		copy(m.Pix, img.Pix)
		return m, nil
	case img.Mode == ir.ModeRGBA && img.Kind == ir.KindUint16:
		m := image.NewNRGBA64(r)
		copy(m.Pix, img.Pix)
		return m, nil
	case img.Mode == ir.ModeCMYK && img.Kind == ir.KindUint8:
		m := image.NewCMYK(r)
		copy(m.Pix, img.Pix)
		return m, nil
	default:
		return nil, fmt.Errorf("%w: no image type for %s", ErrUnsupportedMode, img.ModeName())
	}
}

// paletteCovering returns the image palette, padded with opaque black so
// every index in the image is valid.
func paletteCovering(img *ir.Image) color.Palette {
	maxIndex := 0
	for _, v := range img.Pix {
		maxIndex = max(maxIndex, int(v))
	}
	p := append(color.Palette(nil), img.Palette...)
	for len(p) <= maxIndex {
		p = append(p, color.NRGBA{A: 0xff})
	}
	return p
}
