package png

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/himbeles/texturize/internal/ir"
)

func testImage(w, h int, mode ir.Mode, kind ir.SampleKind) *ir.Image {
	img := ir.New(w, h, mode, kind)
	for i := range img.Pix {
		img.Pix[i] = byte(i*31 + 7)
	}
	if mode == ir.ModeP {
		img.Palette = color.Palette{}
		for i := 0; i < 256; i++ {
			img.Palette = append(img.Palette, color.NRGBA{uint8(i), uint8(255 - i), 0x40, 0xff})
		}
	}
	return img
}

func encode(t *testing.T, img *ir.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, img, EncoderOptions{}); err != nil {
		t.Fatalf("Encode %s: %v", img.ModeName(), err)
	}
	return buf.Bytes()
}

func TestEncodeColorTypes(t *testing.T) {
	tests := []struct {
		mode      ir.Mode
		kind      ir.SampleKind
		colorType int
		bitDepth  int
		decoded   string
	}{
		{ir.ModeL, ir.KindUint8, ColorGray, 8, "*image.Gray"},
		{ir.ModeL, ir.KindUint16, ColorGray, 16, "*image.Gray16"},
		{ir.ModeLA, ir.KindUint8, ColorGrayAlpha, 8, "*image.NRGBA"},
		{ir.ModeLA, ir.KindUint16, ColorGrayAlpha, 16, "*image.NRGBA64"},
		{ir.ModeRGB, ir.KindUint8, ColorRGB, 8, "*image.RGBA"},
		{ir.ModeRGB, ir.KindUint16, ColorRGB, 16, "*image.RGBA64"},
		{ir.ModeRGBA, ir.KindUint8, ColorRGBA, 8, "*image.NRGBA"},
		{ir.ModeRGBA, ir.KindUint16, ColorRGBA, 16, "*image.NRGBA64"},
		{ir.ModeP, ir.KindUint8, ColorPalette, 8, "*image.Paletted"},
	}

	for _, tt := range tests {
		src := testImage(9, 5, tt.mode, tt.kind)
		t.Run(src.ModeName(), func(t *testing.T) {
			data := encode(t, src)

			info, err := ReadInfo(data)
			if err != nil {
				t.Fatalf("ReadInfo: %v", err)
			}
			if info.ColorType != tt.colorType || info.BitDepth != tt.bitDepth {
				t.Errorf("IHDR = %s/%d, want %s/%d",
					ColorTypeName(info.ColorType), info.BitDepth, ColorTypeName(tt.colorType), tt.bitDepth)
			}
			if info.Width != 9 || info.Height != 5 {
				t.Errorf("dimensions = %dx%d, want 9x5", info.Width, info.Height)
			}
			if info.ICC != nil {
				t.Error("unexpected ICC profile")
			}

			m, err := stdpng.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("image/png decode: %v", err)
			}
			if got := typeName(m); got != tt.decoded {
				t.Errorf("decoded type = %s, want %s", got, tt.decoded)
			}
		})
	}
}

func typeName(m image.Image) string {
	switch m.(type) {
	case *image.Gray:
		return "*image.Gray"
	case *image.Gray16:
		return "*image.Gray16"
	case *image.NRGBA:
		return "*image.NRGBA"
	case *image.NRGBA64:
		return "*image.NRGBA64"
	case *image.RGBA:
		return "*image.RGBA"
	case *image.RGBA64:
		return "*image.RGBA64"
	case *image.Paletted:
		return "*image.Paletted"
	default:
		return "other"
	}
}

func TestEncodeSamplesSurvive(t *testing.T) {
	src := testImage(17, 6, ir.ModeL, ir.KindUint16)
	m, err := stdpng.Decode(bytes.NewReader(encode(t, src)))
	if err != nil {
		t.Fatal(err)
	}
	g, ok := m.(*image.Gray16)
	if !ok {
		t.Fatalf("decoded %T, want *image.Gray16", m)
	}
	if diff := cmp.Diff(src.Pix, g.Pix); diff != "" {
		t.Errorf("samples differ (-want +got):\n%s", diff)
	}

	rgb := testImage(5, 5, ir.ModeRGB, ir.KindUint8)
	m, err = stdpng.Decode(bytes.NewReader(encode(t, rgb)))
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			i := (y*5 + x) * 3
			want := color.RGBA{rgb.Pix[i], rgb.Pix[i+1], rgb.Pix[i+2], 0xff}
			if got := m.(*image.RGBA).RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestEncodeICC(t *testing.T) {
	src := testImage(4, 4, ir.ModeRGB, ir.KindUint8)
	src.ICC = bytes.Repeat([]byte("fake icc profile "), 40)

	info, err := ReadInfo(encode(t, src))
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if !bytes.Equal(info.ICC, src.ICC) {
		t.Errorf("ICC differs: got %d bytes, want %d", len(info.ICC), len(src.ICC))
	}
	if info.ICCName != DefaultICCName {
		t.Errorf("ICC name = %q, want %q", info.ICCName, DefaultICCName)
	}
}

func TestEncodePaletteTransparency(t *testing.T) {
	src := testImage(3, 3, ir.ModeP, ir.KindUint8)
	for i := range src.Pix {
		src.Pix[i] = byte(i % 3)
	}
	src.Palette = color.Palette{
		color.NRGBA{255, 0, 0, 255},
		color.NRGBA{0, 255, 0, 128},
		color.NRGBA{0, 0, 255, 255},
	}

	m, err := stdpng.Decode(bytes.NewReader(encode(t, src)))
	if err != nil {
		t.Fatal(err)
	}
	p := m.(*image.Paletted)
	if diff := cmp.Diff(src.Pix, p.Pix); diff != "" {
		t.Errorf("indices differ (-want +got):\n%s", diff)
	}
	if got := color.NRGBAModel.Convert(p.Palette[1]).(color.NRGBA); got.A != 128 {
		t.Errorf("palette[1] alpha = %d, want 128", got.A)
	}
}

func TestEncodeRejects(t *testing.T) {
	tests := []struct {
		name string
		img  *ir.Image
	}{
		{"cmyk", testImage(2, 2, ir.ModeCMYK, ir.KindUint8)},
		{"16-bit palette", &ir.Image{Width: 1, Height: 1, Mode: ir.ModeP, Kind: ir.KindUint16, Pix: make([]byte, 2)}},
		{"empty palette", &ir.Image{Width: 1, Height: 1, Mode: ir.ModeP, Kind: ir.KindUint8, Pix: make([]byte, 1)}},
		{"short buffer", &ir.Image{Width: 2, Height: 2, Mode: ir.ModeL, Kind: ir.KindUint8, Pix: make([]byte, 3)}},
	}
	for _, tt := range tests {
		if err := Encode(&bytes.Buffer{}, tt.img, EncoderOptions{}); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestReadInfoInvalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("GIF89a"), Signature} {
		if _, err := ReadInfo(data); !errors.Is(err, ErrInvalidData) {
			t.Errorf("ReadInfo(%q) err = %v, want ErrInvalidData", data, err)
		}
	}
}

func TestReadInfoStdlibEncoded(t *testing.T) {
	m := image.NewGray16(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	info, err := ReadInfo(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	want := &Info{Width: 3, Height: 2, BitDepth: 16, ColorType: ColorGray}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("info mismatch (-want +got):\n%s", diff)
	}
}
