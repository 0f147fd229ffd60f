package png

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image/color"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/himbeles/texturize/internal/ir"
)

// DefaultICCName is written as the iCCP profile name.
const DefaultICCName = "ICC Profile"

// filter types
const (
	ftNone = iota
	ftSub
	ftUp
	ftAverage
	ftPaeth
	nFilter
)

// EncoderOptions controls PNG encoding.
type EncoderOptions struct {
	ICCName string // iCCP profile name, DefaultICCName if empty
}

// ColorTypeFor returns the IHDR colour type and bit depth used for img.
func ColorTypeFor(img *ir.Image) (colorType, bitDepth int, err error) {
	switch img.Kind {
	case ir.KindUint8:
		bitDepth = 8
	case ir.KindUint16:
		bitDepth = 16
	default:
		return 0, 0, fmt.Errorf("png: unsupported sample kind %v", img.Kind)
	}

	switch img.Mode {
	case ir.ModeL:
		colorType = ColorGray
	case ir.ModeLA:
		colorType = ColorGrayAlpha
	case ir.ModeRGB:
		colorType = ColorRGB
	case ir.ModeRGBA:
		colorType = ColorRGBA
	case ir.ModeP:
		if bitDepth != 8 {
			return 0, 0, fmt.Errorf("png: palette images must be 8-bit, got %s", img.ModeName())
		}
		colorType = ColorPalette
	default:
		return 0, 0, fmt.Errorf("png: cannot encode mode %s", img.ModeName())
	}
	return colorType, bitDepth, nil
}

// Encode writes img as a PNG stream. The ICC profile, if any, is embedded
// unmodified in an iCCP chunk.
func Encode(w io.Writer, img *ir.Image, opts EncoderOptions) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("png: %w", err)
	}
	colorType, bitDepth, err := ColorTypeFor(img)
	if err != nil {
		return err
	}
	if opts.ICCName == "" {
		opts.ICCName = DefaultICCName
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(Signature); err != nil {
		return err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(img.Width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(img.Height))
	ihdr[8] = byte(bitDepth)
	ihdr[9] = byte(colorType)
	if err := writeChunk(bw, "IHDR", ihdr[:]); err != nil {
		return err
	}

	if len(img.ICC) > 0 {
		chunk, err := iccpChunk(opts.ICCName, img.ICC)
		if err != nil {
			return err
		}
		if err := writeChunk(bw, "iCCP", chunk); err != nil {
			return err
		}
	}

	if colorType == ColorPalette {
		plte, trns, err := paletteChunks(img.Palette)
		if err != nil {
			return err
		}
		if err := writeChunk(bw, "PLTE", plte); err != nil {
			return err
		}
		if trns != nil {
			if err := writeChunk(bw, "tRNS", trns); err != nil {
				return err
			}
		}
	}

	idat, err := imageData(img)
	if err != nil {
		return err
	}
	if err := writeChunk(bw, "IDAT", idat); err != nil {
		return err
	}
	if err := writeChunk(bw, "IEND", nil); err != nil {
		return err
	}
	return bw.Flush()
}

func writeChunk(w io.Writer, name string, data []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(data)))
	copy(hdr[4:8], name)

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:8])
	crc.Write(data)
	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc.Sum32())

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write(footer[:])
	return err
}

func iccpChunk(name string, profile []byte) ([]byte, error) {
	if len(name) == 0 || len(name) > 79 {
		return nil, fmt.Errorf("png: iCCP profile name must be 1-79 bytes, got %d", len(name))
	}
	var buf bytes.Buffer
	buf.WriteString(name)
	buf.WriteByte(0) // terminator
	buf.WriteByte(0) // zlib
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(profile); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// paletteChunks builds PLTE and, when any entry is translucent, tRNS.
func paletteChunks(p color.Palette) (plte, trns []byte, err error) {
	if len(p) == 0 || len(p) > 256 {
		return nil, nil, fmt.Errorf("png: palette must hold 1-256 colours, got %d", len(p))
	}
	plte = make([]byte, 0, 3*len(p))
	alpha := make([]byte, len(p))
	last := -1
	for i, c := range p {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		plte = append(plte, n.R, n.G, n.B)
		alpha[i] = n.A
		if n.A != 0xff {
			last = i
		}
	}
	if last >= 0 {
		trns = alpha[:last+1]
	}
	return plte, trns, nil
}

// imageData filters every scanline and deflates the result.
func imageData(img *ir.Image) ([]byte, error) {
	bpp := img.Channels() * img.Kind.Bytes()
	stride := img.Width * bpp

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}

	prev := make([]byte, stride)
	var candidates [nFilter][]byte
	for f := range candidates {
		candidates[f] = make([]byte, 1+stride)
		candidates[f][0] = byte(f)
	}

	for y := 0; y < img.Height; y++ {
		cur := img.Pix[y*stride : (y+1)*stride]
		best := filterRow(candidates[:], cur, prev, bpp)
		if _, err := zw.Write(best); err != nil {
			return nil, err
		}
		prev = cur
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// filterRow fills every candidate row and returns the one with the smallest
// sum of absolute signed residuals.
func filterRow(out [][]byte, cur, prev []byte, bpp int) []byte {
	n := len(cur)
	copy(out[ftNone][1:], cur)

	sub, up, avg, paeth := out[ftSub][1:], out[ftUp][1:], out[ftAverage][1:], out[ftPaeth][1:]
	for i := 0; i < n; i++ {
		var a, c byte
		if i >= bpp {
			a = cur[i-bpp]
			c = prev[i-bpp]
		}
		b := prev[i]
		sub[i] = cur[i] - a
		up[i] = cur[i] - b
		avg[i] = cur[i] - byte((int(a)+int(b))/2)
		paeth[i] = cur[i] - paethPredictor(a, b, c)
	}

	best, bestSum := out[ftNone], -1
	for _, row := range out {
		sum := 0
		for _, v := range row[1:] {
			s := int(int8(v))
			if s < 0 {
				s = -s
			}
			sum += s
		}
		if bestSum < 0 || sum < bestSum {
			best, bestSum = row, sum
		}
	}
	return best
}

func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
