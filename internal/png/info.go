// Package png reads PNG header metadata and encodes ir.Image values as PNG
// with an exact colour type, bit depth and optional iCCP colour profile.
package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Signature is the 8-byte PNG file signature.
var Signature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// ErrInvalidData indicates a malformed PNG stream.
var ErrInvalidData = errors.New("png: invalid data")

// Colour types from the IHDR chunk.
const (
	ColorGray      = 0
	ColorRGB       = 2
	ColorPalette   = 3
	ColorGrayAlpha = 4
	ColorRGBA      = 6
)

// maxICCSize bounds the inflated iCCP payload.
const maxICCSize = 16 << 20

// Info contains metadata about a PNG file.
type Info struct {
	Width     int
	Height    int
	BitDepth  int
	ColorType int
	Interlace int
	ICCName   string
	ICC       []byte // inflated iCCP profile, nil if absent
}

// ColorTypeName returns a readable name for an IHDR colour type.
func ColorTypeName(ct int) string {
	switch ct {
	case ColorGray:
		return "Grayscale"
	case ColorRGB:
		return "RGB"
	case ColorPalette:
		return "Indexed"
	case ColorGrayAlpha:
		return "GrayscaleAlpha"
	case ColorRGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("ColorType(%d)", ct)
	}
}

// ReadInfo walks the chunk list up to the first IDAT and returns the IHDR
// fields and any embedded ICC profile.
func ReadInfo(data []byte) (*Info, error) {
	if len(data) < len(Signature) || !bytes.Equal(data[:len(Signature)], Signature) {
		return nil, fmt.Errorf("%w: bad signature", ErrInvalidData)
	}

	info := &Info{}
	sawHeader := false
	r := bytes.NewReader(data[len(Signature):])

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if sawHeader {
				return info, nil
			}
			return nil, fmt.Errorf("%w: missing IHDR", ErrInvalidData)
		}
		length := int(binary.BigEndian.Uint32(hdr[0:4]))
		chunkType := string(hdr[4:8])
		if length < 0 || length > r.Len() {
			return nil, fmt.Errorf("%w: chunk %q length %d exceeds file", ErrInvalidData, chunkType, length)
		}

		chunk := make([]byte, length)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("%w: truncated %q chunk", ErrInvalidData, chunkType)
		}
		// CRC is checked by the image decoder.
		if _, err := r.Seek(4, io.SeekCurrent); err != nil {
			return nil, err
		}

		switch chunkType {
		case "IHDR":
			if length < 13 {
				return nil, fmt.Errorf("%w: short IHDR", ErrInvalidData)
			}
			info.Width = int(binary.BigEndian.Uint32(chunk[0:4]))
			info.Height = int(binary.BigEndian.Uint32(chunk[4:8]))
			info.BitDepth = int(chunk[8])
			info.ColorType = int(chunk[9])
			info.Interlace = int(chunk[12])
			sawHeader = true
		case "iCCP":
			name, profile, err := parseICCP(chunk)
			if err != nil {
				return nil, err
			}
			info.ICCName = name
			info.ICC = profile
		case "IDAT", "IEND":
			if !sawHeader {
				return nil, fmt.Errorf("%w: missing IHDR", ErrInvalidData)
			}
			return info, nil
		}
	}
}

// parseICCP splits an iCCP chunk into its profile name and inflated profile.
func parseICCP(chunk []byte) (string, []byte, error) {
	nul := bytes.IndexByte(chunk, 0)
	if nul < 1 || nul > 79 || nul+2 > len(chunk) {
		return "", nil, fmt.Errorf("%w: bad iCCP profile name", ErrInvalidData)
	}
	if method := chunk[nul+1]; method != 0 {
		return "", nil, fmt.Errorf("%w: unknown iCCP compression method %d", ErrInvalidData, method)
	}

	zr, err := zlib.NewReader(bytes.NewReader(chunk[nul+2:]))
	if err != nil {
		return "", nil, fmt.Errorf("inflating iCCP: %w", err)
	}
	defer zr.Close()

	profile, err := io.ReadAll(io.LimitReader(zr, maxICCSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("inflating iCCP: %w", err)
	}
	if len(profile) > maxICCSize {
		return "", nil, fmt.Errorf("%w: iCCP profile exceeds %d bytes", ErrInvalidData, maxICCSize)
	}
	return string(chunk[:nul]), profile, nil
}
