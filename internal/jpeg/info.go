package jpeg

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidData indicates a malformed JPEG stream.
var ErrInvalidData = errors.New("jpeg: invalid data")

const (
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP2  = 0xE2
	markerAPP14 = 0xEE
)

// ImageInfo contains metadata about a JPEG file.
type ImageInfo struct {
	Width         int
	Height        int
	Precision     int // bits per sample
	NumComponents int
	ColorSpace    string
	Progressive   bool
	ICC           []byte // extracted ICC profile, nil if absent
}

// colorSpaceName guesses the encoded colour space from the component count
// and the Adobe APP14 transform flag (-1 when absent).
func colorSpaceName(components, adobeTransform int) string {
	switch components {
	case 1:
		return "Grayscale"
	case 3:
		if adobeTransform == 0 {
			return "RGB"
		}
		return "YCbCr"
	case 4:
		if adobeTransform == 2 {
			return "YCCK"
		}
		return "CMYK"
	default:
		return fmt.Sprintf("Components(%d)", components)
	}
}

// GetInfo reads JPEG metadata and extracts any ICC profile without decoding
// the entropy-coded data.
func GetInfo(data []byte) (*ImageInfo, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, fmt.Errorf("%w: missing SOI marker", ErrInvalidData)
	}

	info := &ImageInfo{}
	adobeTransform := -1
	sawFrame := false
	var app2 [][]byte

	pos := 2
	for pos < len(data) {
		if data[pos] != 0xFF {
			return nil, fmt.Errorf("%w: expected marker at offset %d", ErrInvalidData, pos)
		}
		// Fill bytes.
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			break
		}
		marker := data[pos]
		pos++

		if marker == markerEOI || marker == markerSOS {
			break
		}
		// Standalone markers carry no length.
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			continue
		}
		if pos+2 > len(data) {
			return nil, fmt.Errorf("%w: truncated segment length", ErrInvalidData)
		}
		length := int(binary.BigEndian.Uint16(data[pos:]))
		if length < 2 || pos+length > len(data) {
			return nil, fmt.Errorf("%w: segment 0x%02X length %d exceeds file", ErrInvalidData, marker, length)
		}
		payload := data[pos+2 : pos+length]
		pos += length

		switch {
		case marker == markerAPP2:
			app2 = append(app2, payload)
		case marker == markerAPP14:
			if len(payload) >= 12 && string(payload[:5]) == "Adobe" {
				adobeTransform = int(payload[11])
			}
		case isSOF(marker):
			if len(payload) < 6 {
				return nil, fmt.Errorf("%w: short SOF segment", ErrInvalidData)
			}
			info.Precision = int(payload[0])
			info.Height = int(binary.BigEndian.Uint16(payload[1:3]))
			info.Width = int(binary.BigEndian.Uint16(payload[3:5]))
			info.NumComponents = int(payload[5])
			info.Progressive = marker == 0xC2 || marker == 0xC6 || marker == 0xCA || marker == 0xCE
			sawFrame = true
		}
	}

	if !sawFrame {
		return nil, fmt.Errorf("%w: no SOF segment", ErrInvalidData)
	}
	info.ColorSpace = colorSpaceName(info.NumComponents, adobeTransform)

	icc, err := ExtractICC(app2)
	if err != nil {
		return nil, fmt.Errorf("extracting ICC: %w", err)
	}
	info.ICC = icc
	return info, nil
}

// isSOF reports whether marker starts a frame (SOF0-SOF15 minus DHT, JPG, DAC).
func isSOF(marker byte) bool {
	return marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC
}
