// Package webp scans the RIFF container of a WebP file for the ICCP chunk.
package webp

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidData indicates a malformed RIFF container.
var ErrInvalidData = errors.New("webp: invalid data")

// Info holds the container-level metadata of interest.
type Info struct {
	Extended bool   // VP8X header present
	HasAlpha bool   // VP8X alpha flag
	ICC      []byte // nil if absent
}

// ReadInfo walks the RIFF chunks of a WebP file.
func ReadInfo(data []byte) (*Info, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, fmt.Errorf("%w: not a RIFF/WEBP file", ErrInvalidData)
	}
	end := min(len(data), 8+int(binary.LittleEndian.Uint32(data[4:8])))

	info := &Info{}
	pos := 12
	for pos+8 <= end {
		fourCC := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > end {
			return nil, fmt.Errorf("%w: chunk %q size %d exceeds file", ErrInvalidData, fourCC, size)
		}
		payload := data[body : body+size]

		switch fourCC {
		case "VP8X":
			if size < 1 {
				return nil, fmt.Errorf("%w: short VP8X chunk", ErrInvalidData)
			}
			info.Extended = true
			info.HasAlpha = payload[0]&0x10 != 0
		case "ICCP":
			info.ICC = append([]byte(nil), payload...)
		}

		// Chunks are padded to even sizes.
		pos = body + size + size&1
	}
	return info, nil
}
