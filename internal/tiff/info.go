// Package tiff reads the first IFD of a TIFF file for the tags the image
// decoder does not expose: the embedded ICC profile and the sample layout.
package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidData indicates a malformed TIFF header or IFD.
var ErrInvalidData = errors.New("tiff: invalid data")

const (
	tagPhotometric     = 262
	tagSamplesPerPixel = 277
	tagExtraSamples    = 338
	tagICCProfile      = 34675
)

const (
	typeByte      = 1
	typeShort     = 3
	typeLong      = 4
	typeUndefined = 7
)

// Info holds the IFD0 fields of interest.
type Info struct {
	ByteOrder       binary.ByteOrder
	Photometric     int
	SamplesPerPixel int
	ExtraSamples    int    // number of extra (alpha) samples
	ICC             []byte // nil if absent
}

// ReadInfo parses the TIFF header and IFD0.
func ReadInfo(data []byte) (*Info, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: short header", ErrInvalidData)
	}
	var order binary.ByteOrder
	switch string(data[0:4]) {
	case "II*\x00":
		order = binary.LittleEndian
	case "MM\x00*":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad byte order mark", ErrInvalidData)
	}

	off := int(order.Uint32(data[4:8]))
	if off < 8 || off+2 > len(data) {
		return nil, fmt.Errorf("%w: IFD offset %d out of range", ErrInvalidData, off)
	}
	n := int(order.Uint16(data[off:]))
	if off+2+12*n > len(data) {
		return nil, fmt.Errorf("%w: IFD with %d entries exceeds file", ErrInvalidData, n)
	}

	info := &Info{ByteOrder: order, SamplesPerPixel: 1}
	for i := 0; i < n; i++ {
		e := data[off+2+12*i : off+14+12*i]
		tag := order.Uint16(e[0:2])
		typ := order.Uint16(e[2:4])
		count := int(order.Uint32(e[4:8]))

		switch tag {
		case tagPhotometric, tagSamplesPerPixel:
			v, err := scalar(e, order, typ)
			if err != nil {
				return nil, fmt.Errorf("tag %d: %w", tag, err)
			}
			if tag == tagPhotometric {
				info.Photometric = v
			} else {
				info.SamplesPerPixel = v
			}
		case tagExtraSamples:
			info.ExtraSamples = count
		case tagICCProfile:
			if typ != typeUndefined && typ != typeByte {
				return nil, fmt.Errorf("%w: ICC tag has type %d", ErrInvalidData, typ)
			}
			raw, err := value(data, e, order, count)
			if err != nil {
				return nil, fmt.Errorf("ICC tag: %w", err)
			}
			info.ICC = append([]byte(nil), raw...)
		}
	}
	return info, nil
}

// scalar returns the first SHORT or LONG value of an entry.
func scalar(entry []byte, order binary.ByteOrder, typ uint16) (int, error) {
	switch typ {
	case typeShort:
		return int(order.Uint16(entry[8:10])), nil
	case typeLong:
		return int(order.Uint32(entry[8:12])), nil
	default:
		return 0, fmt.Errorf("%w: unexpected field type %d", ErrInvalidData, typ)
	}
}

// value returns the byte payload of a BYTE/UNDEFINED entry with count items.
func value(data, entry []byte, order binary.ByteOrder, count int) ([]byte, error) {
	if count <= 4 {
		return entry[8 : 8+count], nil
	}
	off := int(order.Uint32(entry[8:12]))
	if off < 0 || off+count > len(data) {
		return nil, fmt.Errorf("%w: value at %d+%d exceeds file", ErrInvalidData, off, count)
	}
	return data[off : off+count], nil
}
