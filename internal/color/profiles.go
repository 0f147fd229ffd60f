// Package color inspects ICC colour profiles. Profiles are otherwise
// treated as opaque bytes and passed through unmodified.
package color

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/himbeles/texturize/internal/ir"
)

const (
	headerSize     = 128
	tagEntrySize   = 12
	maxProfileSize = 16 * 1024 * 1024 // 16 MB
	acspMagic      = 0x61637370       // 'acsp'
)

// ProfileInfo contains metadata parsed from an ICC profile header and its
// description tag.
type ProfileInfo struct {
	Size        uint32
	CMM         string
	Version     string
	Class       string // "mntr", "prtr", "scnr", etc.
	ColorSpace  string // "RGB ", "CMYK", "GRAY", etc.
	PCS         string // "XYZ ", "Lab "
	Intent      uint32
	Created     time.Time
	Description string // empty when the profile has no readable desc tag
}

// ParseProfileInfo reads ICC header metadata from raw profile bytes. A
// malformed tag table is tolerated; only the header must be valid.
func ParseProfileInfo(data []byte) (*ProfileInfo, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("ICC profile too short (%d bytes, header is %d)", len(data), headerSize)
	}
	if len(data) > maxProfileSize {
		return nil, fmt.Errorf("ICC profile too large (%d bytes, max %d)", len(data), maxProfileSize)
	}
	if sig := binary.BigEndian.Uint32(data[36:40]); sig != acspMagic {
		return nil, fmt.Errorf("invalid ICC signature 0x%08x", sig)
	}

	pi := &ProfileInfo{
		Size:       binary.BigEndian.Uint32(data[0:4]),
		CMM:        strings.TrimRight(string(data[4:8]), "\x00 "),
		Version:    fmt.Sprintf("%d.%d.%d", data[8], data[9]>>4, data[9]&0x0f),
		Class:      string(data[12:16]),
		ColorSpace: string(data[16:20]),
		PCS:        string(data[20:24]),
		Intent:     binary.BigEndian.Uint32(data[64:68]),
		Created:    dateTime(data[24:36]),
	}
	if desc, err := description(data); err == nil {
		pi.Description = desc
	}
	return pi, nil
}

// MatchesMode reports whether the profile colour space fits the image
// mode. Palette images are checked against RGB.
func (pi *ProfileInfo) MatchesMode(mode ir.Mode) bool {
	switch pi.ColorSpace {
	case "GRAY":
		return mode == ir.ModeL || mode == ir.ModeLA
	case "RGB ":
		return mode == ir.ModeRGB || mode == ir.ModeRGBA || mode == ir.ModeP
	case "CMYK":
		return mode == ir.ModeCMYK
	default:
		return false
	}
}

// dateTime decodes an ICC dateTimeNumber. A zero or invalid field yields
// the zero time.
func dateTime(b []byte) time.Time {
	var f [6]int
	for i := range f {
		f[i] = int(binary.BigEndian.Uint16(b[2*i:]))
	}
	if f[0] == 0 || f[1] < 1 || f[1] > 12 || f[2] < 1 || f[2] > 31 {
		return time.Time{}
	}
	return time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], 0, time.UTC)
}

var errNoDescription = errors.New("no profile description")

// description returns the text of the 'desc' tag, which is a
// textDescriptionType in v2 profiles and multiLocalizedUnicodeType in v4.
func description(data []byte) (string, error) {
	if len(data) < headerSize+4 {
		return "", errNoDescription
	}
	count := int(binary.BigEndian.Uint32(data[headerSize:]))
	table := data[headerSize+4:]
	if count*tagEntrySize > len(table) {
		return "", fmt.Errorf("tag table of %d entries exceeds profile", count)
	}

	for i := 0; i < count; i++ {
		e := table[i*tagEntrySize:]
		if string(e[0:4]) != "desc" {
			continue
		}
		off := int(binary.BigEndian.Uint32(e[4:8]))
		size := int(binary.BigEndian.Uint32(e[8:12]))
		if off < 0 || size < 12 || off > len(data)-size {
			return "", fmt.Errorf("desc tag out of range")
		}
		return decodeText(data[off : off+size])
	}
	return "", errNoDescription
}

func decodeText(tag []byte) (string, error) {
	switch string(tag[0:4]) {
	case "desc":
		n := int(binary.BigEndian.Uint32(tag[8:12]))
		if n > len(tag)-12 {
			return "", fmt.Errorf("desc text length %d exceeds tag", n)
		}
		return strings.TrimRight(string(tag[12:12+n]), "\x00"), nil
	case "mluc":
		if len(tag) < 16 {
			return "", fmt.Errorf("short mluc tag")
		}
		records := int(binary.BigEndian.Uint32(tag[8:12]))
		recSize := int(binary.BigEndian.Uint32(tag[12:16]))
		if records == 0 || recSize < 12 || 16+recSize > len(tag) {
			return "", errNoDescription
		}
		// First record; profiles list their primary language first.
		rec := tag[16:]
		n := int(binary.BigEndian.Uint32(rec[4:8]))
		off := int(binary.BigEndian.Uint32(rec[8:12]))
		if off < 0 || n < 0 || off > len(tag)-n {
			return "", fmt.Errorf("mluc record out of range")
		}
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		text, err := dec.Bytes(tag[off : off+n])
		if err != nil {
			return "", fmt.Errorf("decoding mluc text: %w", err)
		}
		return strings.TrimRight(string(text), "\x00"), nil
	default:
		return "", fmt.Errorf("unsupported desc type %q", tag[0:4])
	}
}

// ColorSpaceName returns a human-readable name for an ICC color space signature.
func ColorSpaceName(sig string) string {
	switch sig {
	case "RGB ":
		return "RGB"
	case "CMYK":
		return "CMYK"
	case "GRAY":
		return "Grayscale"
	case "Lab ":
		return "CIELAB"
	case "XYZ ":
		return "CIEXYZ"
	default:
		return sig
	}
}

// ProfileClassName returns a human-readable name for an ICC profile class.
func ProfileClassName(sig string) string {
	switch sig {
	case "mntr":
		return "Display"
	case "prtr":
		return "Output"
	case "scnr":
		return "Input"
	case "link":
		return "DeviceLink"
	case "spac":
		return "ColorSpace"
	case "abst":
		return "Abstract"
	case "nmcl":
		return "NamedColor"
	default:
		return sig
	}
}

// IntentName returns the name of an ICC rendering intent.
func IntentName(intent uint32) string {
	switch intent {
	case 0:
		return "perceptual"
	case 1:
		return "relative colorimetric"
	case 2:
		return "saturation"
	case 3:
		return "absolute colorimetric"
	default:
		return fmt.Sprintf("unknown (%d)", intent)
	}
}
