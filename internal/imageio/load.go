// Package imageio loads images into ir.Image values and writes them back,
// keeping mode, sample kind and the embedded ICC profile.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	stdpng "image/png"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
	xtiff "golang.org/x/image/tiff"
	xwebp "golang.org/x/image/webp"

	"github.com/himbeles/texturize/internal/color"
	"github.com/himbeles/texturize/internal/ir"
	"github.com/himbeles/texturize/internal/jpeg"
	"github.com/himbeles/texturize/internal/png"
	"github.com/himbeles/texturize/internal/tiff"
	"github.com/himbeles/texturize/internal/webp"
)

// Load reads and decodes the image at path. Any failure is returned as a
// *LoadError.
func Load(path string) (*ir.Image, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	format := Detect(data)
	img, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	log.Debug().
		Str("path", path).
		Stringer("format", format).
		Str("mode", img.ModeName()).
		Str("shape", img.ShapeString()).
		Int("icc_bytes", len(img.ICC)).
		Msg("image loaded")
	return img, nil
}

// readFile reads the whole file and releases the handle before returning.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}
	return data, nil
}

// Decode decodes an in-memory image file of any supported format.
func Decode(data []byte) (*ir.Image, error) {
	format := Detect(data)

	var (
		m    image.Image
		mode = ir.ModeUnknown
		icc  []byte
		err  error
	)
	switch format {
	case FormatPNG:
		var info *png.Info
		if info, err = png.ReadInfo(data); err != nil {
			return nil, err
		}
		if mode, err = pngMode(info); err != nil {
			return nil, err
		}
		icc = info.ICC
		m, err = stdpng.Decode(bytes.NewReader(data))
	case FormatJPEG:
		var info *jpeg.ImageInfo
		m, info, err = jpeg.Decode(data)
		if info != nil {
			icc = info.ICC
		}
	case FormatGIF:
		m, err = gif.Decode(bytes.NewReader(data))
	case FormatBMP:
		m, err = bmp.Decode(bytes.NewReader(data))
	case FormatTIFF:
		var info *tiff.Info
		if info, err = tiff.ReadInfo(data); err != nil {
			return nil, err
		}
		icc = info.ICC
		mode = tiffMode(info)
		m, err = xtiff.Decode(bytes.NewReader(data))
	case FormatWebP:
		var info *webp.Info
		if info, err = webp.ReadInfo(data); err != nil {
			return nil, err
		}
		icc = info.ICC
		m, err = xwebp.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: cannot identify image file", ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	img, err := fromImage(m, mode)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	if len(icc) > 0 {
		img.ICC = icc
		checkProfile(img)
	}
	return img, nil
}

// checkProfile warns about profiles that do not describe the pixel data.
// The profile is kept either way.
func checkProfile(img *ir.Image) {
	pi, err := color.ParseProfileInfo(img.ICC)
	if err != nil {
		log.Warn().Err(err).Int("icc_bytes", len(img.ICC)).Msg("embedded ICC profile is unreadable, passing it through")
		return
	}
	if !pi.MatchesMode(img.Mode) {
		log.Warn().
			Str("profile_space", color.ColorSpaceName(pi.ColorSpace)).
			Str("mode", img.ModeName()).
			Msg("ICC profile colour space does not match image mode")
	}
	log.Debug().
		Str("description", pi.Description).
		Str("version", pi.Version).
		Str("class", color.ProfileClassName(pi.Class)).
		Msg("ICC profile")
}

// pngMode maps the IHDR colour type onto a mode.
func pngMode(info *png.Info) (ir.Mode, error) {
	switch info.ColorType {
	case png.ColorGray:
		if info.BitDepth == 1 {
			return ir.ModeUnknown, fmt.Errorf("%w: 1-bit bilevel png has no integer sample range", ErrUnsupportedMode)
		}
		return ir.ModeL, nil
	case png.ColorGrayAlpha:
		return ir.ModeLA, nil
	case png.ColorRGB:
		return ir.ModeRGB, nil
	case png.ColorRGBA:
		return ir.ModeRGBA, nil
	case png.ColorPalette:
		return ir.ModeP, nil
	default:
		return ir.ModeUnknown, fmt.Errorf("%w: png colour type %d", ErrUnsupportedMode, info.ColorType)
	}
}

// tiffMode resolves RGB data, which the decoder returns as *image.RGBA.
// Other layouts are inferred from the decoded type.
func tiffMode(info *tiff.Info) ir.Mode {
	if info.SamplesPerPixel == 3 && info.ExtraSamples == 0 {
		return ir.ModeRGB
	}
	return ir.ModeUnknown
}
