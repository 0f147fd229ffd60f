package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
	xtiff "golang.org/x/image/tiff"

	"github.com/himbeles/texturize/internal/ir"
	"github.com/himbeles/texturize/internal/jpeg"
	"github.com/himbeles/texturize/internal/png"
)

// Save encodes img in the format named by the extension of path and
// replaces path atomically. On failure path is left untouched and the
// error is a *SaveError.
func Save(path string, img *ir.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return &SaveError{Path: path, Err: err}
	}

	log.Debug().
		Str("path", path).
		Stringer("format", format).
		Str("mode", img.ModeName()).
		Int("bytes", buf.Len()).
		Int("icc_bytes", len(img.ICC)).
		Msg("image saved")
	return nil
}

// Encode writes img to buf in the given format.
func Encode(buf *bytes.Buffer, img *ir.Image, format Format) error {
	if err := img.Validate(); err != nil {
		return err
	}

	switch format {
	case FormatPNG:
		if img.Mode == ir.ModeP {
			padded := *img
			padded.Palette = paletteCovering(img)
			img = &padded
		}
		return png.Encode(buf, img, png.EncoderOptions{})
	case FormatJPEG:
		if !supports(img, ir.KindUint8, ir.ModeL, ir.ModeRGB) {
			return unsupported(img, format)
		}
		m, err := toImage(img)
		if err != nil {
			return err
		}
		return jpeg.Encode(buf, m, img.ICC)
	case FormatGIF:
		m, err := plainImage(img, format, ir.KindUint8, ir.ModeP)
		if err != nil {
			return err
		}
		return gif.Encode(buf, m, nil)
	case FormatBMP:
		m, err := plainImage(img, format, ir.KindUint8, ir.ModeP, ir.ModeRGB)
		if err != nil {
			return err
		}
		return bmp.Encode(buf, m)
	case FormatTIFF:
		m, err := plainImage(img, format, ir.KindUnknown, ir.ModeL, ir.ModeP, ir.ModeRGBA)
		if err != nil {
			return err
		}
		return xtiff.Encode(buf, m, nil)
	default:
		return fmt.Errorf("%w: no encoder for %s", ErrUnsupportedFormat, format)
	}
}

// plainImage converts img for an encoder that cannot embed ICC profiles.
// kind restricts the sample kind unless it is ir.KindUnknown.
func plainImage(img *ir.Image, format Format, kind ir.SampleKind, modes ...ir.Mode) (image.Image, error) {
	if !supports(img, kind, modes...) {
		return nil, unsupported(img, format)
	}
	if img.Mode == ir.ModeP && img.Kind != ir.KindUint8 {
		return nil, unsupported(img, format)
	}
	if len(img.ICC) > 0 {
		return nil, fmt.Errorf("%w: %s encoder cannot embed the ICC profile", ErrUnsupportedMode, format)
	}
	return toImage(img)
}

func supports(img *ir.Image, kind ir.SampleKind, modes ...ir.Mode) bool {
	if kind != ir.KindUnknown && img.Kind != kind {
		return false
	}
	for _, m := range modes {
		if img.Mode == m {
			return true
		}
	}
	return false
}

func unsupported(img *ir.Image, format Format) error {
	return fmt.Errorf("%w: cannot write mode %s as %s", ErrUnsupportedMode, img.ModeName(), format)
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it over path, so path is either fully replaced or left unchanged.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
