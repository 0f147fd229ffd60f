package imageio

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when the container format cannot be
	// detected or has no encoder.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrUnsupportedMode is returned when a format cannot represent the
	// image's mode, sample kind or colour profile.
	ErrUnsupportedMode = errors.New("unsupported mode for format")
)

// LoadError reports a failure to read or decode the source image.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports a failure to encode or write the destination image.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
