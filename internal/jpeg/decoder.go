package jpeg

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Decode decodes a JPEG file from memory and returns the image together
// with its header metadata and ICC profile.
func Decode(data []byte) (image.Image, *ImageInfo, error) {
	info, err := GetInfo(data)
	if err != nil {
		return nil, nil, err
	}
	m, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("jpeg decode: %w", err)
	}
	return m, info, nil
}
