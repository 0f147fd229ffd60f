package jpeg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

// Encode writes m as a baseline JPEG with the default quality and splices
// iccProfile (may be nil) into APP2 segments directly after SOI.
func Encode(w io.Writer, m image.Image, iccProfile []byte) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, m, nil); err != nil {
		return fmt.Errorf("jpeg encode: %w", err)
	}
	encoded := buf.Bytes()
	if len(iccProfile) == 0 {
		_, err := w.Write(encoded)
		return err
	}

	withICC, err := InsertICC(encoded, iccProfile)
	if err != nil {
		return err
	}
	_, err = w.Write(withICC)
	return err
}

// InsertICC returns a copy of the JPEG stream data with iccProfile written
// as APP2 ICC_PROFILE segments immediately after the SOI marker.
func InsertICC(data, iccProfile []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, fmt.Errorf("%w: missing SOI marker", ErrInvalidData)
	}
	chunks, err := ChunkICC(iccProfile)
	if err != nil {
		return nil, err
	}

	size := len(data)
	for _, c := range chunks {
		size += 4 + len(c)
	}
	out := make([]byte, 0, size)
	out = append(out, data[:2]...)
	for _, c := range chunks {
		var hdr [4]byte
		hdr[0] = 0xFF
		hdr[1] = markerAPP2
		binary.BigEndian.PutUint16(hdr[2:], uint16(len(c)+2))
		out = append(out, hdr[:]...)
		out = append(out, c...)
	}
	return append(out, data[2:]...), nil
}
