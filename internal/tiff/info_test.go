package tiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"testing"

	"golang.org/x/image/tiff"
)

func TestReadInfoEncoded(t *testing.T) {
	tests := []struct {
		name    string
		img     image.Image
		samples int
		extra   int
	}{
		{"gray", image.NewGray(image.Rect(0, 0, 4, 3)), 1, 0},
		{"nrgba", image.NewNRGBA(image.Rect(0, 0, 4, 3)), 4, 1},
		{"rgba64", image.NewRGBA64(image.Rect(0, 0, 4, 3)), 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tiff.Encode(&buf, tt.img, nil); err != nil {
				t.Fatal(err)
			}
			info, err := ReadInfo(buf.Bytes())
			if err != nil {
				t.Fatalf("ReadInfo: %v", err)
			}
			if info.SamplesPerPixel != tt.samples || info.ExtraSamples != tt.extra {
				t.Errorf("samples=%d extra=%d, want %d/%d",
					info.SamplesPerPixel, info.ExtraSamples, tt.samples, tt.extra)
			}
			if info.ICC != nil {
				t.Error("unexpected ICC profile")
			}
		})
	}
}

// buildTIFF writes a minimal IFD0 holding SamplesPerPixel and an ICC tag.
func buildTIFF(order binary.ByteOrder, icc []byte) []byte {
	var buf bytes.Buffer
	if order == binary.LittleEndian {
		buf.WriteString("II*\x00")
	} else {
		buf.WriteString("MM\x00*")
	}
	binary.Write(&buf, order, uint32(8))
	binary.Write(&buf, order, uint16(2))

	// SamplesPerPixel = 3
	binary.Write(&buf, order, uint16(tagSamplesPerPixel))
	binary.Write(&buf, order, uint16(typeShort))
	binary.Write(&buf, order, uint32(1))
	binary.Write(&buf, order, uint16(3))
	binary.Write(&buf, order, uint16(0))

	// ICC profile stored after the IFD.
	iccOffset := 8 + 2 + 2*12 + 4
	binary.Write(&buf, order, uint16(tagICCProfile))
	binary.Write(&buf, order, uint16(typeUndefined))
	binary.Write(&buf, order, uint32(len(icc)))
	binary.Write(&buf, order, uint32(iccOffset))

	binary.Write(&buf, order, uint32(0)) // next IFD
	buf.Write(icc)
	return buf.Bytes()
}

func TestReadInfoICC(t *testing.T) {
	icc := bytes.Repeat([]byte("icc!"), 33)
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		info, err := ReadInfo(buildTIFF(order, icc))
		if err != nil {
			t.Fatalf("%v: %v", order, err)
		}
		if !bytes.Equal(info.ICC, icc) {
			t.Errorf("%v: ICC differs", order)
		}
		if info.SamplesPerPixel != 3 {
			t.Errorf("%v: samples = %d, want 3", order, info.SamplesPerPixel)
		}
	}
}

func TestReadInfoInvalid(t *testing.T) {
	truncated := buildTIFF(binary.LittleEndian, make([]byte, 64))[:40]
	for _, data := range [][]byte{nil, []byte("not a tiff file"), truncated} {
		if _, err := ReadInfo(data); !errors.Is(err, ErrInvalidData) {
			t.Errorf("ReadInfo(%q) err = %v, want ErrInvalidData", data, err)
		}
	}
}
