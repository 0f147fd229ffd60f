package jpeg

import (
	"bytes"
	"errors"
	"fmt"
)

// An ICC profile is stored across APP2 segments, each starting with
// "ICC_PROFILE\0", a 1-based sequence number and the total segment count.
const (
	iccMarkerTag     = "ICC_PROFILE\x00"
	iccHeaderSize    = len(iccMarkerTag) + 2
	maxChunkDataSize = 0xFFFF - 2 - iccHeaderSize // 65519
	maxChunks        = 255
)

// ExtractICC reassembles an ICC profile from raw APP2 payloads (marker and
// length bytes stripped) in file order. Segments may appear in any
// sequence order. Non-ICC payloads are skipped; nil, nil means no profile.
func ExtractICC(markers [][]byte) ([]byte, error) {
	var parts [][]byte // indexed by sequence number - 1
	found := 0

	for _, m := range markers {
		if !bytes.HasPrefix(m, []byte(iccMarkerTag)) || len(m) < iccHeaderSize {
			continue
		}
		seq, count := int(m[12]), int(m[13])
		if seq < 1 || seq > count {
			return nil, fmt.Errorf("ICC segment %d of %d out of range", seq, count)
		}
		switch {
		case parts == nil:
			parts = make([][]byte, count)
		case len(parts) != count:
			return nil, fmt.Errorf("ICC segment count changed from %d to %d", len(parts), count)
		}
		if parts[seq-1] != nil {
			return nil, fmt.Errorf("ICC segment %d of %d repeated", seq, count)
		}
		parts[seq-1] = m[iccHeaderSize:]
		found++
	}

	if found == 0 {
		return nil, nil
	}
	if found != len(parts) {
		return nil, fmt.Errorf("ICC profile incomplete: %d of %d segments", found, len(parts))
	}
	return bytes.Join(parts, nil), nil
}

// ChunkICC splits profile into APP2 payloads, each carrying the ICC tag,
// its sequence number and the segment count ahead of the data.
func ChunkICC(profile []byte) ([][]byte, error) {
	if len(profile) == 0 {
		return nil, errors.New("empty ICC profile")
	}
	n := (len(profile) + maxChunkDataSize - 1) / maxChunkDataSize
	if n > maxChunks {
		return nil, fmt.Errorf("ICC profile of %d bytes needs %d APP2 segments, limit is %d", len(profile), n, maxChunks)
	}

	payloads := make([][]byte, n)
	for i := range payloads {
		data := profile[i*maxChunkDataSize : min((i+1)*maxChunkDataSize, len(profile))]
		p := make([]byte, 0, iccHeaderSize+len(data))
		p = append(p, iccMarkerTag...)
		p = append(p, byte(i+1), byte(n))
		payloads[i] = append(p, data...)
	}
	return payloads, nil
}
