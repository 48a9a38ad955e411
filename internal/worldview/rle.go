package worldview

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRLE packs palette ids as base64(uvarint block, uvarint run) pairs,
// the layout the world server uses for full voxel windows.
func EncodeRLE(ids []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	for i := 0; i < len(ids); {
		j := i + 1
		for j < len(ids) && ids[j] == ids[i] {
			j++
		}
		buf.Write(tmp[:binary.PutUvarint(tmp[:], uint64(ids[i]))])
		buf.Write(tmp[:binary.PutUvarint(tmp[:], uint64(j-i))])
		i = j
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE unpacks a window of exactly want ids. A stream that decodes to a
// different length is rejected so a bad frame never shifts the whole window.
func DecodeRLE(b64 string, want int) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("rle: %w", err)
	}
	out := make([]uint16, 0, want)
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("rle: bad block varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("rle: bad run varint at %d", i)
		}
		i += n
		if b > 0xFFFF {
			return nil, fmt.Errorf("rle: block id too large: %d", b)
		}
		if run > uint64(want-len(out)) {
			return nil, fmt.Errorf("rle: run overflows window of %d", want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(b))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("rle: decoded %d ids, want %d", len(out), want)
	}
	return out, nil
}
