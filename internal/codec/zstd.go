// Package codec wraps zstd compression in the symmetric compress/decompress
// pair the chunk store needs for its payload frames. It carries no framing
// of its own beyond what zstd itself provides, and every payload is a
// self-contained zstd frame so chunks.bin can be read back record by record.
package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultLevel is the zstd compression level used when none is configured.
const DefaultLevel = 3

// levelFor maps a 1-22 zstd_level configuration value onto the
// klauspost/compress/zstd encoder speed presets.
func levelFor(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 3:
		return zstd.SpeedDefault
	case level <= 9:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// Compress compresses data at the given zstd level (1-22; out-of-range
// values clamp to the nearest supported preset). Errors are fatal at write
// time per the artifact specification's error taxonomy.
func Compress(data []byte, level int) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(levelFor(level)))
	if err != nil {
		return nil, fmt.Errorf("codec: failed to create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// Decompress decompresses a self-contained zstd frame. A malformed frame
// surfaces as corruption to the caller, which maps it onto a
// DecompressionError per the error taxonomy.
func Decompress(compressed []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to decode zstd frame: %w", err)
	}
	return out, nil
}
