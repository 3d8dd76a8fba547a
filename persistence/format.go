package persistence

import "errors"

var (
	// ErrFormat is returned when a stream is truncated, carries a foreign
	// tag or holds values that are inconsistent with each other.
	ErrFormat = errors.New("format error")

	// ErrIO is returned when the underlying stream or file is unusable.
	ErrIO = errors.New("io error")

	// ErrUnknownCompression is returned for an unsupported compression type.
	ErrUnknownCompression = errors.New("unknown compression type")
)

// Compression selects the frame a snapshot is wrapped in.
type Compression uint8

const (
	// CompressionNone writes the raw snapshot layout.
	CompressionNone Compression = 0
	// CompressionLZ4 wraps the snapshot in an LZ4 frame (fast).
	CompressionLZ4 Compression = 1
	// CompressionZstd wraps the snapshot in a zstd frame (better ratio).
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression parses the names returned by Compression.String.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return CompressionNone, ErrUnknownCompression
	}
}

// Frame magics, as they appear on the wire.
var (
	zstdMagic = [4]byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = [4]byte{0x04, 0x22, 0x4d, 0x18}
)
