// Package persistence provides the binary framing used by compact index snapshots.
//
// All integers are written little-endian with fixed widths. Slices of 64-bit
// words are length-prefixed with a uint64 element count. Writer and Reader
// carry a sticky error so that composite structures can encode and decode
// field by field and check for failure once at the end.
//
// Error classification on the read side:
//   - truncated data (io.EOF, io.ErrUnexpectedEOF) and inconsistent fields
//     are reported as ErrFormat
//   - any other failure of the underlying reader is reported as ErrIO
//
// Snapshots may additionally be wrapped in a zstd or LZ4 frame; see
// NewCompressWriter and NewDecompressReader.
package persistence
