package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewCompressWriter wraps w so that everything written to the returned writer
// is framed with the given compression. Close must be called to flush the
// frame; it does not close w.
func NewCompressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

// NewDecompressReader sniffs the first bytes of r and returns a reader that
// yields the raw snapshot layout together with the detected compression.
// Streams shorter than a frame magic are passed through unchanged.
func NewDecompressReader(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	head, err := br.Peek(4)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.NopCloser(br), CompressionNone, nil
		}
		return nil, CompressionNone, fmt.Errorf("%w: %w", ErrIO, err)
	}

	switch [4]byte(head) {
	case zstdMagic:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, CompressionZstd, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		return &frameReader{r: dec.IOReadCloser()}, CompressionZstd, nil
	case lz4Magic:
		return &frameReader{r: io.NopCloser(lz4.NewReader(br))}, CompressionLZ4, nil
	default:
		return io.NopCloser(br), CompressionNone, nil
	}
}

// frameReader reports decoder failures other than end of stream as corrupt data.
type frameReader struct {
	r io.ReadCloser
}

func (f *frameReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, ErrIO) {
		return n, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return n, err
}

func (f *frameReader) Close() error {
	return f.r.Close()
}
