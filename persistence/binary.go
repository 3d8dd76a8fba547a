package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// wordChunk bounds the scratch buffer used for slice encoding and the
// allocation step used when decoding a slice of untrusted length.
const wordChunk = 8192

// Writer writes fixed-width little-endian values and remembers the first error.
type Writer struct {
	w   io.Writer
	n   int64
	err error
	buf []byte
}

// NewWriter creates a new binary writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (bw *Writer) write(p []byte) {
	if bw.err != nil {
		return
	}
	n, err := bw.w.Write(p)
	bw.n += int64(n)
	if err != nil {
		bw.err = fmt.Errorf("%w: %w", ErrIO, err)
	}
}

// Uint32 writes v as 4 bytes.
func (bw *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	bw.write(b[:])
}

// Uint64 writes v as 8 bytes.
func (bw *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	bw.write(b[:])
}

// Byte writes a single byte.
func (bw *Writer) Byte(v byte) {
	bw.write([]byte{v})
}

// Bool writes a one-byte flag.
func (bw *Writer) Bool(v bool) {
	if v {
		bw.Byte(1)
		return
	}
	bw.Byte(0)
}

// Uint64s writes a uint64 element count followed by the words.
func (bw *Writer) Uint64s(words []uint64) {
	bw.Uint64(uint64(len(words)))
	for len(words) > 0 && bw.err == nil {
		chunk := min(len(words), wordChunk)
		bw.buf = bw.buf[:0]
		for _, v := range words[:chunk] {
			bw.buf = binary.LittleEndian.AppendUint64(bw.buf, v)
		}
		bw.write(bw.buf)
		words = words[chunk:]
	}
}

// N returns the number of bytes written so far.
func (bw *Writer) N() int64 {
	return bw.n
}

// Err returns the first error encountered, if any.
func (bw *Writer) Err() error {
	return bw.err
}

// Reader reads fixed-width little-endian values and remembers the first error.
// After an error every further read returns zero values.
type Reader struct {
	r   io.Reader
	n   int64
	err error
	buf []byte
}

// NewReader creates a new binary reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (br *Reader) read(p []byte) bool {
	if br.err != nil {
		return false
	}
	n, err := io.ReadFull(br.r, p)
	br.n += int64(n)
	if err != nil {
		br.err = classify(err)
		return false
	}
	return true
}

func classify(err error) error {
	if errors.Is(err, ErrFormat) || errors.Is(err, ErrIO) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated stream", ErrFormat)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// Uint32 reads 4 bytes.
func (br *Reader) Uint32() uint32 {
	var b [4]byte
	if !br.read(b[:]) {
		return 0
	}
	return binary.LittleEndian.Uint32(b[:])
}

// Uint64 reads 8 bytes.
func (br *Reader) Uint64() uint64 {
	var b [8]byte
	if !br.read(b[:]) {
		return 0
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Byte reads a single byte.
func (br *Reader) Byte() byte {
	var b [1]byte
	if !br.read(b[:]) {
		return 0
	}
	return b[0]
}

// Bool reads a one-byte flag; any non-zero byte is true.
func (br *Reader) Bool() bool {
	return br.Byte() != 0
}

// Uint64s reads a count-prefixed slice of words. The slice grows as data
// arrives, so a corrupted count fails with ErrFormat at the end of the
// stream instead of triggering one huge allocation.
func (br *Reader) Uint64s() []uint64 {
	count := br.Uint64()
	if br.err != nil || count == 0 {
		return nil
	}
	words := make([]uint64, 0, min(count, wordChunk))
	for remaining := count; remaining > 0; {
		chunk := min(remaining, wordChunk)
		if cap(br.buf) < int(chunk)*8 {
			br.buf = make([]byte, int(chunk)*8)
		}
		b := br.buf[:chunk*8]
		if !br.read(b) {
			return nil
		}
		for i := uint64(0); i < chunk; i++ {
			words = append(words, binary.LittleEndian.Uint64(b[i*8:]))
		}
		remaining -= chunk
	}
	return words
}

// Failf records a format error unless an earlier error is already set.
func (br *Reader) Failf(format string, args ...any) {
	if br.err == nil {
		br.err = fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
	}
}

// N returns the number of bytes consumed so far.
func (br *Reader) N() int64 {
	return br.n
}

// Err returns the first error encountered, if any.
func (br *Reader) Err() error {
	return br.err
}
