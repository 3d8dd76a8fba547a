package mmap

import (
	"bytes"
	"errors"
	"math"
	"os"
	"sync/atomic"
)

// ErrTooLarge is returned for files that do not fit the address space.
var ErrTooLarge = errors.New("mmap: file too large to map")

// Mapping is a read-only mapped file.
type Mapping struct {
	data   []byte
	unmap  func([]byte) error
	closed atomic.Bool
}

// Open maps the file at path. An empty file yields an empty mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if size > math.MaxInt {
		return nil, ErrTooLarge
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	adviseSequential(data)
	return &Mapping{data: data, unmap: unmap}, nil
}

// Bytes returns the mapped bytes, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Reader returns a reader over the mapped bytes. It must not outlive Close.
func (m *Mapping) Reader() *bytes.Reader {
	return bytes.NewReader(m.Bytes())
}

// Close unmaps the file. Further calls do nothing.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.data == nil {
		return nil
	}
	return m.unmap(m.data)
}
