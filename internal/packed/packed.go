package packed

import (
	"errors"
	"math"
	"math/bits"

	"github.com/hupe1980/sdci/persistence"
)

// MaxWidth is the widest element an Array can hold.
const MaxWidth = 64

// MaxWords bounds the backing buffer of one Array (1 TiB). Larger arrays
// fail with ErrOverflow instead of reaching the allocator.
const MaxWords = 1 << 37

var (
	// ErrInvalidWidth is returned for bit widths greater than MaxWidth.
	ErrInvalidWidth = errors.New("packed: bit width exceeds 64")
	// ErrOverflow is returned when width*length cannot be represented or
	// needs more than MaxWords words.
	ErrOverflow = errors.New("packed: size overflow")
)

// Array is a fixed-width integer array. The zero value is an empty array of width 0.
type Array struct {
	width uint64
	n     uint64
	words []uint64
}

// New creates an array of n zero elements, each width bits wide.
func New(width, n uint64) (*Array, error) {
	a := &Array{}
	if err := a.Resize(width, n); err != nil {
		return nil, err
	}
	return a, nil
}

// WidthFor returns the number of bits needed to distinguish v values,
// i.e. ceil(log2(v)), with a minimum of 1 for any v > 0.
func WidthFor(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	return uint64(bits.Len64((v - 1) | 1))
}

// wordsFor returns the number of words backing n elements of the given width.
func wordsFor(width, n uint64) (uint64, error) {
	if width == 0 {
		return 0, nil
	}
	if width > MaxWidth {
		return 0, ErrInvalidWidth
	}
	if (math.MaxUint64-MaxWidth+1)/width < n {
		return 0, ErrOverflow
	}
	words := (width*n + MaxWidth - 1) / MaxWidth
	if words > MaxWords || words > math.MaxInt/8 {
		return 0, ErrOverflow
	}
	return words, nil
}

// Len returns the number of elements.
func (a *Array) Len() uint64 {
	return a.n
}

// Width returns the bit width of each element.
func (a *Array) Width() uint64 {
	return a.width
}

// Get returns the element at i.
func (a *Array) Get(i uint64) uint64 {
	switch a.width {
	case 0:
		return 0
	case MaxWidth:
		return a.words[i]
	}
	pos := a.width * i
	div, mod := pos/MaxWidth, pos%MaxWidth
	v := a.words[div] >> mod
	if MaxWidth-mod < a.width {
		v |= a.words[div+1] << (MaxWidth - mod)
	}
	return v & (uint64(1)<<a.width - 1)
}

// Set stores v masked to the array width at i.
func (a *Array) Set(i, v uint64) {
	switch a.width {
	case 0:
		return
	case MaxWidth:
		a.words[i] = v
		return
	}
	pos := a.width * i
	div, mod := pos/MaxWidth, pos%MaxWidth
	mask := uint64(1)<<a.width - 1
	v &= mask

	a.words[div] = a.words[div]&^(mask<<mod) | v<<mod
	if rest := MaxWidth - mod; rest < a.width {
		a.words[div+1] = a.words[div+1]&^(mask>>rest) | v>>rest
	}
}

// Resize changes width and length. With an unchanged width the buffer is
// resized in place; otherwise the first min(Len, n) elements are re-encoded
// under the new width. Newly exposed elements are zero.
func (a *Array) Resize(width, n uint64) error {
	words, err := wordsFor(width, n)
	if err != nil {
		return err
	}
	if width == 0 || n == 0 {
		a.words = a.words[:0]
		a.width = width
		a.n = 0
		return nil
	}
	if width == a.width {
		a.resizeWords(int(words))
		if n < a.n {
			a.clearTail(n)
		}
		a.n = n
		return nil
	}

	next := Array{width: width, n: n, words: make([]uint64, words)}
	for i := min(a.n, n); i > 0; i-- {
		next.Set(i-1, a.Get(i-1))
	}
	a.Swap(&next)
	return nil
}

func (a *Array) resizeWords(words int) {
	old := len(a.words)
	if words <= cap(a.words) {
		a.words = a.words[:words]
		if words > old {
			clear(a.words[old:])
		}
		return
	}
	grown := make([]uint64, words)
	copy(grown, a.words)
	a.words = grown
}

// clearTail zeroes the bits of the last word that lie past element n.
func (a *Array) clearTail(n uint64) {
	if used := (a.width * n) % MaxWidth; used != 0 {
		a.words[len(a.words)-1] &= uint64(1)<<used - 1
	}
}

// Swap exchanges the contents of a and other in O(1).
func (a *Array) Swap(other *Array) {
	*a, *other = *other, *a
}

// Clone returns a deep copy of a.
func (a *Array) Clone() Array {
	c := Array{width: a.width, n: a.n}
	if len(a.words) > 0 {
		c.words = make([]uint64, len(a.words))
		copy(c.words, a.words)
	}
	return c
}

// Reset releases the buffer and sets the length to zero. The width is kept.
func (a *Array) Reset() {
	a.words = nil
	a.n = 0
}

// Zero sets every element to zero without changing the length.
func (a *Array) Zero() {
	clear(a.words)
}

// ShrinkToFit releases spare buffer capacity.
func (a *Array) ShrinkToFit() {
	if len(a.words) == cap(a.words) {
		return
	}
	if len(a.words) == 0 {
		a.words = nil
		return
	}
	shrunk := make([]uint64, len(a.words))
	copy(shrunk, a.words)
	a.words = shrunk
}

// HeapUsage returns the bytes held by the backing buffer.
func (a *Array) HeapUsage() uint64 {
	return uint64(cap(a.words)) * 8
}

// Encode writes [width][length][word count][words]. At most limit elements
// are written, which persists only the used prefix of an over-allocated array.
func (a *Array) Encode(w *persistence.Writer, limit uint64) {
	limit = min(limit, a.n)
	words := (limit*a.width + MaxWidth - 1) / MaxWidth
	w.Uint64(a.width)
	w.Uint64(limit)
	w.Uint64s(a.words[:words])
}

// Decode replaces a with an array read from r. On failure a is left empty
// and the error is also recorded in r.
func (a *Array) Decode(r *persistence.Reader) error {
	width := r.Uint64()
	n := r.Uint64()
	words := r.Uint64s()
	if err := r.Err(); err != nil {
		*a = Array{}
		return err
	}

	want, err := wordsFor(width, n)
	if err != nil {
		r.Failf("packed array: width %d length %d: %v", width, n, err)
	} else if uint64(len(words)) != want {
		r.Failf("packed array: got %d words, want %d", len(words), want)
	}
	if err := r.Err(); err != nil {
		*a = Array{}
		return err
	}

	a.width, a.n, a.words = width, n, words
	if n == 0 {
		a.words = a.words[:0]
	}
	return nil
}
