package bitset

import (
	"errors"
	"iter"
	"math"
	"math/bits"

	"github.com/hupe1980/sdci/persistence"
)

const wordBits = 64

// MaxWords bounds the words of all levels of one Set (1 TiB).
const MaxWords = 1 << 37

// ErrOverflow is returned when the bitmap for the requested width cannot be addressed.
var ErrOverflow = errors.New("bitset: width too large")

// Set is a set of integers in [0, Width). The zero value is an empty set of width 0.
type Set struct {
	width  uint64
	count  uint64
	words  []uint64
	offset []uint64
}

// New creates an empty set over [0, width).
func New(width uint64) (*Set, error) {
	s := &Set{}
	if err := s.Initialize(width); err != nil {
		return nil, err
	}
	return s, nil
}

// levels returns the start of every level and the total number of words.
func levels(width uint64) ([]uint64, uint64) {
	if width == 0 {
		return nil, 0
	}
	var (
		offset []uint64
		sum    uint64
	)
	size := width
	for {
		offset = append(offset, sum)
		size = size/wordBits + min(size%wordBits, 1)
		sum += size
		if size <= 1 {
			return offset, sum
		}
	}
}

// Initialize discards all members and resizes the set to [0, width).
// On failure the set is left empty with width 0.
func (s *Set) Initialize(width uint64) error {
	offset, total := levels(width)
	if total > MaxWords || total > math.MaxInt/8 {
		*s = Set{}
		return ErrOverflow
	}
	s.width = width
	s.count = 0
	s.offset = offset
	if uint64(cap(s.words)) >= total {
		s.words = s.words[:total]
		clear(s.words)
	} else {
		s.words = make([]uint64, total)
	}
	return nil
}

// Width returns the exclusive upper bound of the set.
func (s *Set) Width() uint64 {
	return s.width
}

// Len returns the number of members.
func (s *Set) Len() uint64 {
	return s.count
}

func (s *Set) inRange(pos int64) bool {
	return pos >= 0 && uint64(pos) < s.width
}

// Contains reports whether pos is a member.
func (s *Set) Contains(pos int64) bool {
	if !s.inRange(pos) {
		return false
	}
	p := uint64(pos)
	return s.words[p/wordBits]>>(p%wordBits)&1 != 0
}

// Insert adds pos and reports whether it was newly added.
// Out-of-range positions are ignored.
func (s *Set) Insert(pos int64) bool {
	if !s.inRange(pos) || s.Contains(pos) {
		return false
	}
	s.count++
	p := uint64(pos)
	for level := 0; level < len(s.offset); level++ {
		w := &s.words[s.offset[level]+p/wordBits]
		wasEmpty := *w == 0
		*w |= 1 << (p % wordBits)
		if !wasEmpty {
			break
		}
		p /= wordBits
	}
	return true
}

// Erase removes pos and reports whether it was a member.
func (s *Set) Erase(pos int64) bool {
	if !s.Contains(pos) {
		return false
	}
	s.count--
	p := uint64(pos)
	for level := 0; level < len(s.offset); level++ {
		w := &s.words[s.offset[level]+p/wordBits]
		*w &^= 1 << (p % wordBits)
		if *w != 0 {
			break
		}
		p /= wordBits
	}
	return true
}

// Clear removes every member. The width is kept.
func (s *Set) Clear() {
	if s.count != 0 {
		clear(s.words)
		s.count = 0
	}
}

// Successor returns the smallest member greater than pos, or Width if none.
// A negative pos queries from the beginning of the range.
func (s *Set) Successor(pos int64) int64 {
	if pos < 0 {
		if s.Contains(0) {
			return 0
		}
		pos = 0
	}
	p := uint64(pos)
	if p >= s.width {
		return int64(s.width)
	}

	level := 0
	for {
		if level == len(s.offset) {
			return int64(s.width)
		}
		word := p / wordBits
		// Keep only bits strictly above p; a shift of 64 yields zero.
		b := s.words[s.offset[level]+word] &^ (uint64(2)<<(p%wordBits) - 1)
		if b != 0 {
			p = word*wordBits + uint64(bits.TrailingZeros64(b))
			break
		}
		p = word
		level++
	}
	for level > 0 {
		level--
		b := s.words[s.offset[level]+p]
		p = p*wordBits + uint64(bits.TrailingZeros64(b))
	}
	return int64(p)
}

// Predecessor returns the largest member smaller than pos, or -1 if none.
// A pos at or beyond Width queries from the end of the range.
func (s *Set) Predecessor(pos int64) int64 {
	if pos < 0 || s.width == 0 {
		return -1
	}
	p := uint64(pos)
	if p >= s.width {
		if s.Contains(int64(s.width - 1)) {
			return int64(s.width - 1)
		}
		p = s.width - 1
	}

	level := 0
	for {
		if level == len(s.offset) {
			return -1
		}
		word := p / wordBits
		b := s.words[s.offset[level]+word] & (uint64(1)<<(p%wordBits) - 1)
		if b != 0 {
			p = word*wordBits + uint64(wordBits-1-bits.LeadingZeros64(b))
			break
		}
		p = word
		level++
	}
	for level > 0 {
		level--
		b := s.words[s.offset[level]+p]
		p = p*wordBits + uint64(wordBits-1-bits.LeadingZeros64(b))
	}
	return int64(p)
}

// All yields the members in ascending order.
func (s *Set) All() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		end := int64(s.width)
		for p := s.Successor(-1); p < end; p = s.Successor(p) {
			if !yield(p) {
				return
			}
		}
	}
}

// Swap exchanges the contents of s and other in O(1).
func (s *Set) Swap(other *Set) {
	*s, *other = *other, *s
}

// Clone returns a deep copy of s.
func (s *Set) Clone() Set {
	return Set{
		width:  s.width,
		count:  s.count,
		words:  append([]uint64(nil), s.words...),
		offset: append([]uint64(nil), s.offset...),
	}
}

// HeapUsage returns the bytes held by the word and offset buffers.
func (s *Set) HeapUsage() uint64 {
	return uint64(cap(s.words)+cap(s.offset)) * 8
}

// Encode writes [width][count][word count][words].
func (s *Set) Encode(w *persistence.Writer) {
	w.Uint64(s.width)
	w.Uint64(s.count)
	w.Uint64s(s.words)
}

// Decode replaces s with a set read from r. The words are checked against
// the width, the member count and the level summaries. On failure s is left
// empty with width 0.
func (s *Set) Decode(r *persistence.Reader) error {
	width := r.Uint64()
	count := r.Uint64()
	words := r.Uint64s()
	if err := r.Err(); err != nil {
		*s = Set{}
		return err
	}

	offset, total := levels(width)
	if total > MaxWords {
		r.Failf("bitset: width %d exceeds %d words", width, uint64(MaxWords))
	} else if uint64(len(words)) != total {
		r.Failf("bitset: got %d words, want %d for width %d", len(words), total, width)
	} else if msg := validate(width, count, words, offset); msg != "" {
		r.Failf("bitset: %s", msg)
	}
	if err := r.Err(); err != nil {
		*s = Set{}
		return err
	}

	*s = Set{width: width, count: count, words: words, offset: offset}
	return nil
}

func validate(width, count uint64, words, offset []uint64) string {
	if width == 0 {
		if count != 0 {
			return "members in an empty range"
		}
		return ""
	}
	size := width
	for level, start := range offset {
		n := size/wordBits + min(size%wordBits, 1)
		cur := words[start : start+n]
		if tail := size % wordBits; tail != 0 && cur[n-1]>>tail != 0 {
			return "bits set beyond the range"
		}
		if level == 0 {
			var pop uint64
			for _, w := range cur {
				pop += uint64(bits.OnesCount64(w))
			}
			if pop != count {
				return "member count does not match the bitmap"
			}
		}
		if level+1 < len(offset) {
			parent := words[offset[level+1]:]
			for i, w := range cur {
				set := parent[i/wordBits]>>(i%wordBits)&1 != 0
				if set != (w != 0) {
					return "level summary does not match the level below"
				}
			}
		}
		size = n
	}
	return ""
}
