package sdci

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Locate returns the start positions of every occurrence of pattern in the
// text, in no particular order.
//
// A pattern symbol outside the alphabet yields no occurrences. A pattern
// longer than MaxPatternLen fails with a *PatternLengthError. An empty
// pattern yields no occurrences.
func (ix *Index) Locate(pattern []uint64) ([]uint64, error) {
	var out []uint64
	err := ix.LocateFunc(pattern, func(pos uint64) bool {
		out = append(out, pos)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LocateFunc calls yield for every occurrence of pattern until yield
// returns false. Validation follows Locate.
func (ix *Index) LocateFunc(pattern []uint64, yield func(uint64) bool) (err error) {
	start := time.Now()
	var matches uint64
	defer func() {
		ix.collector().RecordLocate(len(pattern), matches, time.Since(start), err)
		if err != nil {
			ix.log().LogLocate(context.Background(), len(pattern), matches, err)
		}
	}()

	return ix.locate(pattern, func(pos uint64) bool {
		matches++
		return yield(pos)
	})
}

// LocateBitmap returns the occurrences of pattern as an ordered set.
func (ix *Index) LocateBitmap(pattern []uint64) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	err := ix.LocateFunc(pattern, func(pos uint64) bool {
		bm.Add(pos)
		return true
	})
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// Count returns the number of occurrences of pattern. It enumerates the
// occurrences like Locate without collecting them.
func (ix *Index) Count(pattern []uint64) (uint64, error) {
	var n uint64
	err := ix.LocateFunc(pattern, func(uint64) bool {
		n++
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (ix *Index) locate(pattern []uint64, yield func(uint64) bool) error {
	if len(pattern) == 0 {
		return nil
	}

	var enc, plen uint64
	for _, c := range pattern {
		if c >= ix.sigma {
			return nil
		}
		enc = enc*ix.sigma + c
		plen++
		if plen > ix.MaxPatternLen() {
			return &PatternLengthError{Length: uint64(len(pattern)), Max: ix.MaxPatternLen()}
		}
	}
	if plen > ix.n {
		return nil
	}

	// The whole text still fits in the rolling window.
	if ix.n < ix.q {
		cands := ix.n - plen
		for i := uint64(0); i <= cands; i++ {
			if (ix.last/ix.pow[cands-i])%ix.pow[plen] == enc {
				if !yield(i) {
					return nil
				}
			}
		}
		return nil
	}

	// Every q-gram starting with the pattern lies in [lo, hi).
	diff := ix.q - plen
	lo := enc * ix.pow[diff]
	hi := (enc + 1) * ix.pow[diff]
	for p := ix.seen.Successor(int64(lo) - 1); uint64(p) < hi; p = ix.seen.Successor(p) {
		if !ix.walk(uint64(p), 0, yield) {
			return nil
		}
	}

	// Occurrences starting inside the last q-gram but after its first symbol.
	covered := ((ix.n-ix.q)/ix.k + 1) * ix.k
	offset := ix.n - ix.q
	for i := uint64(1); i <= diff; i++ {
		if (ix.last/ix.pow[diff-i])%ix.pow[plen] != enc {
			continue
		}
		if i+offset >= covered {
			if !yield(i + offset) {
				return nil
			}
		} else if ix.firstSeen {
			if !ix.walk(ix.last, i, yield) {
				return nil
			}
		}
	}
	return nil
}

// walk reports the positions of ptn at offset off from its sampled
// occurrences, then follows the reverse edges to q-grams that occurred one
// symbol earlier. It returns false once yield stops the enumeration.
func (ix *Index) walk(ptn, off uint64, yield func(uint64) bool) bool {
	for nd := range ix.samples.Bucket(ptn) {
		if !yield(nd*ix.k + off) {
			return false
		}
	}
	if off+1 >= ix.k {
		return true
	}

	rest := ptn / ix.sigma
	for e := ix.efirst.Get(ptn); e != 0; {
		prev := rest + (e-1)*ix.pow[ix.q-1]
		if !ix.walk(prev, off+1, yield) {
			return false
		}
		e = ix.enext.Get(prev)
	}
	return true
}
