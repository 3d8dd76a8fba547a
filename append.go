package sdci

import (
	"context"
	"iter"
	"time"
)

// Append adds symbols to the end of the text.
//
// Every symbol is checked before the text changes: a symbol outside the
// alphabet fails with an *InvalidSymbolError and leaves the index as it was.
// A failure while growing the sample list resets the index to empty.
func (ix *Index) Append(symbols []uint64) (err error) {
	start := time.Now()
	defer func() {
		ix.collector().RecordAppend(len(symbols), time.Since(start), err)
		if err != nil {
			ix.log().LogAppend(context.Background(), len(symbols), ix.n, err)
		}
	}()

	if len(symbols) == 0 {
		return nil
	}
	if ix.sigma == 0 {
		return ErrNotInitialized
	}
	for _, c := range symbols {
		if c >= ix.sigma {
			return &InvalidSymbolError{Symbol: c, AlphabetSize: ix.sigma}
		}
	}
	if err := ix.Reserve(ix.n + uint64(len(symbols))); err != nil {
		return err
	}

	for _, c := range symbols {
		if err := ix.push(c); err != nil {
			ix.resetAfter("append", err)
			return translateError(err)
		}
	}
	return nil
}

// AppendSeq adds the symbols yielded by seq. The length of seq is not known
// up front, so the sample list grows geometrically.
//
// Symbols are applied one at a time: a symbol outside the alphabet stops the
// append with an *InvalidSymbolError and keeps the symbols before it.
func (ix *Index) AppendSeq(seq iter.Seq[uint64]) (err error) {
	start := time.Now()
	var applied int
	defer func() {
		ix.collector().RecordAppend(applied, time.Since(start), err)
		if err != nil {
			ix.log().LogAppend(context.Background(), applied, ix.n, err)
		}
	}()

	for c := range seq {
		if ix.sigma == 0 {
			return ErrNotInitialized
		}
		if c >= ix.sigma {
			return &InvalidSymbolError{Symbol: c, AlphabetSize: ix.sigma}
		}
		if err := ix.push(c); err != nil {
			ix.resetAfter("append", err)
			return translateError(err)
		}
		applied++
	}
	return nil
}

// Assign replaces the text with symbols. It is Clear followed by Append.
func (ix *Index) Assign(symbols []uint64) error {
	ix.Clear()
	return ix.Append(symbols)
}

// push shifts c into the rolling window and records the q-gram it completes.
func (ix *Index) push(c uint64) error {
	next := (ix.last%ix.pow[ix.q-1])*ix.sigma + c
	ix.n++

	if ix.n >= ix.q {
		if ix.n == ix.nextSample {
			if err := ix.samples.PushFront(next); err != nil {
				return err
			}
			ix.nextSample += ix.k
		}
		if ix.firstSeen {
			// The previous q-gram was new: link next back to it through the
			// symbol it starts with.
			ix.enext.Set(ix.last, ix.efirst.Get(next))
			ix.efirst.Set(next, ix.last/ix.pow[ix.q-1]+1)
		}
		ix.firstSeen = ix.seen.Insert(int64(next))
	}
	ix.last = next
	return nil
}
