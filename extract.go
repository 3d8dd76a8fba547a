package sdci

import "time"

// covered returns the length of the text prefix reconstructible from
// samples. It requires n >= q.
func (ix *Index) covered() uint64 {
	return ((ix.n-ix.q)/ix.k + 1) * ix.k
}

// digit returns the symbol i positions before the end of the rolling window.
func (ix *Index) digit(i uint64) uint64 {
	return (ix.last / ix.pow[i]) % ix.sigma
}

// Retrieve reconstructs the whole text.
func (ix *Index) Retrieve() []uint64 {
	start := time.Now()
	out := make([]uint64, ix.n)
	defer func() {
		ix.collector().RecordExtract(len(out), time.Since(start))
	}()

	if ix.n == 0 {
		return out
	}
	if ix.n < ix.q {
		for i := range ix.n {
			out[i] = ix.digit(ix.n - i - 1)
		}
		return out
	}

	covered := ix.covered()
	for i := covered; i < ix.n; i++ {
		out[i] = ix.digit(ix.n - i - 1)
	}
	for w := range ix.seen.All() {
		for nd := range ix.samples.Bucket(uint64(w)) {
			pos := ix.k * nd
			for j := range ix.k {
				out[pos+j] = (uint64(w) / ix.pow[ix.q-j-1]) % ix.sigma
			}
		}
	}
	return out
}

// Extract reconstructs length symbols starting at from. The result is
// shorter if the text ends first, and empty if from is past the end.
func (ix *Index) Extract(from, length uint64) []uint64 {
	start := time.Now()
	var out []uint64
	defer func() {
		ix.collector().RecordExtract(len(out), time.Since(start))
	}()

	if length == 0 || from >= ix.n {
		return nil
	}
	length = min(length, ix.n-from)
	out = make([]uint64, length)
	end := from + length

	if ix.n < ix.q {
		for i := range length {
			out[i] = ix.digit(ix.n - from - i - 1)
		}
		return out
	}

	remain := length
	covered := ix.covered()
	for p := max(from, covered); p < end; p++ {
		out[p-from] = ix.digit(ix.n - p - 1)
		remain--
	}
	if remain == 0 {
		return out
	}

	for w := range ix.seen.All() {
		for nd := range ix.samples.Bucket(uint64(w)) {
			spos := ix.k * nd
			if spos+ix.k <= from {
				// Buckets hold decreasing positions.
				break
			}
			if spos >= end {
				continue
			}
			for j := range ix.k {
				if p := spos + j; p >= from && p < end {
					out[p-from] = (uint64(w) / ix.pow[ix.q-j-1]) % ix.sigma
					remain--
				}
			}
		}
		if remain == 0 {
			break
		}
	}
	return out
}
