package sdci

import (
	"bytes"
	"context"
	"io"
	"math"
	"math/bits"
	"time"

	"github.com/hupe1980/sdci/blobstore"
	"github.com/hupe1980/sdci/internal/bitset"
	"github.com/hupe1980/sdci/internal/mmap"
	"github.com/hupe1980/sdci/internal/packed"
	"github.com/hupe1980/sdci/persistence"
)

// sizeTag is the native word size recorded at the start of every snapshot.
const sizeTag = 8

// WriteTo writes a raw snapshot of the index to w.
func (ix *Index) WriteTo(w io.Writer) (int64, error) {
	bw := persistence.NewWriter(w)
	bw.Uint32(sizeTag)
	bw.Uint64(ix.sigma)
	bw.Uint64(ix.q)
	bw.Uint64(ix.k)
	bw.Uint64(ix.n)
	bw.Uint64(ix.last)
	bw.Uint64(ix.nextSample)
	bw.Bool(ix.firstSeen)
	bw.Uint64s(ix.pow)

	ix.samples.Encode(bw)
	ix.efirst.Encode(bw, ix.efirst.Len())
	ix.enext.Encode(bw, ix.enext.Len())
	ix.seen.Encode(bw)
	return bw.N(), translateError(bw.Err())
}

// ReadFrom replaces the index with a snapshot read from r. Compressed
// snapshots are detected by their frame magic. It returns the number of
// raw snapshot bytes decoded.
//
// A truncated, foreign or inconsistent snapshot fails with ErrFormat, an
// unusable stream with ErrIO. On failure the index is reset to
// parameters (0, 0, 0).
func (ix *Index) ReadFrom(r io.Reader) (int64, error) {
	return ix.load(context.Background(), "stream", r)
}

func (ix *Index) load(ctx context.Context, source string, r io.Reader) (n int64, err error) {
	start := time.Now()
	defer func() {
		ix.collector().RecordLoad(n, time.Since(start), err)
		ix.log().LogLoad(ctx, source, ix.n, err)
	}()

	dr, _, err := persistence.NewDecompressReader(r)
	if err != nil {
		ix.release()
		return 0, translateError(err)
	}
	defer dr.Close()

	br := persistence.NewReader(dr)
	var d Index
	d.decode(br)
	if err := br.Err(); err != nil {
		ix.release()
		return br.N(), translateError(err)
	}

	d.logger, d.metrics = ix.logger, ix.metrics
	*ix = d
	return br.N(), nil
}

func (ix *Index) decode(br *persistence.Reader) {
	if tag := br.Uint32(); br.Err() == nil && tag != sizeTag {
		br.Failf("native size tag %d, want %d", tag, sizeTag)
		return
	}
	ix.sigma = br.Uint64()
	ix.q = br.Uint64()
	ix.k = br.Uint64()
	ix.n = br.Uint64()
	ix.last = br.Uint64()
	ix.nextSample = br.Uint64()
	ix.firstSeen = br.Bool()
	ix.pow = br.Uint64s()

	_ = ix.samples.Decode(br)
	_ = ix.efirst.Decode(br)
	_ = ix.enext.Decode(br)
	_ = ix.seen.Decode(br)
	if br.Err() == nil {
		ix.validate(br)
	}
}

// validate checks that the decoded parts describe one consistent index.
func (ix *Index) validate(br *persistence.Reader) {
	if ix.sigma == 0 || ix.q == 0 || ix.k == 0 {
		if ix.sigma != 0 || ix.q != 0 || ix.k != 0 || ix.n != 0 || len(ix.pow) != 0 ||
			ix.samples.Keys() != 0 || ix.efirst.Len() != 0 || ix.enext.Len() != 0 || ix.seen.Width() != 0 {
			br.Failf("uninitialized index carries state")
		}
		return
	}
	if ix.k > ix.q {
		br.Failf("sampling stride %d exceeds q-gram length %d", ix.k, ix.q)
		return
	}

	if uint64(len(ix.pow)) != ix.q+1 || ix.pow[0] != 1 {
		br.Failf("power table of %d entries for q=%d", len(ix.pow), ix.q)
		return
	}
	for i := range ix.q {
		if hi, lo := bits.Mul64(ix.pow[i], ix.sigma); hi != 0 || lo != ix.pow[i+1] {
			br.Failf("power table entry %d is not %d^%d", i+1, ix.sigma, i+1)
			return
		}
	}
	kinds := ix.pow[ix.q]
	if kinds > math.MaxUint64/8 {
		br.Failf("%d q-grams overflow", kinds)
		return
	}

	if ix.samples.Keys() != kinds || ix.efirst.Len() != kinds || ix.enext.Len() != kinds || ix.seen.Width() != kinds {
		br.Failf("structures do not cover %d q-grams", kinds)
		return
	}
	edgeWidth := packed.WidthFor(ix.sigma + 1)
	if ix.efirst.Width() != edgeWidth || ix.enext.Width() != edgeWidth {
		br.Failf("edge width %d/%d, want %d", ix.efirst.Width(), ix.enext.Width(), edgeWidth)
		return
	}
	for w := range kinds {
		if ix.efirst.Get(w) > ix.sigma || ix.enext.Get(w) > ix.sigma {
			br.Failf("edge of q-gram %d names a symbol outside the alphabet", w)
			return
		}
	}

	if !ix.validEdges(br, kinds) {
		return
	}

	if ix.n < ix.q {
		if ix.last >= ix.pow[ix.n] || ix.nextSample != ix.q || ix.firstSeen ||
			ix.samples.Nodes() != 0 || ix.seen.Len() != 0 {
			br.Failf("window state inconsistent with text length %d", ix.n)
		}
		return
	}
	nodes := (ix.n-ix.q)/ix.k + 1
	if ix.last >= kinds || ix.samples.Nodes() != nodes || ix.nextSample != ix.q+nodes*ix.k {
		br.Failf("sampling state inconsistent with text length %d", ix.n)
		return
	}
	if !ix.seen.Contains(int64(ix.last)) {
		br.Failf("last q-gram %d not marked as seen", ix.last)
	}
}

// validEdges checks that every reverse-edge list ends. Each q-gram is pushed
// onto at most one list, the step after its first occurrence, so a q-gram
// met twice marks a cycle or a shared tail. Lists only connect seen q-grams.
func (ix *Index) validEdges(br *persistence.Reader, kinds uint64) bool {
	listed, err := bitset.New(kinds)
	if err != nil {
		br.Failf("edge lists of %d q-grams: %v", kinds, err)
		return false
	}
	for ptn := range kinds {
		e := ix.efirst.Get(ptn)
		if e == 0 {
			continue
		}
		if !ix.seen.Contains(int64(ptn)) {
			br.Failf("edge list of unseen q-gram %d", ptn)
			return false
		}
		rest := ptn / ix.sigma
		for e != 0 {
			prev := rest + (e-1)*ix.pow[ix.q-1]
			if !ix.seen.Contains(int64(prev)) {
				br.Failf("edge of q-gram %d names unseen q-gram %d", ptn, prev)
				return false
			}
			if !listed.Insert(int64(prev)) {
				br.Failf("edge list of q-gram %d revisits q-gram %d", ptn, prev)
				return false
			}
			e = ix.enext.Get(prev)
		}
	}
	return true
}

// encode writes the snapshot to w, framed with c.
func (ix *Index) encode(w io.Writer, c persistence.Compression) (int64, error) {
	cw, err := persistence.NewCompressWriter(w, c)
	if err != nil {
		return 0, translateError(err)
	}
	n, err := ix.WriteTo(cw)
	if err != nil {
		_ = cw.Close()
		return n, err
	}
	return n, translateError(cw.Close())
}

func (ix *Index) recordSnapshot(ctx context.Context, target string, start time.Time, n int64, err error) {
	ix.collector().RecordSnapshot(n, time.Since(start), err)
	ix.log().LogSnapshot(ctx, target, n, err)
}

// SaveFile writes a snapshot to path atomically.
func (ix *Index) SaveFile(path string, optFns ...SaveOption) (err error) {
	o := applySaveOptions(optFns)
	start := time.Now()
	var n int64
	defer func() { ix.recordSnapshot(context.Background(), path, start, n, err) }()

	err = persistence.SaveToFile(path, func(w io.Writer) error {
		var werr error
		n, werr = ix.encode(w, o.compression)
		return werr
	})
	return translateError(err)
}

// LoadFile replaces the index with the snapshot stored at path. The file is
// memory-mapped for the duration of the load.
func (ix *Index) LoadFile(path string) error {
	m, err := mmap.Open(path)
	if err != nil {
		ix.release()
		err = translateError(err)
		ix.log().LogLoad(context.Background(), path, 0, err)
		ix.collector().RecordLoad(0, 0, err)
		return err
	}
	defer m.Close()

	_, err = ix.load(context.Background(), path, m.Reader())
	return err
}

// SaveBlob streams a snapshot into store under name.
func (ix *Index) SaveBlob(ctx context.Context, store blobstore.BlobStore, name string, optFns ...SaveOption) (err error) {
	o := applySaveOptions(optFns)
	start := time.Now()
	var n int64
	defer func() { ix.recordSnapshot(ctx, name, start, n, err) }()

	wb, err := store.Create(ctx, name)
	if err != nil {
		return translateError(err)
	}
	n, err = ix.encode(wb, o.compression)
	if err != nil {
		_ = wb.Abort()
		return err
	}
	return translateError(wb.Close())
}

// LoadBlob replaces the index with the snapshot stored in store under name.
func (ix *Index) LoadBlob(ctx context.Context, store blobstore.BlobStore, name string) error {
	blob, err := store.Open(ctx, name)
	if err != nil {
		ix.release()
		err = translateError(err)
		ix.log().LogLoad(ctx, name, 0, err)
		ix.collector().RecordLoad(0, 0, err)
		return err
	}
	defer blob.Close()

	r, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		ix.release()
		return translateError(err)
	}
	defer r.Close()

	_, err = ix.load(ctx, name, r)
	return err
}

// MarshalBinary returns a raw snapshot of the index.
func (ix *Index) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := ix.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the index with a snapshot produced by
// MarshalBinary or any Save method.
func (ix *Index) UnmarshalBinary(data []byte) error {
	_, err := ix.ReadFrom(bytes.NewReader(data))
	return err
}
