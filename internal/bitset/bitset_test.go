package bitset

import (
	"bytes"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/hupe1980/sdci/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oracle is a brute-force reference for Set.
type oracle []bool

func (o oracle) successor(pos int64) int64 {
	for p := max(pos+1, 0); p < int64(len(o)); p++ {
		if o[p] {
			return p
		}
	}
	return int64(len(o))
}

func (o oracle) predecessor(pos int64) int64 {
	for p := min(pos-1, int64(len(o))-1); p >= 0; p-- {
		if o[p] {
			return p
		}
	}
	return -1
}

func TestSet_Basic(t *testing.T) {
	s, err := New(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), s.Width())

	assert.True(t, s.Insert(10))
	assert.False(t, s.Insert(10))
	assert.False(t, s.Insert(100))
	assert.False(t, s.Insert(-1))
	assert.True(t, s.Contains(10))
	assert.Equal(t, uint64(1), s.Len())

	assert.Equal(t, int64(10), s.Successor(-1))
	assert.Equal(t, int64(10), s.Successor(5))
	assert.Equal(t, int64(100), s.Successor(10))
	assert.Equal(t, int64(10), s.Predecessor(50))
	assert.Equal(t, int64(-1), s.Predecessor(10))
	assert.Equal(t, int64(10), s.Predecessor(1000))

	assert.True(t, s.Erase(10))
	assert.False(t, s.Erase(10))
	assert.Zero(t, s.Len())
	assert.Equal(t, int64(100), s.Successor(-1))
}

func TestSet_EdgesOfRange(t *testing.T) {
	s, err := New(130)
	require.NoError(t, err)
	s.Insert(0)
	s.Insert(129)

	assert.Equal(t, int64(0), s.Successor(-5))
	assert.Equal(t, int64(129), s.Successor(0))
	assert.Equal(t, int64(129), s.Predecessor(200))
	assert.Equal(t, int64(0), s.Predecessor(129))
	assert.Equal(t, int64(130), s.Successor(129))
	assert.Equal(t, int64(-1), s.Predecessor(0))
}

func TestSet_TooWide(t *testing.T) {
	_, err := New(MaxWords * wordBits)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = New(1 << 60)
	assert.ErrorIs(t, err, ErrOverflow)

	s, err := New(100)
	require.NoError(t, err)
	s.Insert(7)
	assert.ErrorIs(t, s.Initialize(1<<62), ErrOverflow)
	assert.Equal(t, uint64(0), s.Width())
	assert.False(t, s.Contains(7))
}

func TestSet_ZeroWidth(t *testing.T) {
	var s Set
	assert.False(t, s.Insert(0))
	assert.False(t, s.Contains(0))
	assert.Equal(t, int64(0), s.Successor(-1))
	assert.Equal(t, int64(-1), s.Predecessor(5))
}

func TestSet_MatchesOracle(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for _, width := range []uint64{1, 63, 64, 65, 4095, 4096, 4097, 300000} {
		s, err := New(width)
		require.NoError(t, err)
		o := make(oracle, width)

		ops := 3000
		for range ops {
			pos := int64(rng.Uint64N(width))
			if rng.IntN(3) == 0 {
				assert.Equal(t, o[pos], s.Erase(pos))
				o[pos] = false
			} else {
				assert.Equal(t, !o[pos], s.Insert(pos))
				o[pos] = true
			}
		}

		var want uint64
		for _, b := range o {
			if b {
				want++
			}
		}
		require.Equal(t, want, s.Len(), "width %d", width)

		for range 2000 {
			q := int64(rng.Uint64N(width+2)) - 1
			require.Equal(t, o.successor(q), s.Successor(q), "width %d successor(%d)", width, q)
			require.Equal(t, o.predecessor(q), s.Predecessor(q), "width %d predecessor(%d)", width, q)
		}

		s.Clear()
		assert.Zero(t, s.Len())
		assert.Equal(t, int64(width), s.Successor(-1))
		assert.Equal(t, int64(-1), s.Predecessor(int64(width)))
	}
}

func TestSet_All(t *testing.T) {
	s, err := New(10000)
	require.NoError(t, err)
	want := []int64{3, 64, 65, 4096, 9999}
	for _, p := range slices.Backward(want) {
		s.Insert(p)
	}
	assert.Equal(t, want, slices.Collect(s.All()))

	var first []int64
	for p := range s.All() {
		first = append(first, p)
		if len(first) == 2 {
			break
		}
	}
	assert.Equal(t, want[:2], first)
}

func TestSet_EncodeDecode(t *testing.T) {
	s, err := New(5000)
	require.NoError(t, err)
	for _, p := range []int64{1, 77, 4999} {
		s.Insert(p)
	}

	var buf bytes.Buffer
	w := persistence.NewWriter(&buf)
	s.Encode(w)
	require.NoError(t, w.Err())

	var d Set
	require.NoError(t, d.Decode(persistence.NewReader(bytes.NewReader(buf.Bytes()))))
	assert.Equal(t, s.Width(), d.Width())
	assert.Equal(t, s.Len(), d.Len())
	assert.Equal(t, []int64{1, 77, 4999}, slices.Collect(d.All()))
	assert.Equal(t, int64(77), d.Predecessor(4999))

	t.Run("CountMismatch", func(t *testing.T) {
		corrupt := bytes.Clone(buf.Bytes())
		corrupt[8] = 9
		var c Set
		err := c.Decode(persistence.NewReader(bytes.NewReader(corrupt)))
		assert.ErrorIs(t, err, persistence.ErrFormat)
		assert.Zero(t, c.Width())
	})

	t.Run("Truncated", func(t *testing.T) {
		var c Set
		err := c.Decode(persistence.NewReader(bytes.NewReader(buf.Bytes()[:40])))
		assert.ErrorIs(t, err, persistence.ErrFormat)
	})
}

func TestSet_DecodeRejectsStaleSummary(t *testing.T) {
	var buf bytes.Buffer
	w := persistence.NewWriter(&buf)
	w.Uint64(100)
	w.Uint64(0)
	// Two level-0 words and a summary bit pointing at an empty word.
	w.Uint64s([]uint64{0, 0, 1})
	require.NoError(t, w.Err())

	var s Set
	err := s.Decode(persistence.NewReader(&buf))
	assert.ErrorIs(t, err, persistence.ErrFormat)
}

func TestSet_CloneSwap(t *testing.T) {
	s, err := New(200)
	require.NoError(t, err)
	s.Insert(150)

	c := s.Clone()
	s.Erase(150)
	assert.True(t, c.Contains(150))

	var other Set
	other.Swap(&c)
	assert.True(t, other.Contains(150))
	assert.Zero(t, c.Width())
	assert.Positive(t, other.HeapUsage())
}
