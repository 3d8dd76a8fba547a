package sdci

import (
	"errors"
	"slices"
	"testing"

	"github.com/hupe1980/sdci/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkLocate(t *testing.T, ix *Index, text, pattern []uint64) {
	t.Helper()

	got, err := ix.Locate(pattern)
	require.NoError(t, err)
	slices.Sort(got)

	want := testutil.NaiveLocate(text, pattern)
	if len(want) == 0 {
		require.Empty(t, got, "sigma=%d q=%d k=%d n=%d pattern=%v", ix.sigma, ix.q, ix.k, len(text), pattern)
		return
	}
	require.Equal(t, want, got, "sigma=%d q=%d k=%d n=%d pattern=%v", ix.sigma, ix.q, ix.k, len(text), pattern)
}

func TestLocate_BruteForce(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for sigma := uint64(1); sigma <= 5; sigma++ {
		for q := uint64(1); q <= 6; q++ {
			for k := uint64(1); k <= q; k++ {
				for _, n := range []int{0, 1, int(q) - 1, int(q), int(q) + 1, 2*int(q) + 1, 97} {
					text := rng.Text(max(n, 0), sigma)
					ix := newIndex(t, sigma, q, k, text)

					maxLen := int(ix.MaxPatternLen())
					for m := 1; m <= maxLen; m++ {
						for range 4 {
							checkLocate(t, ix, text, rng.Pattern(text, m, sigma))
						}
					}
				}
			}
		}
	}
}

func TestLocate_RepetitiveTexts(t *testing.T) {
	rng := testutil.NewRNG(99)

	for _, p := range [][3]uint64{{2, 8, 3}, {4, 6, 3}, {3, 5, 5}, {4, 7, 1}} {
		sigma, q, k := p[0], p[1], p[2]
		texts := [][]uint64{
			rng.ZipfText(400, sigma, 1.5),
			rng.RepeatText(400, 5, sigma),
			rng.RepeatText(400, int(q), sigma),
			make([]uint64, 400),
		}
		for _, text := range texts {
			ix := newIndex(t, sigma, q, k, text)
			for m := 1; m <= int(ix.MaxPatternLen()); m++ {
				for range 8 {
					checkLocate(t, ix, text, rng.Pattern(text, m, sigma))
				}
			}
		}
	}
}

func TestLocate_WhileGrowing(t *testing.T) {
	rng := testutil.NewRNG(7)
	text := rng.Text(200, 3)

	ix, err := New(3, 5, 2)
	require.NoError(t, err)
	for i := 0; i < len(text); i += 7 {
		end := min(i+7, len(text))
		require.NoError(t, ix.Append(text[i:end]))
		for m := 1; m <= int(ix.MaxPatternLen()); m++ {
			checkLocate(t, ix, text[:end], rng.Pattern(text[:end], m, 3))
		}
	}
}

func TestLocate_EdgeCases(t *testing.T) {
	ix := newIndex(t, 4, 6, 3, sym("abcadccbacbcabcadb"))

	t.Run("EmptyPattern", func(t *testing.T) {
		got, err := ix.Locate(nil)
		require.NoError(t, err)
		assert.Empty(t, got)

		n, err := ix.Count([]uint64{})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), n)
	})

	t.Run("SymbolOutsideAlphabet", func(t *testing.T) {
		got, err := ix.Locate([]uint64{1, 4})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("OutsideSymbolBeforeLengthCheck", func(t *testing.T) {
		got, err := ix.Locate([]uint64{9, 0, 0, 0, 0, 0, 0})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("PatternTooLong", func(t *testing.T) {
		_, err := ix.Locate(sym("abcad"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLength)

		var lenErr *PatternLengthError
		require.True(t, errors.As(err, &lenErr))
		assert.Equal(t, uint64(5), lenErr.Length)
		assert.Equal(t, uint64(4), lenErr.Max)
		assert.Contains(t, err.Error(), "must not exceed 4")

		_, err = ix.Count(sym("abcad"))
		assert.ErrorIs(t, err, ErrLength)
		_, err = ix.LocateBitmap(sym("abcad"))
		assert.ErrorIs(t, err, ErrLength)
	})

	t.Run("MaxPatternLen", func(t *testing.T) {
		got, err := ix.Locate(sym("abca"))
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint64{0, 12}, got)
	})

	t.Run("PatternLongerThanText", func(t *testing.T) {
		short := newIndex(t, 4, 6, 3, sym("ab"))
		got, err := short.Locate(sym("abc"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("TextShorterThanQ", func(t *testing.T) {
		short := newIndex(t, 4, 6, 3, sym("abab"))
		got, err := short.Locate(sym("ab"))
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint64{0, 2}, got)
	})
}

func TestLocateFunc_EarlyStop(t *testing.T) {
	ix := newIndex(t, 4, 6, 3, sym("abcadccbacbcabcadb"))

	var calls int
	err := ix.LocateFunc(sym("bca"), func(uint64) bool {
		calls++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	err = ix.LocateFunc(sym("a"), func(uint64) bool {
		calls++
		return calls < 3
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestLocateBitmap(t *testing.T) {
	rng := testutil.NewRNG(3)
	text := rng.Text(500, 4)
	ix := newIndex(t, 4, 8, 3, text)

	for range 20 {
		pattern := rng.Pattern(text, 1+rng.Intn(int(ix.MaxPatternLen())), 4)
		bm, err := ix.LocateBitmap(pattern)
		require.NoError(t, err)

		want := testutil.NaiveLocate(text, pattern)
		assert.Equal(t, uint64(len(want)), bm.GetCardinality())
		if len(want) > 0 {
			assert.Equal(t, want, bm.ToArray())
		}

		n, err := ix.Count(pattern)
		require.NoError(t, err)
		assert.Equal(t, uint64(len(want)), n)
	}
}
