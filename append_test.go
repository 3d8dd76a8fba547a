package sdci

import (
	"errors"
	"slices"
	"testing"

	"github.com/hupe1980/sdci/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_InvalidSymbolLeavesIndexUnchanged(t *testing.T) {
	ix := newIndex(t, 4, 6, 3, sym("abcadccbacbcabcadb"))

	err := ix.Append([]uint64{0, 1, 7, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var symErr *InvalidSymbolError
	require.True(t, errors.As(err, &symErr))
	assert.Equal(t, uint64(7), symErr.Symbol)
	assert.Equal(t, uint64(4), symErr.AlphabetSize)
	assert.Contains(t, err.Error(), "alphabet size is 4")

	assert.Equal(t, uint64(18), ix.Len())
	assert.Equal(t, sym("abcadccbacbcabcadb"), ix.Retrieve())
}

func TestAppendSeq(t *testing.T) {
	ix, err := New(4, 6, 3)
	require.NoError(t, err)

	require.NoError(t, ix.AppendSeq(slices.Values(sym("abcadccbacbcabcadb"))))
	got, err := ix.Locate(sym("bca"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{1, 10, 13}, got)

	// The prefix before an invalid symbol is kept.
	err = ix.AppendSeq(slices.Values([]uint64{2, 0, 9, 3}))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, uint64(20), ix.Len())
	assert.Equal(t, sym("abcadccbacbcabcadbca"), ix.Retrieve())

	var empty Index
	assert.NoError(t, empty.AppendSeq(slices.Values([]uint64(nil))))
	assert.ErrorIs(t, empty.AppendSeq(slices.Values([]uint64{0})), ErrNotInitialized)
}

func TestAppend_SplitEquivalence(t *testing.T) {
	rng := testutil.NewRNG(42)

	for _, p := range [][3]uint64{{4, 6, 3}, {2, 5, 1}, {3, 4, 4}, {5, 3, 2}} {
		sigma, q, k := p[0], p[1], p[2]
		text := rng.Text(300, sigma)

		whole := newIndex(t, sigma, q, k, text)

		split, err := New(sigma, q, k)
		require.NoError(t, err)
		for rest := text; len(rest) > 0; {
			n := min(1+rng.Intn(20), len(rest))
			if rng.Intn(2) == 0 {
				require.NoError(t, split.Append(rest[:n]))
			} else {
				require.NoError(t, split.AppendSeq(slices.Values(rest[:n])))
			}
			rest = rest[n:]
		}

		seq, err := New(sigma, q, k)
		require.NoError(t, err)
		require.NoError(t, seq.AppendSeq(slices.Values(text)))

		for _, ix := range []*Index{split, seq} {
			require.Equal(t, whole.Len(), ix.Len())
			require.Equal(t, text, ix.Retrieve())
			for range 30 {
				pattern := rng.Pattern(text, 1+rng.Intn(int(q-k+1)), sigma)
				want, err := whole.Locate(pattern)
				require.NoError(t, err)
				have, err := ix.Locate(pattern)
				require.NoError(t, err)
				assert.ElementsMatch(t, want, have)
			}
		}
	}
}

func TestAppend_OneSymbolAtATime(t *testing.T) {
	text := sym("abcadccbacbcabcadbcaddacbd")
	ix, err := New(4, 6, 3)
	require.NoError(t, err)

	for i, c := range text {
		require.NoError(t, ix.Append([]uint64{c}))
		got, err := ix.Locate(sym("bca"))
		require.NoError(t, err)
		assert.ElementsMatch(t, testutil.NaiveLocate(text[:i+1], sym("bca")), got, "after %d symbols", i+1)
	}
}
