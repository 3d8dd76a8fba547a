package sdci

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector(t *testing.T) {
	m := &BasicMetricsCollector{}

	m.RecordAppend(10, time.Millisecond, nil)
	m.RecordAppend(0, time.Millisecond, errors.New("bad"))
	m.RecordLocate(3, 4, 100*time.Nanosecond, nil)
	m.RecordLocate(9, 0, 300*time.Nanosecond, errors.New("too long"))
	m.RecordExtract(7, time.Microsecond)
	m.RecordSnapshot(512, time.Millisecond, nil)
	m.RecordSnapshot(0, time.Millisecond, errors.New("disk full"))
	m.RecordLoad(512, time.Millisecond, nil)
	m.RecordLoad(0, time.Millisecond, errors.New("corrupt"))

	s := m.GetStats()
	assert.Equal(t, int64(2), s.AppendCount)
	assert.Equal(t, int64(1), s.AppendErrors)
	assert.Equal(t, int64(10), s.AppendSymbols)
	assert.Equal(t, int64(2), s.LocateCount)
	assert.Equal(t, int64(1), s.LocateErrors)
	assert.Equal(t, int64(4), s.LocateMatches)
	assert.Equal(t, int64(200), s.LocateAvgNanos)
	assert.Equal(t, int64(1), s.ExtractCount)
	assert.Equal(t, int64(7), s.ExtractSymbols)
	assert.Equal(t, int64(2), s.SnapshotCount)
	assert.Equal(t, int64(1), s.SnapshotErrors)
	assert.Equal(t, int64(512), s.SnapshotBytes)
	assert.Equal(t, int64(2), s.LoadCount)
	assert.Equal(t, int64(1), s.LoadErrors)
}

func TestMetrics_IndexOperations(t *testing.T) {
	m := &BasicMetricsCollector{}
	ix, err := New(4, 6, 3, WithMetricsCollector(m))
	require.NoError(t, err)

	require.NoError(t, ix.Append(sym("abcadccbacbcabcadb")))
	assert.Error(t, ix.Append([]uint64{5}))

	_, err = ix.Locate(sym("bca"))
	require.NoError(t, err)
	_, err = ix.Locate(sym("abcadc"))
	require.Error(t, err)

	_ = ix.Extract(0, 5)
	_ = ix.Retrieve()

	data, err := ix.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, ix.UnmarshalBinary(data))

	s := m.GetStats()
	assert.Equal(t, int64(2), s.AppendCount)
	assert.Equal(t, int64(1), s.AppendErrors)
	assert.Equal(t, int64(2), s.LocateCount)
	assert.Equal(t, int64(1), s.LocateErrors)
	assert.Equal(t, int64(3), s.LocateMatches)
	assert.Equal(t, int64(2), s.ExtractCount)
	assert.Equal(t, int64(23), s.ExtractSymbols)
	assert.Equal(t, int64(1), s.LoadCount)
	assert.Equal(t, int64(0), s.LoadErrors)
}

func TestMetrics_NilCollector(t *testing.T) {
	ix, err := New(4, 6, 3, WithMetricsCollector(nil), WithLogger(nil))
	require.NoError(t, err)
	require.NoError(t, ix.Append(sym("abcabc")))

	_, err = ix.Count(sym("abc"))
	require.NoError(t, err)
}
