package sdci

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestLogger_Lifecycle(t *testing.T) {
	logger, buf := captureLogger(slog.LevelDebug)

	ix, err := New(4, 6, 3, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, ix.Append(sym("abcadccbacbcabcadb")))

	data, err := ix.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, ix.UnmarshalBinary(data))

	recs := logRecords(t, buf)
	require.NotEmpty(t, recs)

	var msgs []string
	for _, r := range recs {
		msgs = append(msgs, r["msg"].(string))
	}
	assert.Contains(t, msgs, "initialize completed")
	assert.Contains(t, msgs, "snapshot loaded")
	// Successful appends are not logged.
	assert.NotContains(t, msgs, "append completed")
}

func TestLogger_Failures(t *testing.T) {
	logger, buf := captureLogger(slog.LevelInfo)

	ix, err := New(4, 6, 3, WithLogger(logger))
	require.NoError(t, err)

	_ = ix.Append([]uint64{8})
	_ = ix.Initialize(4, 2, 3)
	_, _ = ix.ReadFrom(strings.NewReader("nope"))

	recs := logRecords(t, buf)
	var msgs []string
	for _, r := range recs {
		msgs = append(msgs, r["msg"].(string))
	}
	assert.Contains(t, msgs, "append failed")
	assert.Contains(t, msgs, "initialize failed")
	assert.Contains(t, msgs, "load failed, index reset")
	assert.NotContains(t, msgs, "initialize completed")
}

func TestLogger_Fields(t *testing.T) {
	logger, buf := captureLogger(slog.LevelDebug)

	logger.WithParams(4, 6, 3).WithTextLen(18).Info("state")

	recs := logRecords(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, float64(4), recs[0]["sigma"])
	assert.Equal(t, float64(6), recs[0]["q"])
	assert.Equal(t, float64(3), recs[0]["k"])
	assert.Equal(t, float64(18), recs[0]["text_len"])
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	l.LogReset(t.Context(), "append", nil)
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
}
