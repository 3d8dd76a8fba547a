package sdci

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see package metrics/promcollector for a ready-made adapter.
type MetricsCollector interface {
	// RecordAppend is called after each Append, AppendSeq or Assign.
	// symbols is the number of symbols applied, err is nil if successful.
	RecordAppend(symbols int, duration time.Duration, err error)

	// RecordLocate is called after each locate or count query.
	// matches is the number of occurrences reported.
	RecordLocate(patternLen int, matches uint64, duration time.Duration, err error)

	// RecordExtract is called after each Extract or Retrieve.
	// length is the number of symbols returned.
	RecordExtract(length int, duration time.Duration)

	// RecordSnapshot is called after each snapshot save.
	RecordSnapshot(bytes int64, duration time.Duration, err error)

	// RecordLoad is called after each snapshot load.
	RecordLoad(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAppend(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordLocate(int, uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordExtract(int, time.Duration)               {}
func (NoopMetricsCollector) RecordSnapshot(int64, time.Duration, error)     {}
func (NoopMetricsCollector) RecordLoad(int64, time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AppendCount      atomic.Int64
	AppendErrors     atomic.Int64
	AppendSymbols    atomic.Int64
	LocateCount      atomic.Int64
	LocateErrors     atomic.Int64
	LocateMatches    atomic.Int64
	LocateTotalNanos atomic.Int64
	ExtractCount     atomic.Int64
	ExtractSymbols   atomic.Int64
	SnapshotCount    atomic.Int64
	SnapshotErrors   atomic.Int64
	SnapshotBytes    atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
}

// RecordAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppend(symbols int, _ time.Duration, err error) {
	b.AppendCount.Add(1)
	b.AppendSymbols.Add(int64(symbols))
	if err != nil {
		b.AppendErrors.Add(1)
	}
}

// RecordLocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLocate(_ int, matches uint64, duration time.Duration, err error) {
	b.LocateCount.Add(1)
	b.LocateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LocateErrors.Add(1)
		return
	}
	b.LocateMatches.Add(int64(matches))
}

// RecordExtract implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExtract(length int, _ time.Duration) {
	b.ExtractCount.Add(1)
	b.ExtractSymbols.Add(int64(length))
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(bytes int64, _ time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ int64, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AppendCount:    b.AppendCount.Load(),
		AppendErrors:   b.AppendErrors.Load(),
		AppendSymbols:  b.AppendSymbols.Load(),
		LocateCount:    b.LocateCount.Load(),
		LocateErrors:   b.LocateErrors.Load(),
		LocateMatches:  b.LocateMatches.Load(),
		LocateAvgNanos: b.getAvgLocateNanos(),
		ExtractCount:   b.ExtractCount.Load(),
		ExtractSymbols: b.ExtractSymbols.Load(),
		SnapshotCount:  b.SnapshotCount.Load(),
		SnapshotErrors: b.SnapshotErrors.Load(),
		SnapshotBytes:  b.SnapshotBytes.Load(),
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgLocateNanos() int64 {
	count := b.LocateCount.Load()
	if count == 0 {
		return 0
	}
	return b.LocateTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AppendCount    int64
	AppendErrors   int64
	AppendSymbols  int64
	LocateCount    int64
	LocateErrors   int64
	LocateMatches  int64
	LocateAvgNanos int64
	ExtractCount   int64
	ExtractSymbols int64
	SnapshotCount  int64
	SnapshotErrors int64
	SnapshotBytes  int64
	LoadCount      int64
	LoadErrors     int64
}
