// Package promcollector exports index metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	ix, err := sdci.New(4, 12, 4, sdci.WithMetricsCollector(promcollector.New(reg, "sdci")))
package promcollector

import (
	"time"

	"github.com/hupe1980/sdci"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Collector implements sdci.MetricsCollector on top of Prometheus metrics.
type Collector struct {
	appends        *prometheus.CounterVec
	appendSymbols  prometheus.Counter
	appendDuration prometheus.Histogram

	locates        *prometheus.CounterVec
	locateMatches  prometheus.Histogram
	locateDuration prometheus.Histogram

	extracts       prometheus.Counter
	extractSymbols prometheus.Counter

	snapshots     *prometheus.CounterVec
	snapshotBytes prometheus.Histogram
	loads         *prometheus.CounterVec
	ioDuration    *prometheus.HistogramVec
}

var _ sdci.MetricsCollector = (*Collector)(nil)

// New registers the index metrics with reg under namespace.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		appends: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_total",
			Help:      "Append calls by status.",
		}, []string{"status"}),
		appendSymbols: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_symbols_total",
			Help:      "Symbols appended to the text.",
		}),
		appendDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "append_duration_seconds",
			Help:      "Append latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		locates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locate_total",
			Help:      "Locate and count queries by status.",
		}, []string{"status"}),
		locateMatches: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "locate_matches",
			Help:      "Occurrences reported per successful query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		locateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "locate_duration_seconds",
			Help:      "Locate latency.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		extracts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_total",
			Help:      "Extract and retrieve calls.",
		}),
		extractSymbols: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_symbols_total",
			Help:      "Symbols decoded by extract and retrieve.",
		}),
		snapshots: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_total",
			Help:      "Snapshot saves by status.",
		}, []string{"status"}),
		snapshotBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes",
			Help:      "Size of saved snapshots.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_total",
			Help:      "Snapshot loads by status.",
		}, []string{"status"}),
		ioDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_io_duration_seconds",
			Help:      "Snapshot save and load latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusOK
}

// RecordAppend implements sdci.MetricsCollector.
func (c *Collector) RecordAppend(symbols int, d time.Duration, err error) {
	c.appends.WithLabelValues(status(err)).Inc()
	c.appendDuration.Observe(d.Seconds())
	if err == nil {
		c.appendSymbols.Add(float64(symbols))
	}
}

// RecordLocate implements sdci.MetricsCollector.
func (c *Collector) RecordLocate(_ int, matches uint64, d time.Duration, err error) {
	c.locates.WithLabelValues(status(err)).Inc()
	c.locateDuration.Observe(d.Seconds())
	if err == nil {
		c.locateMatches.Observe(float64(matches))
	}
}

// RecordExtract implements sdci.MetricsCollector.
func (c *Collector) RecordExtract(length int, _ time.Duration) {
	c.extracts.Inc()
	c.extractSymbols.Add(float64(length))
}

// RecordSnapshot implements sdci.MetricsCollector.
func (c *Collector) RecordSnapshot(bytes int64, d time.Duration, err error) {
	c.snapshots.WithLabelValues(status(err)).Inc()
	c.ioDuration.WithLabelValues("save").Observe(d.Seconds())
	if err == nil {
		c.snapshotBytes.Observe(float64(bytes))
	}
}

// RecordLoad implements sdci.MetricsCollector.
func (c *Collector) RecordLoad(_ int64, d time.Duration, err error) {
	c.loads.WithLabelValues(status(err)).Inc()
	c.ioDuration.WithLabelValues("load").Observe(d.Seconds())
}
