package sdci

import (
	"log/slog"

	"github.com/hupe1980/sdci/persistence"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	expectedLength   uint64
}

// Option configures New.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &sdci.BasicMetricsCollector{}
//	ix, _ := sdci.New(4, 6, 3, sdci.WithMetricsCollector(metrics))
//	// ... use ix ...
//	stats := metrics.GetStats()
//	fmt.Printf("Locates: %d, Avg latency: %dns\n", stats.LocateCount, stats.LocateAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for lifecycle events.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := sdci.NewJSONLogger(slog.LevelInfo)
//	ix, _ := sdci.New(4, 6, 3, sdci.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithExpectedLength reserves sample capacity for a text of n symbols.
// The hint is ignored if the reservation fails.
func WithExpectedLength(n uint64) Option {
	return func(o *options) {
		o.expectedLength = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

type saveOptions struct {
	compression persistence.Compression
}

// SaveOption configures snapshot writes.
type SaveOption func(*saveOptions)

// WithCompression wraps the snapshot in a compressed frame.
// Loading detects the frame automatically.
func WithCompression(c persistence.Compression) SaveOption {
	return func(o *saveOptions) {
		o.compression = c
	}
}

func applySaveOptions(optFns []SaveOption) saveOptions {
	var o saveOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
