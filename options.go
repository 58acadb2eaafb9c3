package voxphase

import (
	"log/slog"

	"github.com/hupe1980/voxphase/codec"
	"github.com/hupe1980/voxphase/internal/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	resources        resource.Config
	snapshotCodec    codec.Codec
	coverage         bool
	maxDecodedSize   int64
}

// Option configures an Analysis.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &voxphase.BasicMetricsCollector{}
//	a := voxphase.New(voxphase.WithMetricsCollector(metrics))
//	// ... load, filter ...
//	stats := metrics.GetStats()
//	fmt.Printf("Filters: %d, matched: %d\n", stats.FilterCount, stats.FilterMatched)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
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

// WithMemoryLimit caps the memory held by loaded grids. A load whose grid
// does not fit fails with ErrResourceExhausted. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.resources.MemoryLimitBytes = bytes
	}
}

// WithIOLimit throttles ranged reads from remote blob stores.
// 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.resources.IOLimitBytesPerSec = bytesPerSec
	}
}

// WithSnapshotCodec sets the compression used by SaveSnapshot.
// Default: codec.Zstd{}.
func WithSnapshotCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.None{}
		}
		o.snapshotCodec = c
	}
}

// WithCoverage enables or disables the coverage bitmap of loaded grids.
// Default: enabled.
func WithCoverage(enabled bool) Option {
	return func(o *options) {
		o.coverage = enabled
	}
}

// WithMaxDecodedSize caps the decompressed size of compressed voxel files.
func WithMaxDecodedSize(bytes int64) Option {
	return func(o *options) {
		o.maxDecodedSize = bytes
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		snapshotCodec:    codec.Zstd{},
		coverage:         true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
