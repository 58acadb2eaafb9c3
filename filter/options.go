package filter

import (
	"golang.org/x/time/rate"
)

// DefaultProgressRate limits progress callbacks per second.
const DefaultProgressRate rate.Limit = 10

// Option configures a Stream.
type Option func(*options)

type options struct {
	progress     func(float64)
	progressRate rate.Limit
	workers      int
}

// WithProgress registers fn to receive the fraction of points consumed.
// Values are non-decreasing, reported between chunks, and end with 1.0
// when the stream completes. Sources of unknown length only report 1.0.
func WithProgress(fn func(fraction float64)) Option {
	return func(o *options) { o.progress = fn }
}

// WithProgressRate caps progress callbacks per second. rate.Inf reports
// after every chunk. Default: DefaultProgressRate.
func WithProgressRate(limit rate.Limit) Option {
	return func(o *options) { o.progressRate = limit }
}

// WithWorkers classifies up to n chunks concurrently. Output order is
// unchanged. n <= 1 runs inline.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func applyOptions(opts []Option) options {
	o := options{progressRate: DefaultProgressRate, workers: 1}
	for _, fn := range opts {
		fn(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}
