package voxfile

import "github.com/hupe1980/voxphase/internal/resource"

// Option configures Parse.
type Option func(*options)

type options struct {
	rc             *resource.Controller
	maxDecodedSize int64
}

func defaultOptions() options {
	return options{maxDecodedSize: 16 << 30}
}

// WithResourceController charges ranged blob reads against the IO limit
// of rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

// WithMaxDecodedSize caps the size of a decompressed container.
// Default: 16 GiB.
func WithMaxDecodedSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDecodedSize = n
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
