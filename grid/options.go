package grid

import "github.com/hupe1980/voxphase/internal/resource"

// Option configures a PhaseGrid.
type Option func(*options)

type options struct {
	coverage bool
	rc       *resource.Controller
}

// WithCoverage enables or disables the coverage bitmap. Default: enabled.
func WithCoverage(enabled bool) Option {
	return func(o *options) { o.coverage = enabled }
}

// WithResourceController reserves the bin array against the memory limit
// of rc. The reservation is returned by Release.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

func applyOptions(opts []Option) options {
	o := options{coverage: true}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
