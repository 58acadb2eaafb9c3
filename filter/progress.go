package filter

import (
	"golang.org/x/time/rate"

	"github.com/hupe1980/voxphase/pointcloud"
)

type progress struct {
	fn    func(float64)
	lim   *rate.Limiter
	total uint64
	known bool
	done  uint64
	last  float64
}

func newProgress(o options, src pointcloud.Source) *progress {
	p := &progress{fn: o.progress}
	if p.fn == nil {
		return p
	}
	p.total, p.known = src.Len()
	p.lim = rate.NewLimiter(o.progressRate, 1)
	return p
}

func (p *progress) advance(n int) {
	if p.fn == nil {
		return
	}
	p.done += uint64(n)
	if !p.known || p.total == 0 {
		return
	}
	f := float64(p.done) / float64(p.total)
	if f >= 1 || f <= p.last {
		return
	}
	if p.lim.Allow() {
		p.last = f
		p.fn(f)
	}
}

func (p *progress) finish() {
	if p.fn != nil {
		p.fn(1)
	}
}
