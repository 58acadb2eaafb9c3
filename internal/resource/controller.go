package resource

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for grid memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// IOLimitBytesPerSec is the maximum read throughput against blob stores.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller enforces a Config.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the bucket are split into bucket-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// ReaderAt is a context-aware io.ReaderAt, the shape of blobstore.Blob reads.
type ReaderAt interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
}

type rateLimitedReaderAt struct {
	inner ReaderAt
	c     *Controller
}

// NewRateLimitedReaderAt charges every read against the IO limit.
// With a nil controller or no IO limit, r is returned unchanged.
func NewRateLimitedReaderAt(r ReaderAt, c *Controller) ReaderAt {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &rateLimitedReaderAt{inner: r, c: c}
}

func (r *rateLimitedReaderAt) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := r.c.AcquireIO(ctx, len(p)); err != nil {
		return 0, err
	}
	return r.inner.ReadAt(ctx, p, off)
}

var _ io.ReaderAt = (*syncReaderAt)(nil)

// syncReaderAt adapts a ReaderAt back to io.ReaderAt with a fixed context.
type syncReaderAt struct {
	ctx context.Context
	r   ReaderAt
}

// WithContext binds ctx to r, yielding a plain io.ReaderAt.
func WithContext(ctx context.Context, r ReaderAt) io.ReaderAt {
	return &syncReaderAt{ctx: ctx, r: r}
}

func (s *syncReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return s.r.ReadAt(s.ctx, p, off)
}
