// Package resource tracks the two resources a voxphase load can exhaust:
// memory for phase grids and read bandwidth against remote blob stores.
//
//   - Memory: AcquireMemory is non-blocking and fails fast with
//     ErrMemoryLimitExceeded; the caller decides whether to give up.
//   - IO: AcquireIO waits on a token bucket; NewRateLimitedReaderAt wraps a
//     context-aware ReaderAt so parsing a voxel file from S3 does not
//     saturate the link.
//
// Typical use around a grid allocation:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   4 << 30,
//	    IOLimitBytesPerSec: 200 << 20,
//	})
//	if err := rc.AcquireMemory(gridBytes); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(gridBytes)
//
// All methods are safe for concurrent use, and a nil *Controller is valid:
// every method becomes a no-op.
package resource
