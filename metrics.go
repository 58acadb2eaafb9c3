package voxphase

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordLoad is called after each grid load. records is the number of
	// voxel records ingested (0 for snapshots).
	RecordLoad(records int, duration time.Duration, err error)

	// RecordFilter is called when a filter stream ends, whether it was
	// drained, abandoned or failed.
	RecordFilter(scanned, matched uint64, duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot save.
	RecordSnapshot(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)              {}
func (NoopMetricsCollector) RecordFilter(uint64, uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordSnapshot(time.Duration, error)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadRecords      atomic.Int64
	LoadTotalNanos   atomic.Int64
	FilterCount      atomic.Int64
	FilterErrors     atomic.Int64
	FilterScanned    atomic.Uint64
	FilterMatched    atomic.Uint64
	FilterTotalNanos atomic.Int64
	SnapshotCount    atomic.Int64
	SnapshotErrors   atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(records int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadRecords.Add(int64(records))
}

// RecordFilter implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFilter(scanned, matched uint64, duration time.Duration, err error) {
	b.FilterCount.Add(1)
	b.FilterScanned.Add(scanned)
	b.FilterMatched.Add(matched)
	b.FilterTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FilterErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(_ time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadRecords:    b.LoadRecords.Load(),
		LoadAvgNanos:   avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		FilterCount:    b.FilterCount.Load(),
		FilterErrors:   b.FilterErrors.Load(),
		FilterScanned:  b.FilterScanned.Load(),
		FilterMatched:  b.FilterMatched.Load(),
		FilterAvgNanos: avg(b.FilterTotalNanos.Load(), b.FilterCount.Load()),
		SnapshotCount:  b.SnapshotCount.Load(),
		SnapshotErrors: b.SnapshotErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount      int64
	LoadErrors     int64
	LoadRecords    int64
	LoadAvgNanos   int64
	FilterCount    int64
	FilterErrors   int64
	FilterScanned  uint64
	FilterMatched  uint64
	FilterAvgNanos int64
	SnapshotCount  int64
	SnapshotErrors int64
}
