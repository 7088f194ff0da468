package biclique

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting search metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Record methods are called concurrently from search workers and must be
// safe for concurrent use.
type MetricsCollector interface {
	// RecordIteration is called after each iteration with the number of
	// delta candidates it processed.
	RecordIteration(iteration int, candidates uint64, duration time.Duration)

	// RecordDifferential is called after each trail construction.
	RecordDifferential(phase Phase, duration time.Duration, err error)

	// RecordComparison is called after each independence test.
	RecordComparison(independent bool)

	// RecordBiclique is called for every independent pair; accepted reports
	// whether it entered the survivor set.
	RecordBiclique(score int, accepted bool)

	// RecordSearch is called after each window search.
	RecordSearch(found int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIteration(int, uint64, time.Duration)     {}
func (NoopMetricsCollector) RecordDifferential(Phase, time.Duration, error) {}
func (NoopMetricsCollector) RecordComparison(bool)                          {}
func (NoopMetricsCollector) RecordBiclique(int, bool)                       {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IterationCount      atomic.Int64
	IterationCandidates atomic.Int64
	ForwardCount        atomic.Int64
	BackwardCount       atomic.Int64
	DifferentialErrors  atomic.Int64
	DifferentialNanos   atomic.Int64
	ComparisonCount     atomic.Int64
	IndependentCount    atomic.Int64
	BicliqueCount       atomic.Int64
	AcceptedCount       atomic.Int64
	SearchCount         atomic.Int64
	SearchErrors        atomic.Int64
	SearchTotalNanos    atomic.Int64
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(_ int, candidates uint64, _ time.Duration) {
	b.IterationCount.Add(1)
	b.IterationCandidates.Add(int64(candidates))
}

// RecordDifferential implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDifferential(phase Phase, duration time.Duration, err error) {
	if err != nil {
		b.DifferentialErrors.Add(1)
		return
	}
	if phase == DeltaPhase {
		b.ForwardCount.Add(1)
	} else {
		b.BackwardCount.Add(1)
	}
	b.DifferentialNanos.Add(duration.Nanoseconds())
}

// RecordComparison implements MetricsCollector.
func (b *BasicMetricsCollector) RecordComparison(independent bool) {
	b.ComparisonCount.Add(1)
	if independent {
		b.IndependentCount.Add(1)
	}
}

// RecordBiclique implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBiclique(_ int, accepted bool) {
	b.BicliqueCount.Add(1)
	if accepted {
		b.AcceptedCount.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	forward, backward := b.ForwardCount.Load(), b.BackwardCount.Load()
	return BasicMetricsStats{
		IterationCount:       b.IterationCount.Load(),
		IterationCandidates:  b.IterationCandidates.Load(),
		ForwardCount:         forward,
		BackwardCount:        backward,
		DifferentialErrors:   b.DifferentialErrors.Load(),
		DifferentialAvgNanos: avg(b.DifferentialNanos.Load(), forward+backward),
		ComparisonCount:      b.ComparisonCount.Load(),
		IndependentCount:     b.IndependentCount.Load(),
		BicliqueCount:        b.BicliqueCount.Load(),
		AcceptedCount:        b.AcceptedCount.Load(),
		SearchCount:          b.SearchCount.Load(),
		SearchErrors:         b.SearchErrors.Load(),
		SearchAvgNanos:       avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
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
	IterationCount       int64
	IterationCandidates  int64
	ForwardCount         int64
	BackwardCount        int64
	DifferentialErrors   int64
	DifferentialAvgNanos int64
	ComparisonCount      int64
	IndependentCount     int64
	BicliqueCount        int64
	AcceptedCount        int64
	SearchCount          int64
	SearchErrors         int64
	SearchAvgNanos       int64
}
