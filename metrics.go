package pixelquant

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordQuantize is called after each quantization run.
	// duration is the total time taken, err is nil if successful.
	RecordQuantize(duration time.Duration, err error)

	// RecordIteration is called after each engine iteration. shift is the
	// largest centroid movement of the update pass.
	RecordIteration(iteration int, shift float64, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuantize(time.Duration, error)         {}
func (NoopMetricsCollector) RecordIteration(int, float64, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	QuantizeCount      atomic.Int64
	QuantizeErrors     atomic.Int64
	QuantizeTotalNanos atomic.Int64
	IterationCount     atomic.Int64
}

// RecordQuantize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuantize(duration time.Duration, err error) {
	b.QuantizeCount.Add(1)
	b.QuantizeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QuantizeErrors.Add(1)
	}
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(int, float64, time.Duration) {
	b.IterationCount.Add(1)
}
