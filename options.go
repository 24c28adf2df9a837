package pixelquant

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// Defaults applied by Quantize when the corresponding option is not set.
// Each unset option takes its default independently.
const (
	DefaultXStep           = 1
	DefaultYStep           = 1
	DefaultClusterQuantity = 2
	DefaultMaxIterations   = 100
	DefaultTolerance       = 0.1
)

// IterationFunc observes one completed engine iteration: its 0-based
// index, the largest centroid shift of the update pass, and the pass
// duration.
type IterationFunc func(iteration int, shift float64, elapsed time.Duration)

type options struct {
	xStep           int
	yStep           int
	clusterQuantity int
	maxIterations   int
	tolerance       float64
	rng             *rand.Rand
	onIteration     IterationFunc
	logger          *Logger
	metrics         MetricsCollector
}

func defaultOptions() *options {
	return &options{
		xStep:           DefaultXStep,
		yStep:           DefaultYStep,
		clusterQuantity: DefaultClusterQuantity,
		maxIterations:   DefaultMaxIterations,
		tolerance:       DefaultTolerance,
		logger:          NoopLogger(),
		metrics:         NoopMetricsCollector{},
	}
}

func (o *options) validate() error {
	if o.xStep < 1 {
		return fmt.Errorf("xStep must be >= 1, got %d", o.xStep)
	}
	if o.yStep < 1 {
		return fmt.Errorf("yStep must be >= 1, got %d", o.yStep)
	}
	if o.clusterQuantity < 1 {
		return fmt.Errorf("clusterQuantity must be >= 1, got %d", o.clusterQuantity)
	}
	if o.maxIterations < 1 {
		return fmt.Errorf("maxIterations must be >= 1, got %d", o.maxIterations)
	}
	if o.tolerance < 0 {
		return errors.New("tolerance must be >= 0")
	}
	return nil
}

// Option configures a single Quantize call.
type Option func(*options)

// WithXStep sets the horizontal sampling block size in source pixels.
// Larger values trade fidelity for speed. Default 1 (no downsampling).
func WithXStep(n int) Option {
	return func(o *options) {
		o.xStep = n
	}
}

// WithYStep sets the vertical sampling block size in source pixels.
// Default 1 (no downsampling).
func WithYStep(n int) Option {
	return func(o *options) {
		o.yStep = n
	}
}

// WithClusterQuantity sets the number of colors in the result. The image
// must contain at least this many distinct colors after sampling,
// otherwise Quantize fails with ErrInsufficientUniqueColors. Default 2.
func WithClusterQuantity(k int) Option {
	return func(o *options) {
		o.clusterQuantity = k
	}
}

// WithMaxIterations sets the hard cap on assignment/update passes. The
// engine stops at the cap even without convergence. Default 100.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithTolerance sets the convergence threshold: the engine stops once
// every centroid moves strictly less than this Euclidean distance in a
// single iteration. Default 0.1.
func WithTolerance(t float64) Option {
	return func(o *options) {
		o.tolerance = t
	}
}

// WithRand sets the random source used for centroid seeding. Pass a
// seeded source for reproducible cluster selection. If nil or unset, the
// package-level source is used.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithIterationHook registers an optional per-iteration callback, e.g.
// for progress reporting. It runs synchronously on the engine goroutine;
// keep it cheap.
func WithIterationHook(fn IterationFunc) Option {
	return func(o *options) {
		o.onIteration = fn
	}
}

// WithLogger configures structured logging for the run.
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

// WithMetricsCollector configures a metrics collector for the run.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}
