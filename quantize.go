package pixelquant

import (
	"context"
	"image/color"
	"time"

	"github.com/hupe1980/pixelquant/internal/grid"
	"github.com/hupe1980/pixelquant/internal/kmeans"
)

// Result holds the outcome of a quantization run.
type Result struct {
	// Buffer is the quantized RGBA buffer. Same length as the input; the
	// input itself is never mutated.
	Buffer []byte

	// Palette holds the final cluster colors, rounded to 8-bit channels.
	Palette []color.RGBA

	// Iterations is the number of full assignment/update passes executed.
	Iterations int

	// Converged reports whether the engine stopped because every centroid
	// moved less than the tolerance, as opposed to hitting the iteration
	// cap.
	Converged bool

	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration
}

// Quantize reduces the colors of a flat RGBA pixel buffer (4 bytes per
// pixel, row-major) to at most the configured cluster quantity.
//
// The run fails fast, before any output is produced, with
// ErrInvalidDimensions when len(buf) != width*height*4 and with
// ErrInsufficientUniqueColors when the image has fewer distinct colors
// than requested clusters. A canceled context aborts between engine
// iterations with the context's error. No partial results are ever
// returned on failure.
func Quantize(ctx context.Context, buf []byte, width, height int, optFns ...Option) (*Result, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	fail := func(err error) (*Result, error) {
		err = translateError(err)
		o.metrics.RecordQuantize(time.Since(start), err)
		o.logger.LogQuantize(ctx, width, height, o.clusterQuantity, 0, err)
		return nil, err
	}

	samples, err := grid.Downsample(buf, width, height, o.xStep, o.yStep)
	if err != nil {
		return fail(err)
	}

	unique := kmeans.Dedup(samples, grid.Channels)

	centroids, err := kmeans.InitCentroids(unique, grid.Channels, o.clusterQuantity, o.rng)
	if err != nil {
		return fail(err)
	}

	onIteration := func(iteration int, shift float64, elapsed time.Duration) {
		o.metrics.RecordIteration(iteration, shift, elapsed)
		if o.onIteration != nil {
			o.onIteration(iteration, shift, elapsed)
		}
	}

	run, err := kmeans.Run(ctx, samples, grid.Channels, centroids, o.maxIterations, o.tolerance, onIteration)
	if err != nil {
		return fail(err)
	}

	// Relabel: every sample takes its cluster's centroid color.
	quantized := make([]float64, len(samples))
	for i, c := range run.Assignments {
		copy(quantized[i*grid.Channels:(i+1)*grid.Channels], run.Centroids[c*grid.Channels:(c+1)*grid.Channels])
	}

	out, err := grid.Recompose(quantized, width, height, o.xStep, o.yStep)
	if err != nil {
		return fail(err)
	}

	res := &Result{
		Buffer:     out,
		Palette:    palette(run.Centroids),
		Iterations: run.Iterations,
		Converged:  run.State == kmeans.StateConverged,
		Elapsed:    time.Since(start),
	}

	o.metrics.RecordQuantize(res.Elapsed, nil)
	o.logger.LogQuantize(ctx, width, height, o.clusterQuantity, res.Iterations, nil)

	return res, nil
}

func palette(centroids []float64) []color.RGBA {
	k := len(centroids) / grid.Channels
	p := make([]color.RGBA, k)
	for i := range p {
		c := centroids[i*grid.Channels : (i+1)*grid.Channels]
		p[i] = color.RGBA{
			R: grid.RoundChannel(c[0]),
			G: grid.RoundChannel(c[1]),
			B: grid.RoundChannel(c[2]),
			A: grid.RoundChannel(c[3]),
		}
	}
	return p
}
