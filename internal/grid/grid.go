// Package grid converts between full-resolution RGBA pixel buffers and
// row-major grids of block-averaged color samples.
//
// A grid cell covers an xStep×yStep block of source pixels; cells in the
// final row or column may cover fewer pixels when the image dimensions are
// not exact multiples of the step. Samples are stored flattened, Channels
// float64 values per cell, in row-major cell order.
package grid

import (
	"fmt"
	"math"
)

// Channels is the number of color channels per sample (R, G, B, A).
const Channels = 4

// ErrInvalidDimensions indicates a pixel buffer whose length does not match
// width*height*Channels.
type ErrInvalidDimensions struct {
	Width     int
	Height    int
	BufferLen int
}

func (e *ErrInvalidDimensions) Error() string {
	return fmt.Sprintf("invalid dimensions: %dx%d image requires %d buffer bytes, got %d",
		e.Width, e.Height, e.Width*e.Height*Channels, e.BufferLen)
}

// ErrGridSizeMismatch indicates a sample grid whose length does not match
// the cell count implied by the target dimensions and steps.
type ErrGridSizeMismatch struct {
	Expected int // expected grid length in float64 values
	Actual   int
}

func (e *ErrGridSizeMismatch) Error() string {
	return fmt.Sprintf("grid size mismatch: expected %d values, got %d", e.Expected, e.Actual)
}

// Cells returns the number of grid cells covering a width×height image
// sampled with the given steps: ceil(width/xStep) * ceil(height/yStep).
func Cells(width, height, xStep, yStep int) int {
	cols := (width + xStep - 1) / xStep
	rows := (height + yStep - 1) / yStep
	return cols * rows
}

// Downsample averages xStep×yStep pixel blocks of buf into a flattened
// sample grid. Each channel of a cell's sample is the arithmetic mean over
// exactly the in-bounds pixels the cell covers; partial edge cells divide
// by their actual pixel count, never by the nominal block area.
func Downsample(buf []byte, width, height, xStep, yStep int) ([]float64, error) {
	if len(buf) != width*height*Channels {
		return nil, &ErrInvalidDimensions{Width: width, Height: height, BufferLen: len(buf)}
	}

	samples := make([]float64, 0, Cells(width, height, xStep, yStep)*Channels)

	for y0 := 0; y0 < height; y0 += yStep {
		yEnd := min(y0+yStep, height)
		for x0 := 0; x0 < width; x0 += xStep {
			xEnd := min(x0+xStep, width)

			var sum [Channels]float64
			for y := y0; y < yEnd; y++ {
				off := (y*width + x0) * Channels
				for x := x0; x < xEnd; x++ {
					for c := 0; c < Channels; c++ {
						sum[c] += float64(buf[off+c])
					}
					off += Channels
				}
			}

			inv := 1 / float64((yEnd-y0)*(xEnd-x0))
			for c := 0; c < Channels; c++ {
				samples = append(samples, sum[c]*inv)
			}
		}
	}

	return samples, nil
}

// Recompose broadcasts each cell's sample back over the pixels the cell
// covers, producing a full-resolution RGBA buffer of width*height*Channels
// bytes. Cells are visited in the same row-major order as Downsample, with
// the same partial-cell boundary rule. Channel values are rounded half-up
// and clamped to [0,255].
func Recompose(samples []float64, width, height, xStep, yStep int) ([]byte, error) {
	want := Cells(width, height, xStep, yStep) * Channels
	if len(samples) != want {
		return nil, &ErrGridSizeMismatch{Expected: want, Actual: len(samples)}
	}

	out := make([]byte, width*height*Channels)

	cell := 0
	for y0 := 0; y0 < height; y0 += yStep {
		yEnd := min(y0+yStep, height)
		for x0 := 0; x0 < width; x0 += xStep {
			xEnd := min(x0+xStep, width)

			var px [Channels]byte
			for c := 0; c < Channels; c++ {
				px[c] = RoundChannel(samples[cell*Channels+c])
			}
			cell++

			for y := y0; y < yEnd; y++ {
				off := (y*width + x0) * Channels
				for x := x0; x < xEnd; x++ {
					copy(out[off:off+Channels], px[:])
					off += Channels
				}
			}
		}
	}

	return out, nil
}

// RoundChannel rounds a channel value half-up to the nearest integer and
// clamps it to the 8-bit range.
func RoundChannel(v float64) byte {
	v = math.Floor(v + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
