package pixelquant

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pixelquant/internal/grid"
	"github.com/hupe1980/pixelquant/internal/kmeans"
)

// ErrInvalidDimensions indicates a pixel buffer whose length is
// inconsistent with width*height (4 bytes per pixel).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimensions struct {
	Width     int
	Height    int
	BufferLen int
	cause     error
}

func (e *ErrInvalidDimensions) Error() string {
	return fmt.Sprintf("invalid dimensions: %dx%d image requires %d buffer bytes, got %d",
		e.Width, e.Height, e.Width*e.Height*4, e.BufferLen)
}

func (e *ErrInvalidDimensions) Unwrap() error { return e.cause }

// ErrGridSizeMismatch indicates an internal inconsistency between a sample
// grid and its recomposition target. It is a defensive check: Quantize
// always recomposes with the dimensions it sampled with, so seeing this
// error means a programmer error, not bad input.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrGridSizeMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrGridSizeMismatch) Error() string {
	return fmt.Sprintf("grid size mismatch: expected %d values, got %d", e.Expected, e.Actual)
}

func (e *ErrGridSizeMismatch) Unwrap() error { return e.cause }

// ErrInsufficientUniqueColors indicates that more clusters were requested
// than the image has distinct colors after sampling. Recoverable by the
// caller: reduce the cluster quantity or pick a richer image. Quantize
// raises it before any iteration runs.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInsufficientUniqueColors struct {
	Unique    int
	Requested int
	cause     error
}

func (e *ErrInsufficientUniqueColors) Error() string {
	return fmt.Sprintf("insufficient unique colors: %d clusters requested, only %d distinct colors available",
		e.Requested, e.Unique)
}

func (e *ErrInsufficientUniqueColors) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var id *grid.ErrInvalidDimensions
	if errors.As(err, &id) {
		return &ErrInvalidDimensions{Width: id.Width, Height: id.Height, BufferLen: id.BufferLen, cause: err}
	}
	var gm *grid.ErrGridSizeMismatch
	if errors.As(err, &gm) {
		return &ErrGridSizeMismatch{Expected: gm.Expected, Actual: gm.Actual, cause: err}
	}
	var iu *kmeans.ErrInsufficientUniqueColors
	if errors.As(err, &iu) {
		return &ErrInsufficientUniqueColors{Unique: iu.Unique, Requested: iu.Requested, cause: err}
	}

	return err
}
