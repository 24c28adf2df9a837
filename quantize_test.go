package pixelquant

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2x2 image with four distinct solid colors.
func fourColorImage() []byte {
	return []byte{
		255, 0, 0, 255,   // red
		0, 255, 0, 255,   // green
		0, 0, 255, 255,   // blue
		255, 255, 0, 255, // yellow
	}
}

func distinctPixels(buf []byte) map[[4]byte]int {
	pixels := make(map[[4]byte]int)
	for i := 0; i < len(buf); i += 4 {
		var px [4]byte
		copy(px[:], buf[i:i+4])
		pixels[px]++
	}
	return pixels
}

func TestQuantize_TwoByTwoScenario(t *testing.T) {
	ctx := context.Background()
	buf := fourColorImage()

	res, err := Quantize(ctx, buf, 2, 2,
		WithClusterQuantity(2),
		WithRand(rand.New(rand.NewSource(42))),
	)
	require.NoError(t, err)
	require.Len(t, res.Buffer, len(buf))

	// Exactly 2 distinct colors, each covering a non-empty pixel subset.
	pixels := distinctPixels(res.Buffer)
	require.Len(t, pixels, 2)
	for px, count := range pixels {
		assert.Positive(t, count, "color %v", px)
	}

	assert.Len(t, res.Palette, 2)
	assert.Positive(t, res.Iterations)
}

func TestQuantize_DeterministicForFixedSeed(t *testing.T) {
	ctx := context.Background()

	first, err := Quantize(ctx, fourColorImage(), 2, 2,
		WithClusterQuantity(2),
		WithRand(rand.New(rand.NewSource(7))),
	)
	require.NoError(t, err)

	second, err := Quantize(ctx, fourColorImage(), 2, 2,
		WithClusterQuantity(2),
		WithRand(rand.New(rand.NewSource(7))),
	)
	require.NoError(t, err)

	assert.Equal(t, first.Buffer, second.Buffer)
	assert.Equal(t, first.Palette, second.Palette)
	assert.Equal(t, first.Iterations, second.Iterations)
}

func TestQuantize_IdentityWhenUniqueColorsEqualClusters(t *testing.T) {
	ctx := context.Background()

	// Two unique colors, two clusters: every pixel is its own centroid, so
	// the engine converges after one pass and the image is unchanged.
	buf := []byte{
		255, 0, 0, 255,
		255, 0, 0, 255,
		0, 0, 255, 255,
		0, 0, 255, 255,
	}

	res, err := Quantize(ctx, buf, 2, 2, WithClusterQuantity(2))
	require.NoError(t, err)

	assert.Equal(t, buf, res.Buffer)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
}

func TestQuantize_InsufficientUniqueColors(t *testing.T) {
	ctx := context.Background()

	solid := []byte{
		9, 9, 9, 255,
		9, 9, 9, 255,
		9, 9, 9, 255,
		9, 9, 9, 255,
	}

	iterations := 0
	_, err := Quantize(ctx, solid, 2, 2,
		WithClusterQuantity(2),
		WithIterationHook(func(int, float64, time.Duration) { iterations++ }),
	)
	require.Error(t, err)

	var iu *ErrInsufficientUniqueColors
	require.ErrorAs(t, err, &iu)
	assert.Equal(t, 1, iu.Unique)
	assert.Equal(t, 2, iu.Requested)

	// Raised before any iteration runs.
	assert.Zero(t, iterations)
}

func TestQuantize_InvalidDimensions(t *testing.T) {
	ctx := context.Background()

	res, err := Quantize(ctx, make([]byte, 10), 2, 2)
	require.Error(t, err)
	assert.Nil(t, res)

	var id *ErrInvalidDimensions
	require.ErrorAs(t, err, &id)
	assert.Equal(t, 2, id.Width)
	assert.Equal(t, 2, id.Height)
	assert.Equal(t, 10, id.BufferLen)
}

func TestQuantize_StepBlocks(t *testing.T) {
	ctx := context.Background()

	// 4x4 image of four solid 2x2 blocks. With 2x2 steps the grid has 4
	// samples and the output must fill each block uniformly.
	width, height := 4, 4
	blocks := [][4]byte{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
	}
	buf := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			block := (y/2)*2 + x/2
			copy(buf[(y*width+x)*4:], blocks[block][:])
		}
	}

	res, err := Quantize(ctx, buf, width, height,
		WithClusterQuantity(2),
		WithXStep(2),
		WithYStep(2),
		WithRand(rand.New(rand.NewSource(3))),
	)
	require.NoError(t, err)
	require.Len(t, res.Buffer, 64)

	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x += 2 {
			first := res.Buffer[(y*width+x)*4 : (y*width+x)*4+4]
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					off := ((y+dy)*width + x + dx) * 4
					assert.Equal(t, first, res.Buffer[off:off+4], "pixel (%d,%d)", x+dx, y+dy)
				}
			}
		}
	}

	assert.LessOrEqual(t, len(distinctPixels(res.Buffer)), 2)
}

func TestQuantize_DoesNotMutateInput(t *testing.T) {
	ctx := context.Background()

	buf := fourColorImage()
	orig := make([]byte, len(buf))
	copy(orig, buf)

	res, err := Quantize(ctx, buf, 2, 2,
		WithClusterQuantity(2),
		WithRand(rand.New(rand.NewSource(1))),
	)
	require.NoError(t, err)

	assert.Equal(t, orig, buf)
	assert.NotSame(t, &buf[0], &res.Buffer[0])
}

func TestQuantize_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	buf := fourColorImage()

	_, err := Quantize(ctx, buf, 2, 2, WithClusterQuantity(0))
	assert.Error(t, err)

	_, err = Quantize(ctx, buf, 2, 2, WithXStep(0))
	assert.Error(t, err)

	_, err = Quantize(ctx, buf, 2, 2, WithMaxIterations(0))
	assert.Error(t, err)

	_, err = Quantize(ctx, buf, 2, 2, WithTolerance(-1))
	assert.Error(t, err)
}

func TestQuantize_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Quantize(ctx, fourColorImage(), 2, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuantize_MetricsAndHook(t *testing.T) {
	ctx := context.Background()

	metrics := &BasicMetricsCollector{}
	hooked := 0

	res, err := Quantize(ctx, fourColorImage(), 2, 2,
		WithClusterQuantity(2),
		WithRand(rand.New(rand.NewSource(11))),
		WithMetricsCollector(metrics),
		WithIterationHook(func(int, float64, time.Duration) { hooked++ }),
	)
	require.NoError(t, err)

	assert.Equal(t, int64(1), metrics.QuantizeCount.Load())
	assert.Zero(t, metrics.QuantizeErrors.Load())
	assert.Equal(t, int64(res.Iterations), metrics.IterationCount.Load())
	assert.Equal(t, res.Iterations, hooked)
}

func TestQuantize_PaletteMatchesOutput(t *testing.T) {
	ctx := context.Background()

	res, err := Quantize(ctx, fourColorImage(), 2, 2,
		WithClusterQuantity(2),
		WithRand(rand.New(rand.NewSource(5))),
	)
	require.NoError(t, err)

	allowed := make(map[[4]byte]bool, len(res.Palette))
	for _, c := range res.Palette {
		allowed[[4]byte{c.R, c.G, c.B, c.A}] = true
	}
	for px := range distinctPixels(res.Buffer) {
		assert.True(t, allowed[px], "pixel color %v not in palette", px)
	}
}
