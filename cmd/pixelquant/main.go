// Command pixelquant reduces an image to a fixed number of colors and
// writes the result as PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"math/rand"
	"os"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hupe1980/pixelquant"
	"github.com/hupe1980/pixelquant/worker"
)

func main() {
	var (
		in        = flag.String("in", "", "input image (png, jpeg, gif, webp, bmp, tiff)")
		out       = flag.String("out", "out.png", "output png path")
		colors    = flag.Int("colors", pixelquant.DefaultClusterQuantity, "number of colors in the result")
		xStep     = flag.Int("xstep", pixelquant.DefaultXStep, "horizontal sampling block size in pixels")
		yStep     = flag.Int("ystep", pixelquant.DefaultYStep, "vertical sampling block size in pixels")
		maxIter   = flag.Int("max-iterations", pixelquant.DefaultMaxIterations, "iteration cap for the clustering loop")
		tolerance = flag.Float64("tolerance", pixelquant.DefaultTolerance, "convergence threshold for centroid movement")
		seed      = flag.Int64("seed", 0, "random seed for centroid selection (0 means non-deterministic)")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := pixelquant.NewTextLogger(level)

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: pixelquant -in image.png [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	opts := []pixelquant.Option{
		pixelquant.WithClusterQuantity(*colors),
		pixelquant.WithXStep(*xStep),
		pixelquant.WithYStep(*yStep),
		pixelquant.WithMaxIterations(*maxIter),
		pixelquant.WithTolerance(*tolerance),
		pixelquant.WithLogger(logger),
	}
	if *seed != 0 {
		opts = append(opts, pixelquant.WithRand(rand.New(rand.NewSource(*seed))))
	}

	if err := run(context.Background(), logger, *in, *out, opts); err != nil {
		logger.Error("quantize failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *pixelquant.Logger, in, out string, opts []pixelquant.Option) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", in, err)
	}

	bounds := src.Bounds()
	rect := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
	rgba := image.NewRGBA(rect)
	draw.Draw(rgba, rect, src, bounds.Min, draw.Src)

	logger.Debug("decoded image", "path", in, "format", format, "width", rect.Dx(), "height", rect.Dy())

	pool := worker.NewPool(1)
	resp := pool.Process(ctx, worker.Request{
		Buffer:  rgba.Pix,
		Width:   rect.Dx(),
		Height:  rect.Dy(),
		Options: opts,
	})
	if resp.Status != worker.StatusSuccess {
		return resp.Err
	}

	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	defer dst.Close()

	quantized := &image.RGBA{Pix: resp.Buffer, Stride: rect.Dx() * 4, Rect: rect}
	if err := png.Encode(dst, quantized); err != nil {
		return fmt.Errorf("encode %s: %w", out, err)
	}

	logger.Info("wrote quantized image", "path", out)
	return nil
}
