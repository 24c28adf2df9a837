// Package pixelquant reduces the colors of a raster image with k-means
// clustering on its pixel colors.
//
// The pipeline downsamples the RGBA buffer into a grid of block-averaged
// color samples, seeds cluster centers from the image's distinct colors,
// iterates assignment/update passes until the centroids settle within a
// tolerance, and rebuilds a full-resolution buffer in which every pixel
// carries its cluster's color.
//
// # Quick Start
//
//	ctx := context.Background()
//	res, err := pixelquant.Quantize(ctx, rgba.Pix, width, height,
//	    pixelquant.WithClusterQuantity(8),
//	    pixelquant.WithXStep(2),
//	    pixelquant.WithYStep(2),
//	)
//	if err != nil {
//	    // ErrInvalidDimensions, ErrInsufficientUniqueColors, ...
//	}
//	_ = res.Buffer  // quantized RGBA, same length as the input
//	_ = res.Palette // the final cluster colors
//
// Quantize never mutates the input buffer and holds no state between
// calls; concurrent runs are independent. The worker subpackage wraps the
// same operation in a request/response envelope for callers that hand
// work to a background pool.
//
// Centroid seeding is uniform random over the distinct colors. Pass a
// seeded source via WithRand for reproducible results.
package pixelquant
