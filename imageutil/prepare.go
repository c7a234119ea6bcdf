package imageutil

import (
	"fmt"
	"image"
	"math"
)

const (
	// DefaultLowThreshold and DefaultHighThreshold are the Canny
	// hysteresis thresholds used when none are configured.
	DefaultLowThreshold  = 100
	DefaultHighThreshold = 300

	// DefaultCharAspect compensates for monospace cells being roughly
	// twice as tall as they are wide.
	DefaultCharAspect = 0.5
)

// PrepareOptions configures Preprocess.
type PrepareOptions struct {
	// OutputWidth is the width in pixels of the returned edge map.
	OutputWidth int

	// CharAspect scales the output height to correct for non-square
	// character cells.
	CharAspect float64

	// LowThreshold and HighThreshold are the Canny hysteresis thresholds.
	LowThreshold  float64
	HighThreshold float64

	// Interpolation selects the resampling filter for the final resize.
	Interpolation Interpolation
}

// OutputHeight returns round(outputWidth * height / width * charAspect),
// never less than 1.
func OutputHeight(bounds image.Rectangle, outputWidth int, charAspect float64) int {
	aspect := float64(bounds.Dy()) / float64(bounds.Dx())
	h := int(math.Round(float64(outputWidth) * aspect * charAspect))
	return max(h, 1)
}

// Preprocess turns img into an edge map ready for tiling.
//
// The pipeline is:
//  1. Convert to grayscale (BT.601)
//  2. Detect edges with OpenCV-style Canny on the full-resolution image
//  3. Resize the edge map to OutputWidth x OutputHeight(...)
//
// Edges are found before downscaling so that thin strokes survive as
// gray, partially covered pixels instead of vanishing.
func Preprocess(img image.Image, opts PrepareOptions) (*GrayImage, error) {
	if opts.OutputWidth <= 0 {
		return nil, fmt.Errorf("output width %d: %w", opts.OutputWidth, ErrInvalidDimensions)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty source image: %w", ErrInvalidDimensions)
	}
	if opts.CharAspect <= 0 {
		opts.CharAspect = DefaultCharAspect
	}

	gray := Grayscale(img)
	edges := CannyOpenCV(gray, opts.LowThreshold, opts.HighThreshold)

	height := OutputHeight(bounds, opts.OutputWidth, opts.CharAspect)
	return ResizeGray(edges, opts.OutputWidth, height, opts.Interpolation), nil
}
