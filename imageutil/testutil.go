package imageutil

import (
	"image/color"
	"math"
)

// CreateGradientImage creates a horizontal gradient test image.
func CreateGradientImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * x / max(width-1, 1))
			img.SetRGB(x, y, RGB{R: v, G: v, B: v})
		}
	}
	return img
}

// CreateCheckerboardImage creates a checkerboard pattern for edge testing.
func CreateCheckerboardImage(width, height, squareSize int) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				img.SetRGB(x, y, RGB{R: 255, G: 255, B: 255})
			} else {
				img.SetRGB(x, y, RGB{})
			}
		}
	}
	return img
}

// CreateSolidImage creates a solid color image.
func CreateSolidImage(width, height int, c RGB) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGB(x, y, c)
		}
	}
	return img
}

// CreateSolidGray creates a uniform grayscale image.
func CreateSolidGray(width, height int, v uint8) *GrayImage {
	img := NewGrayImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// CreateEdgeImage creates a gray image with a white rectangle in the
// center and a black diagonal line, for testing edge detection.
func CreateEdgeImage(width, height int) *RGBAImage {
	img := CreateSolidImage(width, height, RGB{R: 128, G: 128, B: 128})

	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.SetRGB(x, y, RGB{R: 255, G: 255, B: 255})
		}
	}
	for i := 0; i < min(width, height)/2; i++ {
		img.SetRGB(i, i, RGB{})
	}
	return img
}

// CreateGlyphLikeImage draws a white vertical bar and a horizontal bar on
// black, roughly the shape of a '+' sign, into a gray image.
func CreateGlyphLikeImage(width, height int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x == width/2 || y == height/2 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// CalculateMSEGray calculates the Mean Squared Error between two grayscale
// images.
func CalculateMSEGray(img1, img2 *GrayImage) float64 {
	if img1.Width() != img2.Width() || img1.Height() != img2.Height() {
		return math.MaxFloat64
	}
	a, b := img1.Pixels(), img2.Pixels()
	if len(a) == 0 {
		return 0
	}
	var sumSq float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sumSq += d * d
	}
	return sumSq / float64(len(a))
}

// CalculateJaccardIndex calculates the Jaccard similarity between two
// binary edge maps. Returns a value between 0 (no overlap) and 1 (perfect
// overlap).
func CalculateJaccardIndex(edges1, edges2 *GrayImage) float64 {
	if edges1.Width() != edges2.Width() || edges1.Height() != edges2.Height() {
		return 0
	}
	a, b := edges1.Pixels(), edges2.Pixels()
	var intersection, union int
	for i := range a {
		e1, e2 := a[i] > 128, b[i] > 128
		if e1 && e2 {
			intersection++
		}
		if e1 || e2 {
			union++
		}
	}
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

// CountEdges returns the number of pixels above 128.
func CountEdges(edges *GrayImage) int {
	n := 0
	for _, v := range edges.Pixels() {
		if v > 128 {
			n++
		}
	}
	return n
}
