package imageutil

import "math"

// CannyOptions controls CannyWithOptions.
type CannyOptions struct {
	// LowThreshold is the gradient magnitude a pixel needs to be kept as a
	// weak edge, which survives only when connected to a strong edge.
	LowThreshold float64

	// HighThreshold is the gradient magnitude above which a pixel is
	// always an edge.
	HighThreshold float64

	// Blur smooths the input with a 5x5 Gaussian before taking gradients.
	// OpenCV's Canny does not blur.
	Blur bool

	// L2Gradient uses sqrt(gx²+gy²) as the magnitude instead of |gx|+|gy|.
	L2Gradient bool
}

// Canny performs blurred, L2-magnitude Canny edge detection on a grayscale
// image. Typical thresholds are 50 and 150.
func Canny(gray *GrayImage, lowThreshold, highThreshold float64) *GrayImage {
	return CannyWithOptions(gray, CannyOptions{
		LowThreshold:  lowThreshold,
		HighThreshold: highThreshold,
		Blur:          true,
		L2Gradient:    true,
	})
}

// CannyOpenCV performs Canny edge detection with the defaults of OpenCV's
// cv2.Canny: no pre-blur and an L1 gradient magnitude. Threshold values
// tuned for OpenCV (such as 100 and 300) carry over unchanged.
func CannyOpenCV(gray *GrayImage, lowThreshold, highThreshold float64) *GrayImage {
	return CannyWithOptions(gray, CannyOptions{
		LowThreshold:  lowThreshold,
		HighThreshold: highThreshold,
	})
}

// CannyWithOptions returns a binary edge map (0 or 255) of the same size as
// gray.
func CannyWithOptions(gray *GrayImage, opts CannyOptions) *GrayImage {
	width, height := gray.Width(), gray.Height()
	if width == 0 || height == 0 {
		return NewGrayImage(width, height)
	}

	src := planeFromGray(gray)
	if opts.Blur {
		src = src.convolve(GaussianKernel5x5())
	}
	gx := src.convolve(sobelXKernel)
	gy := src.convolve(sobelYKernel)

	magnitude := newFloatPlane(width, height)
	for i := range magnitude.pix {
		if opts.L2Gradient {
			magnitude.pix[i] = math.Hypot(gx.pix[i], gy.pix[i])
		} else {
			magnitude.pix[i] = math.Abs(gx.pix[i]) + math.Abs(gy.pix[i])
		}
	}

	suppressed := nonMaxSuppression(magnitude, gx, gy)
	return hysteresis(suppressed, opts.LowThreshold, opts.HighThreshold)
}

// tan22 is tan(22.5°), the boundary between gradient direction sectors.
var tan22 = math.Tan(math.Pi / 8)

// nonMaxSuppression keeps only pixels whose magnitude is a local maximum
// along the gradient direction. Border pixels are dropped.
func nonMaxSuppression(magnitude, gx, gy *floatPlane) *floatPlane {
	w, h := magnitude.width, magnitude.height
	out := newFloatPlane(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := magnitude.pix[i]
			if m == 0 {
				continue
			}
			dx, dy := gx.pix[i], gy.pix[i]
			ax, ay := math.Abs(dx), math.Abs(dy)

			// The neighbor pair across the edge: (x+ox, y+oy) and
			// (x-ox, y-oy).
			var ox, oy int
			switch {
			case ay <= ax*tan22:
				ox, oy = 1, 0
			case ay > ax/tan22:
				ox, oy = 0, 1
			case (dx > 0) == (dy > 0):
				ox, oy = 1, 1
			default:
				ox, oy = -1, 1
			}

			ahead := magnitude.pix[(y+oy)*w+x+ox]
			behind := magnitude.pix[(y-oy)*w+x-ox]
			if m > behind && m >= ahead {
				out.pix[i] = m
			}
		}
	}
	return out
}

// hysteresis marks pixels above high as edges and grows them through
// 8-connected pixels above low.
func hysteresis(suppressed *floatPlane, low, high float64) *GrayImage {
	w, h := suppressed.width, suppressed.height
	edges := NewGrayImage(w, h)
	stack := make([]int, 0, 64)

	mark := func(i int) {
		edges.Pix[(i/w)*edges.Stride+i%w] = 255
		stack = append(stack, i)
	}
	isEdge := func(i int) bool {
		return edges.Pix[(i/w)*edges.Stride+i%w] == 255
	}

	for i, v := range suppressed.pix {
		if v > high && !isEdge(i) {
			mark(i)
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				n := ny*w + nx
				if suppressed.pix[n] > low && !isEdge(n) {
					mark(n)
				}
			}
		}
	}

	return edges
}
