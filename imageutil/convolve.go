package imageutil

// Kernel represents a convolution kernel stored row-major.
type Kernel struct {
	Values []float64
	Width  int
	Height int
}

// NewKernel creates a new kernel from a 2D slice.
func NewKernel(values [][]float64) *Kernel {
	k := &Kernel{Height: len(values)}
	if k.Height > 0 {
		k.Width = len(values[0])
	}
	for _, row := range values {
		k.Values = append(k.Values, row...)
	}
	return k
}

var (
	sobelXKernel = NewKernel([][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	})
	sobelYKernel = NewKernel([][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	})
)

// GaussianKernel5x5 returns a 5x5 Gaussian blur kernel with sigma ~1.4.
func GaussianKernel5x5() *Kernel {
	return NewKernel([][]float64{
		{2.0 / 159, 4.0 / 159, 5.0 / 159, 4.0 / 159, 2.0 / 159},
		{4.0 / 159, 9.0 / 159, 12.0 / 159, 9.0 / 159, 4.0 / 159},
		{5.0 / 159, 12.0 / 159, 15.0 / 159, 12.0 / 159, 5.0 / 159},
		{4.0 / 159, 9.0 / 159, 12.0 / 159, 9.0 / 159, 4.0 / 159},
		{2.0 / 159, 4.0 / 159, 5.0 / 159, 4.0 / 159, 2.0 / 159},
	})
}

// floatPlane is a single-channel image with unclamped float samples.
type floatPlane struct {
	width, height int
	pix           []float64
}

func newFloatPlane(width, height int) *floatPlane {
	return &floatPlane{width: width, height: height, pix: make([]float64, width*height)}
}

// planeFromGray copies a gray image into a float plane.
func planeFromGray(img *GrayImage) *floatPlane {
	p := newFloatPlane(img.Width(), img.Height())
	for y := 0; y < p.height; y++ {
		for x, v := range img.row(y) {
			p.pix[y*p.width+x] = float64(v)
		}
	}
	return p
}

// at returns the sample at (x, y), replicating the border for
// coordinates outside the plane.
func (p *floatPlane) at(x, y int) float64 {
	x = clampInt(x, 0, p.width-1)
	y = clampInt(y, 0, p.height-1)
	return p.pix[y*p.width+x]
}

// convolve applies kernel to p with replicated borders.
func (p *floatPlane) convolve(kernel *Kernel) *floatPlane {
	dst := newFloatPlane(p.width, p.height)
	halfW, halfH := kernel.Width/2, kernel.Height/2
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			var sum float64
			for ky := 0; ky < kernel.Height; ky++ {
				for kx := 0; kx < kernel.Width; kx++ {
					sum += p.at(x+kx-halfW, y+ky-halfH) * kernel.Values[ky*kernel.Width+kx]
				}
			}
			dst.pix[y*p.width+x] = sum
		}
	}
	return dst
}

// clampInt clamps an integer to the given range.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
