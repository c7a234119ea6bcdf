// Package imageutil provides the pure Go image processing used to turn an
// input picture into an edge map that can be tiled and matched against
// glyphs: decoding, grayscale conversion, Canny edge detection, resizing
// and contrast stretching.
package imageutil

import (
	"image"
	"image/color"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// RGBAImage wraps image.RGBA with convenience methods for pixel access.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// RGBAImageFromImage converts any image.Image to an RGBAImage anchored at
// the origin.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return &RGBAImage{RGBA: rgba}
	}
	bounds := img.Bounds()
	rgba := NewRGBAImage(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return rgba
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// SetRGB sets the RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// GrayImage wraps image.Gray for single-channel images such as edge maps,
// tiles and glyph bitmaps.
type GrayImage struct {
	*image.Gray
}

// NewGrayImage creates a zero-filled GrayImage with the specified
// dimensions.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Gray: image.NewGray(image.Rect(0, 0, width, height)),
	}
}

// Width returns the image width.
func (img *GrayImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *GrayImage) Height() int {
	return img.Bounds().Dy()
}

// Clone creates a deep copy of the image anchored at the origin.
func (img *GrayImage) Clone() *GrayImage {
	clone := NewGrayImage(img.Width(), img.Height())
	for y := 0; y < img.Height(); y++ {
		copy(clone.row(y), img.row(y))
	}
	return clone
}

// Crop returns a copy of the part of img inside r, anchored at the origin.
// r is clipped to the image bounds, so crops reaching past the right or
// bottom edge come back smaller.
func (img *GrayImage) Crop(r image.Rectangle) *GrayImage {
	r = r.Add(img.Bounds().Min).Intersect(img.Bounds())
	sub := &GrayImage{Gray: img.SubImage(r).(*image.Gray)}
	return sub.Clone()
}

// Pixels returns the intensities of img in row-major order.
func (img *GrayImage) Pixels() []uint8 {
	w, h := img.Width(), img.Height()
	out := make([]uint8, 0, w*h)
	for y := 0; y < h; y++ {
		out = append(out, img.row(y)...)
	}
	return out
}

// row returns the pixel slice of row y, relative to the image origin.
func (img *GrayImage) row(y int) []uint8 {
	start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
	return img.Pix[start : start+img.Width()]
}
