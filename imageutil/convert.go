package imageutil

import "image"

// ToGrayscale converts an RGBA image to grayscale using the standard
// luminance formula: Y = 0.299*R + 0.587*G + 0.114*B
// This matches the BT.601 weights used by OpenCV's COLOR_RGB2GRAY and by
// PIL's "L" conversion.
func ToGrayscale(img *RGBAImage) *GrayImage {
	width, height := img.Width(), img.Height()
	gray := NewGrayImage(width, height)

	for y := 0; y < height; y++ {
		src := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):]
		dst := gray.row(y)
		for x := range dst {
			r, g, b := int(src[x*4]), int(src[x*4+1]), int(src[x*4+2])
			lum := (299*r + 587*g + 114*b + 500) / 1000
			dst[x] = uint8(min(lum, 255))
		}
	}

	return gray
}

// Grayscale converts any decoded image to grayscale. Gray images are
// copied as-is.
func Grayscale(img image.Image) *GrayImage {
	if g, ok := img.(*image.Gray); ok {
		return (&GrayImage{Gray: g}).Clone()
	}
	return ToGrayscale(RGBAImageFromImage(img))
}
