package imageutil

// AutoContrast stretches the intensity range of img so that its darkest
// pixel becomes 0 and its brightest 255. Uniform images are returned
// unchanged since they have no range to stretch.
func AutoContrast(img *GrayImage) *GrayImage {
	out := img.Clone()
	lo, hi := uint8(255), uint8(0)
	for y := 0; y < out.Height(); y++ {
		for _, v := range out.row(y) {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	if hi <= lo {
		return out
	}

	var lut [256]uint8
	scale := 255 / float64(hi-lo)
	offset := -float64(lo) * scale
	for i := range lut {
		// Truncate like PIL's ImageOps.autocontrast.
		v := int(float64(i)*scale + offset)
		lut[i] = uint8(clampInt(v, 0, 255))
	}
	for y := 0; y < out.Height(); y++ {
		row := out.row(y)
		for x, v := range row {
			row[x] = lut[v]
		}
	}
	return out
}
