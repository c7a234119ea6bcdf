package img2ascii

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"unicode"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// GlyphRasterizer renders single characters into fixed-size grayscale
// bitmaps.
type GlyphRasterizer interface {
	Rasterize(r rune) *image.Gray
	Size() image.Point
}

// Rasterizer renders characters with a font face, centering each glyph's
// ink bounding box in a canvas of a fixed size. It is not safe for
// concurrent use because font faces cache glyph outlines internally.
type Rasterizer struct {
	face     font.Face
	size     image.Point
	name     string
	fallback bool
}

// NewRasterizer loads the font at fontPath at pointSize (pixels, 72 DPI)
// for rendering into canvases of the given size. An empty fontPath selects
// the embedded Go Mono font.
//
// If the font cannot be loaded, NewRasterizer still returns a working
// rasterizer backed by a fixed 7x13 bitmap face together with an error
// wrapping ErrFontLoad. Callers that can live with the degraded output
// should log the error and carry on.
func NewRasterizer(fontPath string, pointSize float64, size image.Point) (*Rasterizer, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("glyph size %dx%d: %w", size.X, size.Y, ErrInvalidDimensions)
	}
	if pointSize <= 0 {
		return nil, fmt.Errorf("font size %v: %w", pointSize, ErrInvalidDimensions)
	}

	face, name, err := loadFace(fontPath, pointSize)
	if err != nil {
		return &Rasterizer{
			face:     basicfont.Face7x13,
			size:     size,
			name:     "basicfont 7x13",
			fallback: true,
		}, fmt.Errorf("%s: %v: %w", fontPath, err, ErrFontLoad)
	}
	return &Rasterizer{face: face, size: size, name: name}, nil
}

// loadFace reads and parses a TrueType font, trying OpenType (CFF
// outlines) when the TrueType parser rejects the file.
func loadFace(fontPath string, pointSize float64) (font.Face, string, error) {
	data := gomono.TTF
	name := "Go Mono"
	if fontPath != "" {
		var err error
		data, err = os.ReadFile(fontPath)
		if err != nil {
			return nil, "", err
		}
		name = filepath.Base(fontPath)
	}

	ttf, ttfErr := freetype.ParseFont(data)
	if ttfErr == nil {
		return truetype.NewFace(ttf, &truetype.Options{
			Size:    pointSize,
			DPI:     72,
			Hinting: font.HintingFull,
		}), name, nil
	}

	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("not a TrueType or OpenType font: %v", ttfErr)
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    pointSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, "", err
	}
	return face, name, nil
}

// Rasterize renders r at full intensity on a zero background. The ink
// bounding box is centered with integer offsets. Whitespace and runes
// without ink yield an all-zero bitmap.
func (r *Rasterizer) Rasterize(ch rune) *image.Gray {
	dst := image.NewGray(image.Rectangle{Max: r.size})
	if unicode.IsSpace(ch) {
		return dst
	}

	s := string(ch)
	bounds, _ := font.BoundString(r.face, s)
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	inkW := bounds.Max.X.Ceil() - minX
	inkH := bounds.Max.Y.Ceil() - minY
	if inkW <= 0 || inkH <= 0 {
		return dst
	}

	// Bounds are relative to the dot, so shift the dot by the box's
	// top-left corner after centering the box itself.
	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.P((r.size.X-inkW)/2-minX, (r.size.Y-inkH)/2-minY),
	}
	d.DrawString(s)
	return dst
}

// Size returns the canvas size of every rendered glyph.
func (r *Rasterizer) Size() image.Point {
	return r.size
}

// FontName describes the face in use.
func (r *Rasterizer) FontName() string {
	return r.name
}

// Fallback reports whether the built-in bitmap face replaced the
// requested font.
func (r *Rasterizer) Fallback() bool {
	return r.fallback
}
