package img2ascii

import (
	"image"
	"image/draw"
	"slices"

	"github.com/wbrown/img2ascii/ann"
)

// Glyph is a rendered candidate character. The ID is its position in the
// alphabet and doubles as its id in the nearest-neighbor index.
type Glyph struct {
	ID     int
	Rune   rune
	Bitmap *image.Gray
	Vector ann.Vector
}

// Library holds the rendered bitmap and feature vector of every character
// in an alphabet. A Library is immutable once built.
type Library struct {
	alphabet Alphabet
	glyphs   []Glyph
	size     image.Point
}

// BuildLibrary rasterizes every rune of alphabet with rasterizer. Repeated
// runes are kept once, at their first position.
func BuildLibrary(alphabet []rune, rasterizer GlyphRasterizer) (*Library, error) {
	if len(alphabet) == 0 {
		return nil, ErrEmptyAlphabet
	}
	a := NewAlphabet(alphabet)
	size := rasterizer.Size()

	lib := &Library{
		alphabet: a,
		glyphs:   make([]Glyph, a.Len()),
		size:     size,
	}
	for id := range lib.glyphs {
		r := a.At(id)
		bitmap := rasterizer.Rasterize(r)
		lib.glyphs[id] = Glyph{
			ID:     id,
			Rune:   r,
			Bitmap: bitmap,
			Vector: flatten(bitmap),
		}
	}
	return lib, nil
}

// flatten returns the pixels of g in row-major order.
func flatten(g *image.Gray) ann.Vector {
	b := g.Bounds()
	v := make(ann.Vector, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := g.PixOffset(b.Min.X, y)
		v = append(v, g.Pix[start:start+b.Dx()]...)
	}
	return v
}

// Len returns the number of glyphs.
func (l *Library) Len() int {
	return len(l.glyphs)
}

// Size returns the bitmap size shared by all glyphs.
func (l *Library) Size() image.Point {
	return l.size
}

// Alphabet returns the characters of the library in id order.
func (l *Library) Alphabet() Alphabet {
	return l.alphabet
}

// Char returns the rune with the given id.
func (l *Library) Char(id int) rune {
	return l.glyphs[id].Rune
}

// ID returns the id of r.
func (l *Library) ID(r rune) (int, bool) {
	return l.alphabet.Index(r)
}

// Bitmap returns the rendered bitmap of r, or nil if r is not in the
// library.
func (l *Library) Bitmap(r rune) *image.Gray {
	id, ok := l.alphabet.Index(r)
	if !ok {
		return nil
	}
	return l.glyphs[id].Bitmap
}

// Vector returns the feature vector of the glyph with the given id.
func (l *Library) Vector(id int) ann.Vector {
	return l.glyphs[id].Vector
}

// Glyphs returns a copy of all glyphs in id order. Bitmaps and vectors
// are shared with the library and must not be modified.
func (l *Library) Glyphs() []Glyph {
	return slices.Clone(l.glyphs)
}

// Items returns the feature vectors in the form the index builds from.
func (l *Library) Items() []ann.Item {
	items := make([]ann.Item, len(l.glyphs))
	for i, g := range l.glyphs {
		items[i] = ann.Item{ID: g.ID, Vector: g.Vector}
	}
	return items
}

// Compose renders grid back to an image by tiling glyph bitmaps, one
// glyph cell per character. Runes missing from the library are left
// blank. Rows shorter than the first are padded with blank cells.
func (l *Library) Compose(grid Grid) *image.Gray {
	rows, cols := len(grid), 0
	if rows > 0 {
		cols = len(grid[0])
	}
	img := image.NewGray(image.Rect(0, 0, cols*l.size.X, rows*l.size.Y))

	for y, row := range grid {
		for x, r := range row {
			if x >= cols {
				break
			}
			bitmap := l.Bitmap(r)
			if bitmap == nil {
				continue
			}
			at := image.Pt(x*l.size.X, y*l.size.Y)
			draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(l.size)}, bitmap, bitmap.Bounds().Min, draw.Src)
		}
	}
	return img
}
