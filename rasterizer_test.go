package img2ascii

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func inkBounds(g *image.Gray) (image.Rectangle, bool) {
	b := g.Bounds()
	ink := image.Rectangle{Min: b.Max, Max: b.Min}
	found := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if g.GrayAt(x, y).Y == 0 {
				continue
			}
			found = true
			ink.Min.X = min(ink.Min.X, x)
			ink.Min.Y = min(ink.Min.Y, y)
			ink.Max.X = max(ink.Max.X, x+1)
			ink.Max.Y = max(ink.Max.Y, y+1)
		}
	}
	return ink, found
}

func TestRasterizerDefaultFont(t *testing.T) {
	size := image.Pt(24, 24)
	r, err := NewRasterizer("", 16, size)
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}
	if r.Fallback() {
		t.Error("embedded font should not need the fallback face")
	}

	for _, ch := range DefaultAlphabet + "#@" {
		g := r.Rasterize(ch)
		if g.Bounds().Size() != size {
			t.Fatalf("glyph %q has size %v, want %v", ch, g.Bounds().Size(), size)
		}
		_, hasInk := inkBounds(g)
		if ch == ' ' && hasInk {
			t.Error("space should render blank")
		}
		if ch != ' ' && !hasInk {
			t.Errorf("glyph %q rendered blank", ch)
		}
	}
}

func TestRasterizerWhitespaceIsBlank(t *testing.T) {
	r, err := NewRasterizer("", 16, image.Pt(16, 16))
	if err != nil {
		t.Fatal(err)
	}
	for _, ch := range " \t " {
		if _, hasInk := inkBounds(r.Rasterize(ch)); hasInk {
			t.Errorf("whitespace %U rendered ink", ch)
		}
	}
}

func TestRasterizerCentersInk(t *testing.T) {
	size := image.Pt(32, 32)
	r, err := NewRasterizer("", 16, size)
	if err != nil {
		t.Fatal(err)
	}
	for _, ch := range "|-#." {
		ink, ok := inkBounds(r.Rasterize(ch))
		if !ok {
			t.Fatalf("glyph %q rendered blank", ch)
		}
		left, right := ink.Min.X, size.X-ink.Max.X
		top, bottom := ink.Min.Y, size.Y-ink.Max.Y
		if d := left - right; d < -2 || d > 2 {
			t.Errorf("glyph %q not centered horizontally: margins %d/%d", ch, left, right)
		}
		if d := top - bottom; d < -2 || d > 2 {
			t.Errorf("glyph %q not centered vertically: margins %d/%d", ch, top, bottom)
		}
	}
}

func TestRasterizerDeterministic(t *testing.T) {
	a, _ := NewRasterizer("", 14, image.Pt(16, 16))
	b, _ := NewRasterizer("", 14, image.Pt(16, 16))
	ga, gb := a.Rasterize('x'), b.Rasterize('x')
	for i := range ga.Pix {
		if ga.Pix[i] != gb.Pix[i] {
			t.Fatal("same font and rune produced different bitmaps")
		}
	}
}

func TestRasterizerFallback(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.ttf")
	if err := os.WriteFile(garbage, []byte("this is not a font"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.ttf")},
		{"not a font", garbage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRasterizer(tt.path, 16, image.Pt(16, 16))
			if !errors.Is(err, ErrFontLoad) {
				t.Fatalf("expected ErrFontLoad, got %v", err)
			}
			if r == nil || !r.Fallback() {
				t.Fatal("expected a usable fallback rasterizer")
			}
			if _, hasInk := inkBounds(r.Rasterize('#')); !hasInk {
				t.Error("fallback face rendered '#' blank")
			}
		})
	}
}

func TestRasterizerInvalidDimensions(t *testing.T) {
	tests := []struct {
		size  image.Point
		point float64
	}{
		{image.Pt(0, 16), 16},
		{image.Pt(16, -1), 16},
		{image.Pt(16, 16), 0},
	}
	for _, tt := range tests {
		_, err := NewRasterizer("", tt.point, tt.size)
		if !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("size %v point %v: expected ErrInvalidDimensions, got %v", tt.size, tt.point, err)
		}
	}
}
