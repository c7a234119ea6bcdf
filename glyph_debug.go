package img2ascii

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wbrown/img2ascii/imageutil"
)

// GlyphFileName returns the file name used for r in a glyph debug
// directory. ASCII letters and digits are used as is; anything else is
// written as its decimal code point between underscores.
func GlyphFileName(r rune) string {
	if r < 0x80 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
		return "char_" + string(r) + ".png"
	}
	return "char__" + strconv.Itoa(int(r)) + "_.png"
}

// WriteGlyphDebugDir writes every glyph bitmap of lib as a PNG into dir,
// creating dir if needed. Regular files already in dir are removed first.
func WriteGlyphDebugDir(dir string, lib *Library) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create glyph directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read glyph directory: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to clear glyph directory: %w", err)
		}
	}

	for _, g := range lib.Glyphs() {
		path := filepath.Join(dir, GlyphFileName(g.Rune))
		if err := imageutil.SavePNG(g.Bitmap, path); err != nil {
			return fmt.Errorf("glyph %q: %w", g.Rune, err)
		}
	}
	return nil
}
