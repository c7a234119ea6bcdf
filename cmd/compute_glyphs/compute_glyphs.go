package main

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
)

type Options struct {
	Font     string  `short:"f" long:"font" description:"TrueType or OpenType font file (default: embedded Go Mono)"`
	FontSize float64 `long:"font-size" description:"Font size in pixels" default:"16"`
	Glyph    int     `short:"g" long:"glyph" description:"Glyph bitmap size in pixels" default:"32"`
	Alphabet string  `short:"a" long:"alphabet" description:"Characters to render"`
	Dir      string  `short:"d" long:"dir" description:"Directory receiving one PNG per glyph"`
	Sheet    string  `short:"s" long:"sheet" description:"Contact sheet PNG with every glyph"`
	Output   string  `short:"o" long:"output" description:"Gzipped glyph data file"`
}

// FontGlyphData is the serialized form of a rendered alphabet.
type FontGlyphData struct {
	FontName string
	Width    int
	Height   int
	Glyphs   map[rune][]uint8
}

func main() {
	opts := &Options{}
	if _, err := flags.Parse(opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(2)
	}
	if opts.Dir == "" && opts.Sheet == "" && opts.Output == "" {
		log.Fatal("Nothing to do: give at least one of --dir, --sheet or --output")
	}

	alphabet := img2ascii.ParseAlphabet(img2ascii.DefaultAlphabet)
	if opts.Alphabet != "" {
		alphabet = img2ascii.ParseAlphabet(opts.Alphabet)
	}

	rasterizer, err := img2ascii.NewRasterizer(opts.Font, opts.FontSize, image.Pt(opts.Glyph, opts.Glyph))
	if err != nil {
		if !errors.Is(err, img2ascii.ErrFontLoad) {
			log.Fatalf("Failed to create rasterizer: %v", err)
		}
		log.Printf("Warning: %v", err)
	}
	log.Printf("Rendering %d glyphs with %s at %vpx into %dx%d",
		alphabet.Len(), rasterizer.FontName(), opts.FontSize, opts.Glyph, opts.Glyph)

	lib, err := img2ascii.BuildLibrary(alphabet.Runes(), rasterizer)
	if err != nil {
		log.Fatalf("Failed to build glyph library: %v", err)
	}

	blank := 0
	for _, g := range lib.Glyphs() {
		if isBlank(g.Bitmap) {
			blank++
		}
	}
	log.Printf("Rendered %d glyphs, %d without ink", lib.Len(), blank)

	if opts.Dir != "" {
		if err := img2ascii.WriteGlyphDebugDir(opts.Dir, lib); err != nil {
			log.Fatalf("Failed to write glyph directory: %v", err)
		}
		log.Printf("Wrote glyph bitmaps to %s", opts.Dir)
	}

	if opts.Sheet != "" {
		if err := imageutil.SavePNG(contactSheet(lib), opts.Sheet); err != nil {
			log.Fatalf("Failed to write contact sheet: %v", err)
		}
		log.Printf("Wrote contact sheet to %s", opts.Sheet)
	}

	if opts.Output != "" {
		name := rasterizer.FontName()
		if opts.Font != "" && !rasterizer.Fallback() {
			name = strings.TrimSuffix(filepath.Base(opts.Font), filepath.Ext(opts.Font))
		}
		if err := saveFontGlyphData(glyphData(name, lib), opts.Output); err != nil {
			log.Fatalf("Failed to save glyph data: %v", err)
		}
		if info, err := os.Stat(opts.Output); err == nil {
			log.Printf("Saved glyph data to %s (%.2f KB)", opts.Output, float64(info.Size())/1024)
		}
	}
}

func isBlank(g *image.Gray) bool {
	for _, v := range g.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

// contactSheet lays out every glyph in a near-square grid, in alphabet
// order, with a one pixel gap.
func contactSheet(lib *img2ascii.Library) *image.Gray {
	size := lib.Size()
	cols := int(math.Ceil(math.Sqrt(float64(lib.Len()))))
	rows := (lib.Len() + cols - 1) / cols
	cell := size.Add(image.Pt(1, 1))

	sheet := image.NewGray(image.Rect(0, 0, cols*cell.X, rows*cell.Y))
	for i, g := range lib.Glyphs() {
		at := image.Pt(i%cols*cell.X, i/cols*cell.Y)
		draw.Draw(sheet, image.Rectangle{Min: at, Max: at.Add(size)}, g.Bitmap, g.Bitmap.Bounds().Min, draw.Src)
	}
	return sheet
}

func glyphData(name string, lib *img2ascii.Library) *FontGlyphData {
	size := lib.Size()
	data := &FontGlyphData{
		FontName: name,
		Width:    size.X,
		Height:   size.Y,
		Glyphs:   make(map[rune][]uint8, lib.Len()),
	}
	for _, g := range lib.Glyphs() {
		data.Glyphs[g.Rune] = g.Vector
	}
	return data
}

// saveFontGlyphData writes data gob-encoded and gzipped.
func saveFontGlyphData(data *FontGlyphData, outputPath string) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(data); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode data: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
