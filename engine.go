// Package img2ascii converts images to text art by shape. The image is
// reduced to an edge map, cut into tiles, and each tile is replaced by the
// character whose rendered glyph is nearest to it in pixel space.
package img2ascii

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/wbrown/img2ascii/ann"
	"github.com/wbrown/img2ascii/imageutil"
)

// Config holds every setting of an Engine.
type Config struct {
	Alphabet   []rune
	FontPath   string // empty selects the embedded Go Mono font
	FontSize   float64
	GlyphSize  image.Point
	CharAspect float64

	// Index settings. Exact replaces the forest with a linear scan.
	Trees        int
	SearchEffort int
	Exact        bool
	Seed         uint64

	// Edge detection and resampling.
	LowThreshold  float64
	HighThreshold float64
	Interpolation imageutil.Interpolation

	// GlyphDebugDir, when set, receives a PNG of every glyph on Prepare.
	GlyphDebugDir string
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Alphabet:      []rune(DefaultAlphabet),
		FontSize:      16,
		GlyphSize:     image.Pt(32, 32),
		CharAspect:    imageutil.DefaultCharAspect,
		Trees:         ann.DefaultTrees,
		SearchEffort:  DefaultSearchEffort,
		LowThreshold:  imageutil.DefaultLowThreshold,
		HighThreshold: imageutil.DefaultHighThreshold,
		Interpolation: imageutil.InterpolationCubic,
	}
}

// Engine converts images to text by matching edge-map tiles against
// rendered glyphs. Create one with Configure or New, call Prepare once,
// then call the Render methods from any number of goroutines.
type Engine struct {
	cfg      Config
	logger   *slog.Logger
	progress ProgressFunc

	// prepareMu serializes Prepare; the rasterizer is not safe for
	// concurrent use.
	prepareMu  sync.Mutex
	rasterizer GlyphRasterizer
	fontErr    error

	mu      sync.RWMutex
	matcher *Matcher
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithTrees sets the number of trees in the glyph index.
func WithTrees(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cfg.Trees = n
		}
	}
}

// WithSearchEffort sets how many candidates a query inspects before
// ranking them exactly. Larger is slower and more accurate.
func WithSearchEffort(n int) Option {
	return func(e *Engine) {
		e.cfg.SearchEffort = n
	}
}

// WithExactSearch replaces the approximate index with a linear scan. The
// result is deterministic, with ties going to the earliest character of
// the alphabet.
func WithExactSearch() Option {
	return func(e *Engine) {
		e.cfg.Exact = true
	}
}

// WithSeed sets the seed of the index's random projections.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.cfg.Seed = seed
	}
}

// WithCannyThresholds sets the hysteresis thresholds of edge detection.
func WithCannyThresholds(low, high float64) Option {
	return func(e *Engine) {
		e.cfg.LowThreshold = low
		e.cfg.HighThreshold = high
	}
}

// WithInterpolation sets the resampling filter for the edge map and tiles.
func WithInterpolation(interp imageutil.Interpolation) Option {
	return func(e *Engine) {
		e.cfg.Interpolation = interp
	}
}

// WithGlyphDebugDir makes Prepare dump every glyph bitmap into dir.
func WithGlyphDebugDir(dir string) Option {
	return func(e *Engine) {
		e.cfg.GlyphDebugDir = dir
	}
}

// WithProgress sets a callback reporting matched rows during a render.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithLogger sets the logger of this engine, overriding SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Configure creates an Engine for the given alphabet and font settings.
// It fails with ErrEmptyAlphabet or ErrInvalidDimensions. A font that
// cannot be loaded is not an error here: the engine logs a warning, uses
// a built-in bitmap face, and reports the problem through FontError.
func Configure(
	alphabet []rune,
	fontPath string,
	pointSize float64,
	glyphSize image.Point,
	charAspect float64,
	opts ...Option,
) (*Engine, error) {
	cfg := DefaultConfig()
	cfg.Alphabet = alphabet
	cfg.FontPath = fontPath
	cfg.FontSize = pointSize
	cfg.GlyphSize = glyphSize
	cfg.CharAspect = charAspect
	return New(cfg, opts...)
}

// New creates an Engine from a full Config. See Configure.
func New(cfg Config, opts ...Option) (*Engine, error) {
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg.Alphabet = slices.Clone(e.cfg.Alphabet)

	if len(e.cfg.Alphabet) == 0 {
		return nil, ErrEmptyAlphabet
	}
	if e.cfg.CharAspect <= 0 {
		e.cfg.CharAspect = imageutil.DefaultCharAspect
	}
	if e.cfg.Trees <= 0 {
		e.cfg.Trees = ann.DefaultTrees
	}

	rasterizer, err := NewRasterizer(e.cfg.FontPath, e.cfg.FontSize, e.cfg.GlyphSize)
	if err != nil {
		if !errors.Is(err, ErrFontLoad) {
			return nil, err
		}
		e.fontErr = err
		e.log().Warn("using fallback font", "font", e.cfg.FontPath, "error", err)
	}
	e.rasterizer = rasterizer
	return e, nil
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return Logger()
}

// Config returns a copy of the engine settings.
func (e *Engine) Config() Config {
	cfg := e.cfg
	cfg.Alphabet = slices.Clone(e.cfg.Alphabet)
	return cfg
}

// FontError returns the error that made the engine fall back to the
// built-in face, or nil if the requested font is in use.
func (e *Engine) FontError() error {
	return e.fontErr
}

// Prepare renders the glyph library and builds the index. Every call
// rebuilds from scratch and replaces the previous state, which renders in
// flight keep using until they finish.
func (e *Engine) Prepare() error {
	e.prepareMu.Lock()
	defer e.prepareMu.Unlock()

	start := time.Now()
	lib, err := BuildLibrary(e.cfg.Alphabet, e.rasterizer)
	if err != nil {
		return err
	}
	libTime := time.Since(start)

	index := e.newIndex()
	if err := index.Build(lib.Items()); err != nil {
		return fmt.Errorf("failed to build glyph index: %w", err)
	}

	if e.cfg.GlyphDebugDir != "" {
		if err := WriteGlyphDebugDir(e.cfg.GlyphDebugDir, lib); err != nil {
			e.log().Warn("failed to write glyph debug directory",
				"dir", e.cfg.GlyphDebugDir, "error", err)
		}
	}

	m := NewMatcher(lib, index)
	m.SearchEffort = e.cfg.SearchEffort
	m.Interpolation = e.cfg.Interpolation
	m.Progress = e.progress

	e.mu.Lock()
	e.matcher = m
	e.mu.Unlock()

	e.log().Debug("glyph index ready",
		"glyphs", lib.Len(),
		"exact", e.cfg.Exact,
		"trees", e.cfg.Trees,
		"library", libTime,
		"total", time.Since(start))
	return nil
}

func (e *Engine) newIndex() ann.Index {
	if e.cfg.Exact {
		return ann.NewExact()
	}
	return ann.NewForest(ann.WithTrees(e.cfg.Trees), ann.WithSeed(e.cfg.Seed))
}

// ready validates render arguments in a fixed order and returns the
// current matcher.
func (e *Engine) ready(outputWidth int, tile image.Point) (*Matcher, error) {
	if tile.X <= 0 || tile.Y <= 0 {
		return nil, fmt.Errorf("tile %dx%d: %w", tile.X, tile.Y, ErrInvalidTileSize)
	}
	if outputWidth <= 0 {
		return nil, fmt.Errorf("output width %d: %w", outputWidth, ErrInvalidDimensions)
	}
	e.mu.RLock()
	m := e.matcher
	e.mu.RUnlock()
	if m == nil {
		return nil, ErrNotReady
	}
	return m, nil
}

// Render decodes src and converts it to text. The edge map is outputWidth
// pixels wide; each tile of it becomes one character.
func (e *Engine) Render(ctx context.Context, src []byte, outputWidth int, tile image.Point) (string, error) {
	m, err := e.ready(outputWidth, tile)
	if err != nil {
		return "", err
	}
	img, err := imageutil.DecodeBytes(src)
	if err != nil {
		return "", err
	}
	grid, err := e.match(ctx, m, img, outputWidth, tile)
	if err != nil {
		return "", err
	}
	return grid.String(), nil
}

// RenderFile loads the image at path and converts it to text.
func (e *Engine) RenderFile(ctx context.Context, path string, outputWidth int, tile image.Point) (string, error) {
	m, err := e.ready(outputWidth, tile)
	if err != nil {
		return "", err
	}
	img, err := imageutil.LoadImage(path)
	if err != nil {
		return "", err
	}
	grid, err := e.match(ctx, m, img, outputWidth, tile)
	if err != nil {
		return "", err
	}
	return grid.String(), nil
}

// RenderImage converts an already decoded image to text.
func (e *Engine) RenderImage(ctx context.Context, img image.Image, outputWidth int, tile image.Point) (string, error) {
	grid, err := e.RenderGrid(ctx, img, outputWidth, tile)
	if err != nil {
		return "", err
	}
	return grid.String(), nil
}

// RenderGrid converts img to a character grid.
func (e *Engine) RenderGrid(ctx context.Context, img image.Image, outputWidth int, tile image.Point) (Grid, error) {
	m, err := e.ready(outputWidth, tile)
	if err != nil {
		return nil, err
	}
	return e.match(ctx, m, img, outputWidth, tile)
}

func (e *Engine) match(ctx context.Context, m *Matcher, img image.Image, outputWidth int, tile image.Point) (Grid, error) {
	start := time.Now()
	edges, err := imageutil.Preprocess(img, imageutil.PrepareOptions{
		OutputWidth:   outputWidth,
		CharAspect:    e.cfg.CharAspect,
		LowThreshold:  e.cfg.LowThreshold,
		HighThreshold: e.cfg.HighThreshold,
		Interpolation: e.cfg.Interpolation,
	})
	if err != nil {
		return nil, err
	}
	prepTime := time.Since(start)

	grid, err := m.Match(ctx, edges, tile)
	if err != nil {
		return nil, err
	}

	stats := m.CacheStats()
	e.log().Debug("rendered",
		"edges", fmt.Sprintf("%dx%d", edges.Width(), edges.Height()),
		"rows", grid.Rows(),
		"cols", grid.Cols(),
		"preprocess", prepTime,
		"total", time.Since(start),
		"cache_hit_rate", stats.HitRate())
	return grid, nil
}

// Library returns the current glyph library, or nil before Prepare.
func (e *Engine) Library() *Library {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.matcher == nil {
		return nil
	}
	return e.matcher.Library
}

// Preview draws grid with the engine's glyph bitmaps. It returns nil
// before Prepare.
func (e *Engine) Preview(grid Grid) *image.Gray {
	lib := e.Library()
	if lib == nil {
		return nil
	}
	return lib.Compose(grid)
}

// CacheStats reports tile cache usage since the last Prepare.
func (e *Engine) CacheStats() CacheStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.matcher == nil {
		return CacheStats{}
	}
	return e.matcher.CacheStats()
}
