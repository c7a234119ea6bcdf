package img2ascii

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/img2ascii/ann"
	"github.com/wbrown/img2ascii/imageutil"
)

// DefaultSearchEffort is the number of candidates the forest gathers per
// tile before ranking them exactly.
const DefaultSearchEffort = 1000

// ProgressFunc receives the number of finished rows and the total. It may
// be called from several goroutines at once.
type ProgressFunc func(done, total int)

// Matcher maps tiles of an edge map to the closest glyph of a library.
type Matcher struct {
	Library       *Library
	Index         ann.Index
	SearchEffort  int
	Interpolation imageutil.Interpolation
	Progress      ProgressFunc

	cache *tileCache
}

// NewMatcher returns a Matcher querying index, which must have been built
// from lib.Items().
func NewMatcher(lib *Library, index ann.Index) *Matcher {
	return &Matcher{
		Library:      lib,
		Index:        index,
		SearchEffort: DefaultSearchEffort,
		cache:        newTileCache(),
	}
}

// Match splits edges into tiles of the given size and picks a character
// for each. Tiles at the right and bottom edges may be smaller than tile;
// they are stretched to the glyph size like the others. The result has
// ceil(h/tile.Y) rows of ceil(w/tile.X) characters.
func (m *Matcher) Match(ctx context.Context, edges *imageutil.GrayImage, tile image.Point) (Grid, error) {
	if tile.X <= 0 || tile.Y <= 0 {
		return nil, fmt.Errorf("tile %dx%d: %w", tile.X, tile.Y, ErrInvalidTileSize)
	}
	if m == nil || m.Library == nil || m.Index == nil || !m.Index.Built() {
		return nil, ErrNotReady
	}

	w, h := edges.Width(), edges.Height()
	rows := (h + tile.Y - 1) / tile.Y
	cols := (w + tile.X - 1) / tile.X
	grid := make(Grid, rows)

	var done atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for row := 0; row < rows; row++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			line := make([]rune, cols)
			for col := range line {
				r := image.Rect(col*tile.X, row*tile.Y, (col+1)*tile.X, (row+1)*tile.Y)
				ch, err := m.matchTile(edges.Crop(r))
				if err != nil {
					return fmt.Errorf("tile (%d,%d): %w", col, row, err)
				}
				line[col] = ch
			}
			grid[row] = line
			if m.Progress != nil {
				m.Progress(int(done.Add(1)), rows)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grid, nil
}

// matchTile resamples tile to the glyph size, stretches its contrast and
// looks up the nearest glyph.
func (m *Matcher) matchTile(tile *imageutil.GrayImage) (rune, error) {
	size := m.Library.Size()
	resized := imageutil.ResizeGray(tile, size.X, size.Y, m.Interpolation)
	v := ann.Vector(imageutil.AutoContrast(resized).Pixels())

	if m.cache != nil {
		if id, ok := m.cache.get(v); ok {
			return m.Library.Char(id), nil
		}
	}
	ids, err := m.Index.Query(v, 1, m.SearchEffort)
	if err != nil {
		return 0, err
	}
	if m.cache != nil {
		m.cache.put(v, ids[0])
	}
	return m.Library.Char(ids[0]), nil
}

// CacheStats reports tile cache usage.
func (m *Matcher) CacheStats() CacheStats {
	if m.cache == nil {
		return CacheStats{}
	}
	return m.cache.stats()
}
