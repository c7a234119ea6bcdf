package img2ascii

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/wbrown/img2ascii/ann"
	"github.com/wbrown/img2ascii/imageutil"
)

func newStubMatcher(t *testing.T, index ann.Index) *Matcher {
	t.Helper()
	lib, err := BuildLibrary([]rune(" #|-"), newStubRasterizer())
	if err != nil {
		t.Fatal(err)
	}
	if err := index.Build(lib.Items()); err != nil {
		t.Fatal(err)
	}
	return NewMatcher(lib, index)
}

// stubEdges returns a 16x4 edge map holding four 4x4 tiles: blank, a
// vertical stroke, solid, and a faint horizontal stroke.
func stubEdges() *imageutil.GrayImage {
	edges := imageutil.NewGrayImage(16, 4)
	for i := 0; i < 4; i++ {
		edges.Pix[i*edges.Stride+4+1] = 255
		for j := 0; j < 4; j++ {
			edges.Pix[i*edges.Stride+8+j] = 255
		}
		edges.Pix[1*edges.Stride+12+i] = 40
	}
	return edges
}

func TestMatcherPicksNearestGlyph(t *testing.T) {
	for name, index := range map[string]ann.Index{
		"exact":  ann.NewExact(),
		"forest": ann.NewForest(ann.WithTrees(10), ann.WithSeed(1)),
	} {
		t.Run(name, func(t *testing.T) {
			m := newStubMatcher(t, index)
			grid, err := m.Match(context.Background(), stubEdges(), image.Pt(4, 4))
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			// The faint stroke is stretched to full intensity first.
			if got := grid.String(); got != " |#-" {
				t.Errorf("Match = %q, want %q", got, " |#-")
			}
		})
	}
}

func TestMatcherGridDimensions(t *testing.T) {
	m := newStubMatcher(t, ann.NewExact())
	tests := []struct {
		w, h       int
		tile       image.Point
		rows, cols int
	}{
		{8, 8, image.Pt(4, 4), 2, 2},
		{10, 7, image.Pt(4, 3), 3, 3},
		{3, 3, image.Pt(4, 4), 1, 1},
		{17, 1, image.Pt(2, 5), 1, 9},
	}
	for _, tt := range tests {
		grid, err := m.Match(context.Background(), imageutil.NewGrayImage(tt.w, tt.h), tt.tile)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if grid.Rows() != tt.rows || grid.Cols() != tt.cols {
			t.Errorf("%dx%d with tile %v: got %dx%d grid, want %dx%d",
				tt.w, tt.h, tt.tile, grid.Cols(), grid.Rows(), tt.cols, tt.rows)
		}
		for _, row := range grid {
			if len(row) != tt.cols {
				t.Errorf("ragged row of length %d", len(row))
			}
		}
	}
}

func TestMatcherInvalidTileSize(t *testing.T) {
	m := newStubMatcher(t, ann.NewExact())
	for _, tile := range []image.Point{{0, 4}, {4, 0}, {-1, 4}} {
		_, err := m.Match(context.Background(), stubEdges(), tile)
		if !errors.Is(err, ErrInvalidTileSize) {
			t.Errorf("tile %v: expected ErrInvalidTileSize, got %v", tile, err)
		}
	}
}

func TestMatcherNotReady(t *testing.T) {
	lib, err := BuildLibrary([]rune(" #"), newStubRasterizer())
	if err != nil {
		t.Fatal(err)
	}
	for name, m := range map[string]*Matcher{
		"nil":     nil,
		"unbuilt": NewMatcher(lib, ann.NewExact()),
		"noindex": NewMatcher(lib, nil),
	} {
		_, err := m.Match(context.Background(), stubEdges(), image.Pt(4, 4))
		if !errors.Is(err, ErrNotReady) {
			t.Errorf("%s: expected ErrNotReady, got %v", name, err)
		}
	}
}

func TestMatcherProgress(t *testing.T) {
	m := newStubMatcher(t, ann.NewExact())
	var (
		mu    sync.Mutex
		calls int
		most  int
	)
	m.Progress = func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		most = max(most, done)
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
	}
	if _, err := m.Match(context.Background(), imageutil.NewGrayImage(8, 20), image.Pt(4, 4)); err != nil {
		t.Fatal(err)
	}
	if calls != 5 || most != 5 {
		t.Errorf("progress called %d times reaching %d, want 5 and 5", calls, most)
	}
}

func TestMatcherCache(t *testing.T) {
	m := newStubMatcher(t, ann.NewExact())
	if _, err := m.Match(context.Background(), imageutil.NewGrayImage(16, 16), image.Pt(4, 4)); err != nil {
		t.Fatal(err)
	}
	stats := m.CacheStats()
	if stats.Entries != 1 {
		t.Errorf("blank tiles should share one cache entry, got %d", stats.Entries)
	}
	if stats.Hits+stats.Misses != 16 {
		t.Errorf("expected 16 lookups, got %d", stats.Hits+stats.Misses)
	}
	if stats.Hits == 0 {
		t.Error("expected cache hits for repeated blank tiles")
	}
}

func TestMatcherCanceled(t *testing.T) {
	m := newStubMatcher(t, ann.NewExact())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Match(ctx, stubEdges(), image.Pt(4, 4))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
