package img2ascii

import (
	"errors"

	"github.com/wbrown/img2ascii/ann"
	"github.com/wbrown/img2ascii/imageutil"
)

var (
	// ErrEmptyAlphabet is returned when no candidate characters are given.
	ErrEmptyAlphabet = errors.New("alphabet is empty")

	// ErrFontLoad reports that the configured font could not be read or
	// parsed. It is recoverable: the rasterizer falls back to a built-in
	// bitmap face.
	ErrFontLoad = errors.New("failed to load font")

	// ErrInvalidTileSize is returned for tile sizes with a non-positive
	// dimension.
	ErrInvalidTileSize = errors.New("invalid tile size")

	// ErrNotReady is returned when rendering is attempted before Prepare
	// has built the glyph index.
	ErrNotReady = errors.New("engine not prepared")

	// ErrDimensionMismatch is returned when a tile vector and the glyph
	// vectors disagree in length.
	ErrDimensionMismatch = ann.ErrDimensionMismatch

	// ErrUnsupportedFormat is returned when an input image cannot be
	// decoded.
	ErrUnsupportedFormat = imageutil.ErrUnsupportedFormat

	// ErrInvalidDimensions is returned for non-positive output widths,
	// glyph sizes or point sizes.
	ErrInvalidDimensions = imageutil.ErrInvalidDimensions
)
