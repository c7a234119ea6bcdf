package img2ascii

import "strings"

// Grid is the character output of a render, one slice of runes per text
// row, top to bottom.
type Grid [][]rune

// Rows returns the number of text rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the number of characters per row.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// String joins the rows with newlines. There is no trailing newline.
func (g Grid) String() string {
	var sb strings.Builder
	for i, row := range g {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(row))
	}
	return sb.String()
}
