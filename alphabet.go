package img2ascii

import (
	"golang.org/x/text/unicode/norm"
)

// DefaultAlphabet is the set of characters used when none is configured.
// It favors thin strokes and punctuation, which match edge maps well.
const DefaultAlphabet = ` .,:;!~+_-<>|\/"^'-`

// Alphabet is an ordered set of candidate characters. The position of a
// rune is its glyph id. Repeated runes keep their first position.
type Alphabet struct {
	runes []rune
	index map[rune]int
}

// NewAlphabet builds an Alphabet from runes in order, dropping repeats.
func NewAlphabet(runes []rune) Alphabet {
	a := Alphabet{
		runes: make([]rune, 0, len(runes)),
		index: make(map[rune]int, len(runes)),
	}
	for _, r := range runes {
		if _, exists := a.index[r]; exists {
			continue
		}
		a.index[r] = len(a.runes)
		a.runes = append(a.runes, r)
	}
	return a
}

// ParseAlphabet builds an Alphabet from a string. The string is NFC
// normalized first so that a base letter and a combining mark typed
// separately become the single precomposed rune a font can render.
func ParseAlphabet(s string) Alphabet {
	return NewAlphabet([]rune(norm.NFC.String(s)))
}

// Len returns the number of distinct runes.
func (a Alphabet) Len() int {
	return len(a.runes)
}

// At returns the rune with the given id.
func (a Alphabet) At(id int) rune {
	return a.runes[id]
}

// Index returns the id of r.
func (a Alphabet) Index(r rune) (int, bool) {
	id, ok := a.index[r]
	return id, ok
}

// Runes returns a copy of the runes in id order.
func (a Alphabet) Runes() []rune {
	return append([]rune(nil), a.runes...)
}

// String returns the runes in id order as a string.
func (a Alphabet) String() string {
	return string(a.runes)
}
