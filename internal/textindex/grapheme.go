// Package textindex addresses and mutates text by user-perceived characters.
//
// Offsets handed to this package are grapheme offsets: an emoji ZWJ sequence
// or a flag counts as one unit, the same way a person editing the name would
// count it.
package textindex

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Graphemes splits text into user-perceived characters.
func Graphemes(text string) []string {
	out := make([]string, 0, len(text))
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of graphemes in text.
func Count(text string) int {
	return uniseg.GraphemeClusterCount(text)
}

// byteOffset converts a grapheme offset into a byte offset within text.
// ok is false when offset is past the end of text.
func byteOffset(text string, offset int) (int, bool) {
	if offset < 0 {
		return 0, false
	}
	if offset == 0 {
		return 0, true
	}
	pos, n := 0, 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		_, to := g.Positions()
		pos = to
		n++
		if n == offset {
			return pos, true
		}
	}
	return 0, false
}

// Join is the inverse of Graphemes.
func Join(units []string) string {
	return strings.Join(units, "")
}
