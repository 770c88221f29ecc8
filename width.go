package gridterm

import (
	"github.com/rivo/uniseg"
	"github.com/unilibs/uniwidth"
)

// runeWidth returns the display width: 2 for wide characters (CJK, emoji), 1 for normal, 0 for zero-width (combining marks, control chars).
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// isWideRune returns true if the rune occupies 2 columns (CJK ideographs, fullwidth forms, emoji).
func isWideRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 2
}

// isCombiningRune returns true if the rune is zero-width and attaches to the
// preceding cell rather than occupying its own column.
func isCombiningRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 0
}

// StringWidth returns the display width of a string measured over grapheme
// clusters, so combining marks and ZWJ emoji sequences count once.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// GraphemeCount returns the number of user-perceived characters in a string.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
