// Package styles contains Lip Gloss style definitions.
package styles

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// TruncateString truncates a string to fit within maxWidth display cells,
// adding ellipsis if needed.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}

	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	// Need to truncate - leave room for ellipsis
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	// Truncate rune by rune
	result := ""
	for _, r := range s {
		test := result + string(r)
		if runewidth.StringWidth(test) > maxWidth-3 {
			break
		}
		result = test
	}

	return result + "..."
}

// WrapText word-wraps text to the given width for detail panes.
func WrapText(s string, width int) string {
	if width < 1 {
		return s
	}
	return wordwrap.String(s, width)
}

// FormatChildCount returns the child count suffix shown after collapsed
// nodes. Returns empty string when count is 0.
func FormatChildCount(count int) string {
	if count <= 0 {
		return ""
	}
	return fmt.Sprintf("(%d)", count)
}
