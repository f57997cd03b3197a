package ui

import "github.com/mattn/go-runewidth"

// Truncate shortens plain text to at most width cells, adding an ellipsis
// when it cuts.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight truncates or pads plain text to exactly width cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}
