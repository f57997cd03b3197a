package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/flagdeck/internal/styles"
)

// OverlayModal draws modal centered over background on a width x height
// screen. Background rows are dimmed so the modal reads as the top layer.
func OverlayModal(background, modal string, width, height int) string {
	bgLines := strings.Split(background, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}
	if len(bgLines) > height {
		bgLines = bgLines[:height]
	}

	modalLines := strings.Split(modal, "\n")
	modalW := lipgloss.Width(modal)
	modalH := len(modalLines)
	x := max(0, (width-modalW)/2)
	y := max(0, (height-modalH)/2)

	out := make([]string, len(bgLines))
	for i, line := range bgLines {
		dimmed := dimLine(line, width)
		row := i - y
		if row < 0 || row >= modalH {
			out[i] = dimmed
			continue
		}
		left := ansi.Truncate(dimmed, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		right := ansi.TruncateLeft(dimmed, x+modalW, "")
		out[i] = left + modalLines[row] + right
	}
	return strings.Join(out, "\n")
}

// dimLine strips styling from a background row and repaints it muted,
// padded to width.
func dimLine(line string, width int) string {
	plain := ansi.Strip(line)
	if w := ansi.StringWidth(plain); w < width {
		plain += strings.Repeat(" ", width-w)
	}
	return styles.Subtle.Render(plain)
}
