package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wilbur182/flagdeck/internal/styles"
)

// RenderDivider renders a horizontal rule width cells wide for separating
// sections of a view.
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(styles.BorderNormal).
		Render(strings.Repeat("─", width))
}
