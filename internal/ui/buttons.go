package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wilbur182/flagdeck/internal/styles"
)

// ResolveButtonStyle returns the style for button btnIdx given the focused
// and hovered indexes (-1 for none). Focus wins over hover.
func ResolveButtonStyle(focusIdx, hoverIdx, btnIdx int) lipgloss.Style {
	if focusIdx == btnIdx {
		return styles.ButtonFocused
	}
	if hoverIdx == btnIdx {
		return styles.ButtonHover
	}
	return styles.Button
}

// RenderButtonPair renders two buttons side by side. Indexes are 1 for the
// first button, 2 for the second and 0 for neither.
func RenderButtonPair(firstLabel, secondLabel string, focusIdx, hoverIdx int) string {
	var sb strings.Builder
	sb.WriteString(ResolveButtonStyle(focusIdx, hoverIdx, 1).Render(firstLabel))
	sb.WriteString("  ")
	sb.WriteString(ResolveButtonStyle(focusIdx, hoverIdx, 2).Render(secondLabel))
	return sb.String()
}
