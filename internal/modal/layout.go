package modal

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wilbur182/flagdeck/internal/mouse"
	"github.com/wilbur182/flagdeck/internal/styles"
)

const (
	regionBackdrop = "modal-backdrop"
	regionBody     = "modal-body"

	// Rows kept free above and below the modal box.
	screenMargin = 3
	minInner     = 8

	boxInsetX = 3 // border + horizontal padding
	boxInsetY = 2 // border + vertical padding
)

// frame is the content of one render: every visible line, and the line
// each section starts on.
type frame struct {
	lines  []string
	blocks []block
}

type block struct {
	top        int
	focusables []FocusableInfo
}

// span returns the first line and height of the focusable with id.
func (f frame) span(id string) (int, int, bool) {
	for _, b := range f.blocks {
		for _, fo := range b.focusables {
			if fo.ID == id {
				return b.top + fo.OffsetY, max(1, fo.Height), true
			}
		}
	}
	return 0, 0, false
}

// measure renders every section and rebuilds the focus order. Sections that
// render empty, such as a hidden When, are left out entirely.
func (m *Modal) measure(contentWidth int) frame {
	var f frame
	focusID := m.currentFocusID()
	m.focusIDs = m.focusIDs[:0]

	for _, s := range m.sections {
		res := s.Render(contentWidth, focusID, m.hoverID)
		content := strings.TrimRight(res.Content, "\n")
		if content == "" {
			continue
		}
		f.blocks = append(f.blocks, block{top: len(f.lines), focusables: res.Focusables})
		f.lines = append(f.lines, strings.Split(content, "\n")...)
		for _, fo := range res.Focusables {
			m.focusIDs = append(m.focusIDs, fo.ID)
		}
	}

	m.resolvePendingFocus()
	if m.focusIdx >= len(m.focusIDs) {
		m.focusIdx = 0
	}
	return f
}

// scrollTo clamps the scroll offset and, after keyboard focus moved, brings
// the focused element into the viewport.
func (m *Modal) scrollTo(f frame, viewportH int) {
	if m.revealFocus {
		m.revealFocus = false
		if top, h, ok := f.span(m.currentFocusID()); ok {
			if top < m.scrollOffset {
				m.scrollOffset = top
			}
			if bottom := top + h; bottom > m.scrollOffset+viewportH {
				m.scrollOffset = bottom - viewportH
			}
		}
	}
	m.scrollOffset = clamp(m.scrollOffset, 0, max(0, len(f.lines)-viewportH))
}

// buildLayout renders the modal box and registers hit regions for the
// backdrop, the box and every visible focusable.
func (m *Modal) buildLayout(screenW, screenH int, handler *mouse.Handler) string {
	width := clamp(m.width, MinModalWidth, max(MinModalWidth, screenW-4))
	f := m.measure(width - ModalPadding)

	header := ""
	if m.title != "" {
		header = titleStyle(m.variant).Render(m.title)
	}
	headerH := 0
	if header != "" {
		headerH = lipgloss.Height(header)
	}

	avail := max(minInner, screenH-2*screenMargin) - headerH
	if m.showHints || len(f.lines) > avail {
		avail-- // footer
	}
	viewportH := clamp(len(f.lines), 1, max(1, avail))
	m.scrollTo(f, viewportH)

	visible := f.lines[min(m.scrollOffset, len(f.lines)):min(m.scrollOffset+viewportH, len(f.lines))]
	var inner []string
	if header != "" {
		inner = append(inner, header)
	}
	inner = append(inner, strings.Join(visible, "\n"))
	above := m.scrollOffset > 0
	below := m.scrollOffset+viewportH < len(f.lines)
	if footer := m.footer(above, below); footer != "" {
		inner = append(inner, footer)
	}

	box := styles.ModalBox.
		BorderForeground(variantColor(m.variant)).
		Width(width).
		Render(strings.Join(inner, "\n"))

	if handler != nil {
		boxW, boxH := lipgloss.Size(box)
		x := max(0, (screenW-boxW)/2)
		y := max(0, (screenH-boxH)/2)
		handler.HitMap.Clear()
		// Added first so the box and its focusables are tested on top.
		handler.HitMap.AddRect(regionBackdrop, 0, 0, screenW, screenH, nil)
		m.registerRegions(handler, f, x, y, boxW, boxH, headerH, viewportH)
	}
	return box
}

func (m *Modal) registerRegions(handler *mouse.Handler, f frame, x, y, w, h, headerH, viewportH int) {
	handler.HitMap.AddRect(regionBody, x, y, w, h, nil)

	originX := x + boxInsetX
	originY := y + boxInsetY + headerH
	for _, b := range f.blocks {
		for _, fo := range b.focusables {
			row := b.top + fo.OffsetY - m.scrollOffset
			height := max(1, fo.Height)
			if row+height <= 0 || row >= viewportH {
				continue
			}
			handler.HitMap.AddRect(fo.ID, originX+fo.OffsetX, originY+row, fo.Width, height, fo.ID)
		}
	}
}

// footer is the key hint line plus scroll marks. Empty when neither applies.
func (m *Modal) footer(above, below bool) string {
	var parts []string
	if m.showHints {
		parts = append(parts, "Tab to move · Space to toggle · Enter to confirm · Esc to cancel")
	}
	switch {
	case above && below:
		parts = append(parts, "↑↓ more")
	case above:
		parts = append(parts, "↑ more")
	case below:
		parts = append(parts, "↓ more")
	}
	if len(parts) == 0 {
		return ""
	}
	return styles.Muted.Render(strings.Join(parts, "  "))
}

func variantColor(v Variant) lipgloss.Color {
	switch v {
	case VariantDanger:
		return styles.Error
	case VariantWarning:
		return styles.Warning
	case VariantInfo:
		return styles.Info
	}
	return styles.Primary
}

func titleStyle(v Variant) lipgloss.Style {
	if v == VariantDefault {
		return styles.ModalTitle
	}
	return styles.ModalTitle.Foreground(variantColor(v))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
