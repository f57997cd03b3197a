// Package modal renders declarative, focusable modal dialogs. A Modal is a
// title plus a vertical stack of Sections; it owns focus order, hover state
// and scrolling, and reports user intent as action strings.
package modal

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flagdeck/internal/mouse"
)

// Variant selects the border and title color.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDanger
	VariantWarning
	VariantInfo
)

const (
	// MinModalWidth is the narrowest a modal renders.
	MinModalWidth = 30
	// DefaultModalWidth is used when WithWidth is not given.
	DefaultModalWidth = 60
	// ModalPadding is border(2) plus horizontal padding(4).
	ModalPadding = 6
)

// Well-known actions.
const (
	ActionCancel = "cancel"
)

// Option configures a Modal.
type Option func(*Modal)

// WithWidth sets the preferred width.
func WithWidth(w int) Option {
	return func(m *Modal) { m.width = w }
}

// WithVariant sets the color variant.
func WithVariant(v Variant) Option {
	return func(m *Modal) { m.variant = v }
}

// WithHints toggles the keyboard hint line under the content.
func WithHints(show bool) Option {
	return func(m *Modal) { m.showHints = show }
}

// WithPrimaryAction sets the action returned for Enter when the focused
// element does not produce one.
func WithPrimaryAction(action string) Option {
	return func(m *Modal) { m.primaryAction = action }
}

// WithCloseOnBackdropClick makes a click outside the modal return
// ActionCancel.
func WithCloseOnBackdropClick(enabled bool) Option {
	return func(m *Modal) { m.closeOnBackdrop = enabled }
}

// Modal is a declarative dialog.
type Modal struct {
	title           string
	variant         Variant
	width           int
	showHints       bool
	primaryAction   string
	closeOnBackdrop bool

	sections []Section

	focusIDs     []string
	focusIdx     int
	pendingFocus string
	hoverID      string
	scrollOffset int
	revealFocus  bool
}

// New creates a modal with the given title.
func New(title string, opts ...Option) *Modal {
	m := &Modal{
		title:     title,
		width:     DefaultModalWidth,
		showHints: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddSection appends a section and returns the modal for chaining.
func (m *Modal) AddSection(s Section) *Modal {
	m.sections = append(m.sections, s)
	return m
}

// Render lays out the modal centered in a screenW x screenH area and
// registers hit regions on handler. Focus order is refreshed on each call.
func (m *Modal) Render(screenW, screenH int, handler *mouse.Handler) string {
	return m.buildLayout(screenW, screenH, handler)
}

// FocusedID returns the ID of the focused element, or "".
func (m *Modal) FocusedID() string {
	return m.currentFocusID()
}

// SetFocus focuses the element with id. If the element is not known yet it
// is focused on the next Render.
func (m *Modal) SetFocus(id string) {
	m.revealFocus = true
	for i, fid := range m.focusIDs {
		if fid == id {
			m.focusIdx = i
			m.pendingFocus = ""
			return
		}
	}
	m.pendingFocus = id
}

func (m *Modal) currentFocusID() string {
	if m.pendingFocus != "" {
		return m.pendingFocus
	}
	if len(m.focusIDs) == 0 {
		return ""
	}
	if m.focusIdx < 0 || m.focusIdx >= len(m.focusIDs) {
		return m.focusIDs[0]
	}
	return m.focusIDs[m.focusIdx]
}

// resolvePendingFocus is called by the layout once focus IDs are known.
func (m *Modal) resolvePendingFocus() {
	if m.pendingFocus == "" {
		return
	}
	for i, fid := range m.focusIDs {
		if fid == m.pendingFocus {
			m.focusIdx = i
			break
		}
	}
	m.pendingFocus = ""
}

func (m *Modal) cycleFocus(delta int) {
	m.resolvePendingFocus()
	n := len(m.focusIDs)
	if n == 0 {
		return
	}
	m.focusIdx = ((m.focusIdx+delta)%n + n) % n
	m.revealFocus = true
}

// HandleKey processes a key press. Esc returns ActionCancel; tab and
// shift+tab move focus; other keys go to the sections, and Enter falls
// back to the primary action.
func (m *Modal) HandleKey(msg tea.KeyMsg) (string, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return ActionCancel, nil
	case "tab", "down":
		m.cycleFocus(1)
		return "", nil
	case "shift+tab", "up":
		m.cycleFocus(-1)
		return "", nil
	}

	focusID := m.currentFocusID()
	for _, s := range m.sections {
		if action, cmd := s.Update(msg, focusID); action != "" || cmd != nil {
			return action, cmd
		}
	}

	if msg.String() == "enter" && m.primaryAction != "" {
		return m.primaryAction, nil
	}
	return "", nil
}

// HandleMouse processes a mouse event against the regions registered by the
// last Render. A click on a focusable element focuses it and returns its ID.
func (m *Modal) HandleMouse(msg tea.MouseMsg, handler *mouse.Handler) string {
	if handler == nil {
		return ""
	}
	action := handler.HandleMouse(msg)
	switch action.Type {
	case mouse.ActionClick, mouse.ActionDoubleClick:
		if action.Region == nil {
			return ""
		}
		switch action.Region.ID {
		case regionBackdrop:
			if m.closeOnBackdrop {
				return ActionCancel
			}
			return ""
		case regionBody:
			return ""
		}
		m.SetFocus(action.Region.ID)
		return action.Region.ID
	case mouse.ActionScrollUp, mouse.ActionScrollDown:
		m.scrollOffset = max(0, m.scrollOffset+action.Delta)
	case mouse.ActionHover:
		m.hoverID = ""
		if action.Region != nil && action.Region.ID != regionBackdrop && action.Region.ID != regionBody {
			m.hoverID = action.Region.ID
		}
	}
	return ""
}
