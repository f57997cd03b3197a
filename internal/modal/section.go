package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/flagdeck/internal/styles"
)

// Section is the interface for modal content sections.
type Section interface {
	// Render returns the rendered content and its focusable elements.
	// contentWidth is the modal width minus border and padding.
	Render(contentWidth int, focusID, hoverID string) RenderedSection

	// Update handles input while focusID is focused. It returns an action
	// string when the input triggers one.
	Update(msg tea.Msg, focusID string) (action string, cmd tea.Cmd)
}

// RenderedSection is the result of rendering a section.
type RenderedSection struct {
	Content    string
	Focusables []FocusableInfo
}

// FocusableInfo describes a focusable element within a section.
type FocusableInfo struct {
	ID      string
	OffsetX int // relative to the section's top-left
	OffsetY int
	Width   int
	Height  int
}

// --- Text Section ---

type textSection struct {
	text string
}

// Text creates a static, wrapped text section.
func Text(s string) Section {
	return &textSection{text: s}
}

func (t *textSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	return RenderedSection{Content: wrapText(t.text, contentWidth)}
}

func (t *textSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	return "", nil
}

// --- Heading Section ---

type headingSection struct {
	text string
}

// Heading creates a group heading.
func Heading(s string) Section {
	return &headingSection{text: s}
}

func (h *headingSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	return RenderedSection{Content: styles.GroupHeading.Render(ansi.Truncate(h.text, contentWidth, "…"))}
}

func (h *headingSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	return "", nil
}

// --- Spacer Section ---

type spacerSection struct{}

// Spacer creates a blank line section.
func Spacer() Section {
	return &spacerSection{}
}

func (s *spacerSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	// A single space so the layout does not drop it as empty.
	return RenderedSection{Content: " "}
}

func (s *spacerSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	return "", nil
}

// --- When Section ---

type whenSection struct {
	condition func() bool
	inner     Section
}

// When renders section only while condition returns true.
func When(condition func() bool, section Section) Section {
	return &whenSection{condition: condition, inner: section}
}

func (w *whenSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	if !w.condition() {
		return RenderedSection{}
	}
	return w.inner.Render(contentWidth, focusID, hoverID)
}

func (w *whenSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if !w.condition() {
		return "", nil
	}
	return w.inner.Update(msg, focusID)
}

// --- Custom Section ---

// CustomRenderFunc is the signature for custom section render functions.
type CustomRenderFunc func(contentWidth int, focusID, hoverID string) RenderedSection

// CustomUpdateFunc is the signature for custom section update functions.
type CustomUpdateFunc func(msg tea.Msg, focusID string) (action string, cmd tea.Cmd)

type customSection struct {
	renderFn CustomRenderFunc
	updateFn CustomUpdateFunc
}

// Custom creates a section from render and update functions. A nil updateFn
// ignores input.
func Custom(renderFn CustomRenderFunc, updateFn CustomUpdateFunc) Section {
	return &customSection{renderFn: renderFn, updateFn: updateFn}
}

func (c *customSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	if c.renderFn == nil {
		return RenderedSection{}
	}
	return c.renderFn(contentWidth, focusID, hoverID)
}

func (c *customSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if c.updateFn == nil {
		return "", nil
	}
	return c.updateFn(msg, focusID)
}

// --- Buttons Section ---

// ButtonDef defines a button in a button row.
type ButtonDef struct {
	Label    string
	ID       string
	IsDanger bool

	labelFn    func() string
	disabledFn func() bool
}

// BtnOption is a functional option for buttons.
type BtnOption func(*ButtonDef)

// Btn creates a button definition.
func Btn(label, id string, opts ...BtnOption) ButtonDef {
	b := ButtonDef{Label: label, ID: id}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// BtnDanger marks the button as a destructive action.
func BtnDanger() BtnOption {
	return func(b *ButtonDef) { b.IsDanger = true }
}

// BtnDisabledWhen disables the button while fn returns true. A disabled
// button renders muted and never produces its action.
func BtnDisabledWhen(fn func() bool) BtnOption {
	return func(b *ButtonDef) { b.disabledFn = fn }
}

// BtnLabelFunc computes the label on every render.
func BtnLabelFunc(fn func() string) BtnOption {
	return func(b *ButtonDef) { b.labelFn = fn }
}

func (b ButtonDef) label() string {
	if b.labelFn != nil {
		return b.labelFn()
	}
	return b.Label
}

// Disabled reports whether the button is currently disabled.
func (b ButtonDef) Disabled() bool {
	return b.disabledFn != nil && b.disabledFn()
}

type buttonsSection struct {
	buttons []ButtonDef
}

// Buttons creates a button row section.
func Buttons(btns ...ButtonDef) Section {
	return &buttonsSection{buttons: btns}
}

func (b *buttonsSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	if len(b.buttons) == 0 {
		return RenderedSection{}
	}

	var sb strings.Builder
	focusables := make([]FocusableInfo, 0, len(b.buttons))
	currentX := 0

	for i, btn := range b.buttons {
		if i > 0 {
			sb.WriteString("  ")
			currentX += 2
		}

		rendered := b.resolveStyle(btn, focusID, hoverID).Render(btn.label())
		sb.WriteString(rendered)
		visualWidth := ansi.StringWidth(rendered)

		focusables = append(focusables, FocusableInfo{
			ID:      btn.ID,
			OffsetX: currentX,
			Width:   visualWidth,
			Height:  1,
		})
		currentX += visualWidth
	}

	return RenderedSection{Content: sb.String(), Focusables: focusables}
}

func (b *buttonsSection) resolveStyle(btn ButtonDef, focusID, hoverID string) lipgloss.Style {
	if btn.Disabled() {
		return styles.ButtonDisabled
	}

	isFocused := btn.ID == focusID
	isHovered := btn.ID == hoverID

	if btn.IsDanger {
		if isFocused {
			return styles.ButtonDangerFocused
		}
		if isHovered {
			return styles.ButtonDangerHover
		}
		return styles.ButtonDanger
	}

	if isFocused {
		return styles.ButtonFocused
	}
	if isHovered {
		return styles.ButtonHover
	}
	return styles.Button
}

func (b *buttonsSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || keyMsg.String() != "enter" {
		return "", nil
	}
	for _, btn := range b.buttons {
		if btn.ID != focusID {
			continue
		}
		if btn.Disabled() {
			// Swallow enter so the primary action does not fire either.
			return ActionNone, nil
		}
		return btn.ID, nil
	}
	return "", nil
}

// ActionNone is returned when a section consumed input without producing an
// action.
const ActionNone = "none"

// --- Toggle Section ---

// ToggleOption configures a toggle row.
type ToggleOption func(*toggleSection)

// ToggleDisabledWhen renders the toggle muted and inert while fn returns
// true.
func ToggleDisabledWhen(fn func() bool) ToggleOption {
	return func(t *toggleSection) { t.disabledFn = fn }
}

// ToggleDescription adds a muted description line under the label.
func ToggleDescription(desc string) ToggleOption {
	return func(t *toggleSection) { t.description = desc }
}

type toggleSection struct {
	id          string
	label       string
	description string
	value       func() bool
	disabledFn  func() bool
}

// Toggle creates a focusable on/off row. The current value is read from
// value on each render; Space or Enter on the focused row returns its id as
// the action so the caller can flip the value.
func Toggle(id, label string, value func() bool, opts ...ToggleOption) Section {
	t := &toggleSection{id: id, label: label, value: value}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *toggleSection) disabled() bool {
	return t.disabledFn != nil && t.disabledFn()
}

func (t *toggleSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	box := "[ ]"
	stateStyle := styles.StatusDisabled
	if t.value != nil && t.value() {
		box = "[x]"
		stateStyle = styles.StatusEnabled
	}

	var rowStyle lipgloss.Style
	switch {
	case t.disabled():
		rowStyle = styles.Subtle
		stateStyle = styles.Subtle
	case t.id == focusID:
		rowStyle = styles.ListItemSelected
	case t.id == hoverID:
		rowStyle = styles.Body.Underline(true)
	default:
		rowStyle = styles.ListItemNormal
	}

	label := ansi.Truncate(t.label, max(1, contentWidth-4), "…")
	row := stateStyle.Render(box) + " " + rowStyle.Render(label)
	width := ansi.StringWidth(row)

	content := row
	if t.description != "" {
		desc := wrapText(t.description, max(1, contentWidth-4))
		content += "\n" + styles.Muted.Render(indent(desc, "    "))
	}

	return RenderedSection{
		Content: content,
		Focusables: []FocusableInfo{{
			ID:     t.id,
			Width:  width,
			Height: 1,
		}},
	}
}

func (t *toggleSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if t.id != focusID {
		return "", nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return "", nil
	}
	switch keyMsg.String() {
	case "enter", " ", "space":
		if t.disabled() {
			return ActionNone, nil
		}
		return t.id, nil
	}
	return "", nil
}

// --- Helper functions ---

// wrapText wraps text to fit within the given width.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		if ansi.StringWidth(line) <= width {
			result = append(result, line)
			continue
		}

		var currentLine string
		for _, word := range strings.Fields(line) {
			switch {
			case currentLine == "":
				currentLine = word
			case ansi.StringWidth(currentLine+" "+word) <= width:
				currentLine += " " + word
			default:
				result = append(result, currentLine)
				currentLine = word
			}
		}
		if currentLine != "" {
			result = append(result, currentLine)
		}
	}

	return strings.Join(result, "\n")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
