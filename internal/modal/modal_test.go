package modal

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/flagdeck/internal/mouse"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModal(on *bool, disabled *bool) *Modal {
	return New("Settings", WithWidth(50), WithPrimaryAction("apply")).
		AddSection(Heading("General")).
		AddSection(Toggle("toggle-a", "Alpha", func() bool { return *on },
			ToggleDescription("First option"))).
		AddSection(Spacer()).
		AddSection(Buttons(
			Btn("Cancel", "cancel"),
			Btn("Apply", "apply", BtnDisabledWhen(func() bool { return *disabled })),
		))
}

func findRegion(t *testing.T, h *mouse.Handler, id string) mouse.Region {
	t.Helper()
	for _, r := range h.HitMap.Regions() {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("region %q not registered", id)
	return mouse.Region{}
}

func TestRender_ContentAndFocusOrder(t *testing.T) {
	on, disabled := true, false
	m := newTestModal(&on, &disabled)
	h := mouse.NewHandler()

	out := ansi.Strip(m.Render(100, 40, h))
	for _, want := range []string{"Settings", "General", "[x] Alpha", "First option", "Cancel", "Apply"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
	if m.FocusedID() != "toggle-a" {
		t.Errorf("initial focus = %q, want toggle-a", m.FocusedID())
	}

	m.HandleKey(key("tab"))
	if m.FocusedID() != "cancel" {
		t.Errorf("after tab focus = %q, want cancel", m.FocusedID())
	}
	m.HandleKey(key("shift+tab"))
	m.HandleKey(key("shift+tab"))
	if m.FocusedID() != "apply" {
		t.Errorf("shift+tab should wrap, got %q", m.FocusedID())
	}
}

func TestHandleKey_Actions(t *testing.T) {
	on, disabled := false, false
	m := newTestModal(&on, &disabled)
	m.Render(100, 40, nil)

	if a, _ := m.HandleKey(key("esc")); a != ActionCancel {
		t.Errorf("esc = %q", a)
	}
	if a, _ := m.HandleKey(key(" ")); a != "toggle-a" {
		t.Errorf("space on toggle = %q", a)
	}
	if a, _ := m.HandleKey(key("x")); a != "" {
		t.Errorf("unbound key = %q", a)
	}

	m.SetFocus("apply")
	if a, _ := m.HandleKey(key("enter")); a != "apply" {
		t.Errorf("enter on apply = %q", a)
	}

	disabled = true
	if a, _ := m.HandleKey(key("enter")); a != ActionNone {
		t.Errorf("enter on disabled button = %q, want %q", a, ActionNone)
	}
}

func TestToggleDisabled(t *testing.T) {
	on, busy := false, true
	m := New("T").AddSection(Toggle("t", "Row", func() bool { return on },
		ToggleDisabledWhen(func() bool { return busy })))
	m.Render(80, 30, nil)

	if a, _ := m.HandleKey(key("enter")); a != ActionNone {
		t.Errorf("disabled toggle = %q", a)
	}
	busy = false
	if a, _ := m.HandleKey(key("enter")); a != "t" {
		t.Errorf("enabled toggle = %q", a)
	}
}

func TestSetFocus_BeforeRender(t *testing.T) {
	on, disabled := false, false
	m := newTestModal(&on, &disabled)
	m.SetFocus("cancel")
	if m.FocusedID() != "cancel" {
		t.Fatalf("pending focus = %q", m.FocusedID())
	}
	m.Render(100, 40, nil)
	if m.FocusedID() != "cancel" {
		t.Errorf("focus after render = %q", m.FocusedID())
	}
	m.HandleKey(key("tab"))
	if m.FocusedID() != "apply" {
		t.Errorf("tab from cancel = %q", m.FocusedID())
	}
}

func TestHandleMouse_ClickButton(t *testing.T) {
	on, disabled := false, false
	m := newTestModal(&on, &disabled)
	h := mouse.NewHandler()
	m.Render(100, 40, h)

	r := findRegion(t, h, "cancel")
	click := tea.MouseMsg{X: r.Rect.X + 1, Y: r.Rect.Y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	if a := m.HandleMouse(click, h); a != "cancel" {
		t.Errorf("click = %q, want cancel", a)
	}
	if m.FocusedID() != "cancel" {
		t.Errorf("click should focus, got %q", m.FocusedID())
	}

	backdrop := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	if a := m.HandleMouse(backdrop, h); a != "" {
		t.Errorf("backdrop click = %q, want nothing", a)
	}
}

func TestWhen_HiddenTakesNoSpace(t *testing.T) {
	show := false
	m := New("", WithHints(false)).
		AddSection(Text("top")).
		AddSection(When(func() bool { return show }, Text("middle"))).
		AddSection(Text("bottom"))

	out := ansi.Strip(m.Render(80, 30, nil))
	if strings.Contains(out, "middle") {
		t.Error("hidden section rendered")
	}
	show = true
	out = ansi.Strip(m.Render(80, 30, nil))
	if !strings.Contains(out, "middle") {
		t.Error("shown section missing")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("wrapText = %q, want %q", got, want)
	}
	if wrapText("abc", 0) != "abc" {
		t.Error("zero width should not wrap")
	}
}

func TestRender_HitRegionsMatchRows(t *testing.T) {
	m := New("Settings").
		AddSection(Text("intro")).
		AddSection(Toggle("a", "Alpha", func() bool { return true })).
		AddSection(Toggle("b", "Beta", func() bool { return false }))
	h := mouse.NewHandler()
	const screenH = 30

	box := ansi.Strip(m.Render(80, screenH, h))
	lines := strings.Split(box, "\n")
	top := (screenH - len(lines)) / 2

	for id, label := range map[string]string{"a": "Alpha", "b": "Beta"} {
		row := -1
		for i, l := range lines {
			if strings.Contains(l, label) {
				row = i
			}
		}
		if got := findRegion(t, h, id).Rect.Y; got != top+row {
			t.Errorf("region %s at y=%d, want %d", id, got, top+row)
		}
	}
}

func TestRender_FitsContent(t *testing.T) {
	m := New("T", WithHints(false)).AddSection(Text("one line"))
	out := m.Render(80, 40, nil)
	// border + padding top/bottom, title with margin, one content line
	if h := len(strings.Split(out, "\n")); h != 7 {
		t.Errorf("modal height = %d, want 7:\n%s", h, out)
	}
}

func TestRender_FocusScrollsIntoView(t *testing.T) {
	m := New("Flags", WithHints(false))
	for i := 0; i < 20; i++ {
		m.AddSection(Toggle(fmt.Sprintf("t%02d", i), fmt.Sprintf("Row %02d", i), func() bool { return false }))
	}

	out := ansi.Strip(m.Render(80, 16, nil))
	if !strings.Contains(out, "Row 00") || strings.Contains(out, "Row 15") {
		t.Fatalf("first render should start at the top:\n%s", out)
	}
	if !strings.Contains(out, "↓ more") {
		t.Error("missing scroll mark")
	}

	for i := 0; i < 15; i++ {
		m.HandleKey(key("tab"))
	}
	out = ansi.Strip(m.Render(80, 16, nil))
	if !strings.Contains(out, "Row 15") {
		t.Errorf("focused row not scrolled into view:\n%s", out)
	}
	if strings.Contains(out, "Row 00") {
		t.Error("viewport did not move")
	}
	if !strings.Contains(out, "↑") {
		t.Error("missing upward scroll mark")
	}
}
