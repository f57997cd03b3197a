package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flagdeck/internal/modal"
	"github.com/wilbur182/flagdeck/internal/store"
	"github.com/wilbur182/flagdeck/internal/styles"
)

const themeItemPrefix = "theme:"

func themeItemID(name string) string { return themeItemPrefix + name }

// themeDisplayName prefers the theme's display name over its registry key.
func themeDisplayName(name string) string {
	if t := styles.GetTheme(name); t.DisplayName != "" && t.Name == name {
		return t.DisplayName
	}
	return name
}

// openThemeSwitcher lists the built-in themes with the committed one focused.
func (m *Model) openThemeSwitcher() {
	current := m.store.Theme()
	md := modal.New("Switch Theme",
		modal.WithWidth(44),
		modal.WithCloseOnBackdropClick(true),
	)
	for _, name := range styles.ListThemes() {
		n := name
		md.AddSection(modal.Toggle(themeItemID(n), themeDisplayName(n),
			func() bool { return m.store.Theme() == n },
		))
	}
	md.SetFocus(themeItemID(current))
	m.themeModal = md
}

func (m *Model) closeThemeSwitcher() {
	m.themeModal = nil
}

func (m *Model) handleThemeKey(msg tea.KeyMsg) {
	action, _ := m.themeModal.HandleKey(msg)
	m.handleThemeAction(action)
}

func (m *Model) handleThemeAction(action string) {
	switch {
	case action == modal.ActionCancel:
		m.closeThemeSwitcher()
	case strings.HasPrefix(action, themeItemPrefix):
		m.selectTheme(strings.TrimPrefix(action, themeItemPrefix))
	}
}

// selectTheme applies name right away and commits it to the config.
func (m *Model) selectTheme(name string) {
	if !styles.IsValidTheme(name) {
		return
	}
	if err := m.store.Dispatch(store.SetTheme{Name: name}); err != nil {
		m.logger.Warn("save theme", "theme", name, "err", err)
		m.ShowError("Could not save theme")
	}
	styles.ApplyTheme(name)
	m.ShowToast("Theme: "+themeDisplayName(name), toastDuration)
}
