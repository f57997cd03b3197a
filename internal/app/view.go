package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flagdeck/internal/features"
	"github.com/wilbur182/flagdeck/internal/prefs"
	"github.com/wilbur182/flagdeck/internal/styles"
	"github.com/wilbur182/flagdeck/internal/ui"
)

const (
	labelColumn    = 28
	maxNotesLines  = 12
	defaultWidth   = 80
	defaultHeight  = 24
	minDescription = 10

	// Groups with more rows than this start collapsed.
	largeGroup = 25

	groupGeneral     = "General"
	groupExperiments = "Experiments"
)

func (m *Model) handleMainKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Settings):
		m.openSettings()
	case key.Matches(msg, m.keys.Theme):
		m.openThemeSwitcher()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Reload):
		if m.applying() {
			return nil
		}
		m.disposeSession()
		m.reload()
	case key.Matches(msg, m.keys.ToggleGroup):
		m.toggleGroup(groupExperiments, len(m.flags.ListFlags()))
	case key.Matches(msg, m.keys.NextHint):
		if m.hintsVisible() {
			if err := m.tour.Next(); err != nil {
				m.logger.Warn("advance hint tour", "err", err)
			}
		}
	case key.Matches(msg, m.keys.DismissHint):
		if m.hintsVisible() {
			if err := m.tour.Dismiss(); err != nil {
				m.logger.Warn("dismiss hint tour", "err", err)
			}
		}
	}
	return nil
}

func (m *Model) hintsVisible() bool {
	if m.tour == nil || !m.store.Preference(prefs.ShowFeatureHints) {
		return false
	}
	_, ok := m.tour.Current()
	return ok
}

func (m *Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// View renders the flag overview, with the settings modal on top when open.
func (m *Model) View() string {
	w, h := m.size()
	bg := m.renderMain(w)
	switch {
	case m.settingsOpen():
		return ui.OverlayModal(bg, m.settingsModal.Render(w, h, m.mouseHandler), w, h)
	case m.themeModal != nil:
		return ui.OverlayModal(bg, m.themeModal.Render(w, h, m.mouseHandler), w, h)
	}
	return bg
}

func (m *Model) renderMain(width int) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(ProductName))
	if m.opts.Version != "" {
		b.WriteString(" " + styles.Muted.Render(m.opts.Version))
	}
	b.WriteString("\n")
	b.WriteString(ui.RenderDivider(width))
	b.WriteString("\n\n")

	if m.hintsVisible() {
		b.WriteString(m.renderHint(width))
		b.WriteString("\n\n")
	}

	general := make([]string, 0, len(prefs.All()))
	for _, p := range prefs.All() {
		general = append(general, m.renderRow(p.Name, p.Description, m.store.Preference(p.Key), width))
	}
	b.WriteString(m.renderGroup(groupGeneral, general, ""))

	b.WriteString("\n")
	flags := m.flags.ListFlags()
	compact := m.flags.IsEnabled(features.CompactRows.Name)
	rows := make([]string, 0, len(flags))
	for _, f := range flags {
		desc := f.Description
		if compact {
			desc = ""
		}
		rows = append(rows, m.renderRow(m.flagLabel(f), desc, f.Value, width))
	}
	b.WriteString(m.renderGroup(groupExperiments, rows, "No experimental flags."))

	if notes := m.renderNotes(width); notes != "" {
		b.WriteString("\n")
		b.WriteString(notes)
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		if m.statusIsError {
			b.WriteString(styles.ToastError.Render(m.statusMsg))
		} else {
			b.WriteString(styles.ToastSuccess.Render(m.statusMsg))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// groupExpanded reports whether a group of n rows shows its rows. Large
// groups start collapsed unless expand_all_groups is on.
func (m *Model) groupExpanded(name string, n int) bool {
	if open, ok := m.groupOpen[name]; ok {
		return open
	}
	return n <= largeGroup || m.flags.IsEnabled(features.ExpandAllGroups.Name)
}

func (m *Model) toggleGroup(name string, n int) {
	if m.groupOpen == nil {
		m.groupOpen = make(map[string]bool)
	}
	m.groupOpen[name] = !m.groupExpanded(name, n)
}

// renderGroup draws a heading and its rows. Large groups get a size warning
// when size_warning is on.
func (m *Model) renderGroup(name string, rows []string, empty string) string {
	var b strings.Builder
	b.WriteString(styles.GroupHeading.Render(name))
	b.WriteString("\n")
	if len(rows) == 0 && empty != "" {
		b.WriteString(styles.Muted.Render("  "+empty) + "\n")
		return b.String()
	}
	if !m.groupExpanded(name, len(rows)) {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  %d rows hidden (e to expand)", len(rows))) + "\n")
		return b.String()
	}
	if len(rows) > largeGroup && m.flags.IsEnabled(features.SizeWarning.Name) {
		b.WriteString(styles.Body.Foreground(styles.Warning).Render(fmt.Sprintf("  ! large group: %d rows", len(rows))) + "\n")
	}
	for _, r := range rows {
		b.WriteString(r)
	}
	return b.String()
}

// renderRow draws "  [on]  label  description" truncated to width.
func (m *Model) renderRow(label, desc string, on bool, width int) string {
	state := styles.StatusDisabled.Render("off")
	if on {
		state = styles.StatusEnabled.Render("on ")
	}
	row := "  " + state + "  " + styles.Body.Render(ui.PadRight(label, labelColumn))
	if rest := width - labelColumn - 9; desc != "" && rest >= minDescription {
		row += "  " + styles.Muted.Render(ui.Truncate(desc, rest))
	}
	return row + "\n"
}

func (m *Model) renderHint(width int) string {
	hint, _ := m.tour.Current()
	title := fmt.Sprintf("Tip %d/%d: %s", m.tour.Step()+1, m.tour.Total(), hint.Title)
	body := ui.Truncate(hint.Body, max(1, width-4))
	return styles.Subtitle.Render(title) + "\n" +
		"  " + styles.Body.Render(body) + "\n" +
		"  " + ui.RenderButtonPair("Next (n)", "Dismiss (x)", 0, 0)
}

// renderNotes shows the release notes of a newer version.
func (m *Model) renderNotes(width int) string {
	if !m.banner.Outdated || m.banner.Notes == "" {
		return ""
	}
	lines := m.notes.RenderContent(m.banner.Notes, max(1, width-2))
	if len(lines) > maxNotesLines {
		lines = append(lines[:maxNotesLines], styles.Muted.Render("…"))
	}
	return styles.Subtitle.Render("What's new in "+m.banner.Latest) + "\n" + strings.Join(lines, "\n")
}

// bannerText is the version line at the bottom of the settings modal.
func (m *Model) bannerText(width int) string {
	line := ui.Truncate(m.banner.Line(ProductName), max(1, width))
	if m.banner.Outdated {
		line += "\n" + styles.Muted.Render(ui.Truncate("y to copy "+m.banner.URL, max(1, width)))
	}
	return styles.Banner.Render(line)
}
