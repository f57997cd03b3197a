package app

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flagdeck/internal/features"
	"github.com/wilbur182/flagdeck/internal/modal"
	"github.com/wilbur182/flagdeck/internal/prefs"
	"github.com/wilbur182/flagdeck/internal/settings"
)

const (
	settingsModalWidth = 64

	actionApply  = "settings-apply"
	actionCancel = "settings-cancel"

	prefPrefix = "pref:"
	flagPrefix = "flag:"

	labelApply   = "Apply changes and close"
	labelApplied = "Changes applied ✓"
)

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

func prefID(k prefs.Key) string { return prefPrefix + string(k) }
func flagID(k string) string    { return flagPrefix + k }

// buildSettingsModal lays out the General and Experiments groups for s.
// Every row reads its value from the session drafts on render.
func (m *Model) buildSettingsModal(s *settings.Session) *modal.Modal {
	md := modal.New("Settings",
		modal.WithWidth(settingsModalWidth),
		modal.WithPrimaryAction(actionApply),
	)

	md.AddSection(modal.Heading("General"))
	for _, p := range prefs.All() {
		k := p.Key
		md.AddSection(modal.Toggle(prefID(k), p.Name,
			func() bool { v, _ := s.PreferenceDraft(k); return v },
			modal.ToggleDescription(p.Description),
			modal.ToggleDisabledWhen(s.Applying),
		))
	}

	md.AddSection(modal.Spacer())
	md.AddSection(modal.Heading("Experiments"))
	flags := s.Flags()
	if len(flags) == 0 {
		md.AddSection(modal.Text("No experimental flags."))
	}
	for _, f := range flags {
		k := f.Key
		opts := []modal.ToggleOption{modal.ToggleDisabledWhen(s.Applying)}
		if f.Description != "" {
			opts = append(opts, modal.ToggleDescription(f.Description))
		}
		md.AddSection(modal.Toggle(flagID(k), m.flagLabel(f),
			func() bool { v, _ := s.FlagDraft(k); return v },
			opts...,
		))
	}

	md.AddSection(modal.Spacer())
	md.AddSection(modal.Custom(func(width int, _, _ string) modal.RenderedSection {
		return modal.RenderedSection{Content: m.bannerText(width)}
	}, nil))
	md.AddSection(modal.Spacer())
	md.AddSection(modal.Buttons(
		modal.Btn("Cancel", actionCancel, modal.BtnDisabledWhen(s.Applying)),
		modal.Btn(labelApply, actionApply,
			modal.BtnDisabledWhen(func() bool { return !s.CanApply() }),
			modal.BtnLabelFunc(func() string {
				if s.Applying() {
					return labelApplied
				}
				return labelApply
			}),
		),
	))
	return md
}

// flagLabel names a flag by its title when pretty names are on, otherwise
// by its key.
func (m *Model) flagLabel(f features.Flag) string {
	if m.store.Preference(prefs.PrettyName) {
		return f.Name
	}
	return f.Key
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.settingsKeys.CopyURL):
		m.copyReleaseURL()
		return nil
	case key.Matches(msg, m.settingsKeys.Apply):
		m.handleSettingsAction(actionApply)
		return nil
	}
	action, cmd := m.settingsModal.HandleKey(msg)
	m.handleSettingsAction(action)
	return cmd
}

// handleSettingsAction forwards a modal action to the session.
func (m *Model) handleSettingsAction(action string) {
	s := m.session
	if s == nil {
		return
	}

	switch {
	case action == "" || action == modal.ActionNone:
		return
	case action == modal.ActionCancel || action == actionCancel:
		s.Cancel()
	case action == actionApply:
		s.Apply()
	case strings.HasPrefix(action, prefPrefix):
		k := prefs.Key(strings.TrimPrefix(action, prefPrefix))
		v, _ := s.PreferenceDraft(k)
		err := s.TogglePreference(k, !v)
		m.reportToggle(err)
		if err == nil && k == prefs.ShowFeatureHints && v {
			// The session rewound the stored tour.
			m.loadTour()
		}
	case strings.HasPrefix(action, flagPrefix):
		k := strings.TrimPrefix(action, flagPrefix)
		v, _ := s.FlagDraft(k)
		m.reportToggle(s.ToggleFlag(k, !v))
	}
}

func (m *Model) reportToggle(err error) {
	switch {
	case err == nil, errors.Is(err, settings.ErrBusy):
	case errors.Is(err, settings.ErrUnknownKey):
		m.ShowError("Unknown setting")
	default:
		m.ShowError(err.Error())
	}
}

func (m *Model) copyReleaseURL() {
	if m.banner.URL == "" {
		return
	}
	if err := clipboardWrite(m.banner.URL); err != nil {
		m.logger.Warn("copy release url", "err", err)
		m.ShowError("Could not copy link")
		return
	}
	m.ShowToast("Copied "+m.banner.URL, toastDuration)
}
