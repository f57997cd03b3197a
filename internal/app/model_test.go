package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flagdeck/internal/config"
	"github.com/wilbur182/flagdeck/internal/features"
	"github.com/wilbur182/flagdeck/internal/hints"
	"github.com/wilbur182/flagdeck/internal/prefs"
	"github.com/wilbur182/flagdeck/internal/prefstore"
	"github.com/wilbur182/flagdeck/internal/schedule"
	"github.com/wilbur182/flagdeck/internal/styles"
	"github.com/wilbur182/flagdeck/internal/version"
	"github.com/wilbur182/flagdeck/internal/watch"
)

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyApply = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

type testEnv struct {
	m     *Model
	clock *schedule.Manual
	prefs *prefstore.Store
	path  string
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	ps, err := prefstore.Open(":memory:")
	if err != nil {
		t.Fatalf("prefstore.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = ps.Close() })

	clock := schedule.NewManual()
	opts.ConfigPath = filepath.Join(t.TempDir(), "config.json")
	opts.Prefs = ps
	opts.Scheduler = clock
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Version == "" {
		opts.Version = "v1.0.0"
	}

	m, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &testEnv{m: m, clock: clock, prefs: ps, path: opts.ConfigPath}
}

func (e *testEnv) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		e.m.Update(msg)
	}
}

func TestView_ListsGroupsAndFlags(t *testing.T) {
	e := newTestEnv(t, Options{})
	view := e.m.View()

	for _, want := range []string{"General", "Experiments", "Pretty name", features.SizeWarning.Title} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestView_PrettyNameOffShowsKeys(t *testing.T) {
	e := newTestEnv(t, Options{})
	if err := e.m.store.SetPreference(prefs.PrettyName, false); err != nil {
		t.Fatal(err)
	}
	view := e.m.View()
	if !strings.Contains(view, features.SizeWarning.Name) {
		t.Errorf("View() should show raw key %q", features.SizeWarning.Name)
	}
}

// loadLargeCatalog writes n extra flags next to the config and reloads.
func (e *testEnv) loadLargeCatalog(t *testing.T, n int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("flags:\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "  - name: extra_%02d\n    title: Extra %02d\n", i, i)
	}
	if err := os.WriteFile(filepath.Join(filepath.Dir(e.path), "flags.yaml"), []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	e.send(keyRune('r'))
}

func TestView_LargeGroupStartsCollapsed(t *testing.T) {
	e := newTestEnv(t, Options{})
	e.loadLargeCatalog(t, 30)
	total := len(e.m.flags.ListFlags())

	view := e.m.View()
	if !strings.Contains(view, fmt.Sprintf("%d rows hidden", total)) {
		t.Fatalf("large group should be collapsed:\n%s", view)
	}
	if strings.Contains(view, "Extra 00") {
		t.Error("collapsed group shows rows")
	}
	if !strings.Contains(view, "Pretty name") {
		t.Error("small group should stay open")
	}

	e.send(keyRune('e'))
	view = e.m.View()
	if !strings.Contains(view, "Extra 29") {
		t.Error("e should expand the group")
	}
	if !strings.Contains(view, fmt.Sprintf("large group: %d rows", total)) {
		t.Error("size warning missing")
	}

	e.send(keyRune('e'))
	if strings.Contains(e.m.View(), "Extra 00") {
		t.Error("e should collapse the group again")
	}
}

func TestView_ExpandAllAndNoSizeWarning(t *testing.T) {
	e := newTestEnv(t, Options{Overrides: map[string]bool{
		features.ExpandAllGroups.Name: true,
		features.SizeWarning.Name:     false,
	}})
	e.loadLargeCatalog(t, 30)

	view := e.m.View()
	if !strings.Contains(view, "Extra 00") {
		t.Error("expand_all_groups should open large groups")
	}
	if strings.Contains(view, "large group") {
		t.Error("size warning shown with size_warning off")
	}
}

func TestOverridesApplyOnLoad(t *testing.T) {
	e := newTestEnv(t, Options{Overrides: map[string]bool{features.CompactRows.Name: true, "missing": true}})
	if !e.m.flags.IsEnabled(features.CompactRows.Name) {
		t.Error("override for compact_rows not applied")
	}
}

func TestSettings_ApplySequence(t *testing.T) {
	e := newTestEnv(t, Options{})
	flag := features.CompactRows.Name

	e.send(keyRune('s'))
	if !e.m.settingsOpen() {
		t.Fatal("s should open settings")
	}
	if !strings.Contains(e.m.View(), labelApply) {
		t.Error("apply button missing from modal")
	}

	e.m.settingsModal.SetFocus(flagID(flag))
	e.send(keySpace)
	if v, _ := e.m.session.FlagDraft(flag); !v {
		t.Fatal("space should flip the focused draft")
	}
	if e.m.store.Flag(flag) {
		t.Fatal("toggle must not commit")
	}

	e.send(keyApply)
	if !e.m.session.Applying() {
		t.Fatal("ctrl+s should start applying")
	}
	if !strings.Contains(e.m.View(), labelApplied) {
		t.Error("apply button should read as applied")
	}

	// Toggles are inert while applying.
	e.send(keySpace)
	if v, _ := e.m.session.FlagDraft(flag); !v {
		t.Error("draft changed while applying")
	}

	e.clock.Advance(1499 * time.Millisecond)
	if !e.m.settingsOpen() {
		t.Fatal("modal hidden before the confirm delay")
	}
	e.clock.Advance(time.Millisecond)
	if e.m.settingsOpen() {
		t.Fatal("modal should hide after the confirm delay")
	}
	if e.m.reloads != 0 {
		t.Fatal("reload before the commit delay")
	}

	e.clock.Advance(500 * time.Millisecond)
	if e.m.reloads != 1 {
		t.Fatalf("reloads = %d, want 1", e.m.reloads)
	}
	if !e.m.flags.IsEnabled(flag) {
		t.Error("committed flag not visible after reload")
	}
	cfg, err := config.LoadFrom(e.path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Features.Flags[flag] {
		t.Error("committed flag not persisted")
	}

	// Our own write is not an external edit.
	e.send(watch.ChangedMsg{})
	if e.m.reloads != 1 {
		t.Errorf("own write triggered a reload, reloads = %d", e.m.reloads)
	}
}

func TestSettings_CancelDiscardsDrafts(t *testing.T) {
	e := newTestEnv(t, Options{})

	e.send(keyRune('s'))
	e.m.settingsModal.SetFocus(prefID(prefs.PrettyName))
	e.send(keySpace, keyEsc)

	if e.m.settingsOpen() {
		t.Fatal("esc should close settings")
	}
	if !e.m.store.Preference(prefs.PrettyName) {
		t.Error("cancelled draft was committed")
	}
	if _, err := os.Stat(e.path); !os.IsNotExist(err) {
		t.Errorf("config written on cancel, stat err = %v", err)
	}
}

func TestSettings_EnterWithoutChangesDoesNothing(t *testing.T) {
	e := newTestEnv(t, Options{})

	e.send(keyRune('s'))
	e.send(keyApply)
	if e.m.session.Applying() {
		t.Error("apply should be ignored before any toggle")
	}
}

func TestSettings_DisablingHintsResetsTour(t *testing.T) {
	e := newTestEnv(t, Options{})

	e.send(keyRune('n'), keyRune('n'))
	if step, _ := e.prefs.Int(hints.Namespace, hints.StepKey, -1); step != 2 {
		t.Fatalf("tour step = %d, want 2", step)
	}

	e.send(keyRune('s'))
	e.m.settingsModal.SetFocus(prefID(prefs.ShowFeatureHints))
	e.send(keySpace)
	if step, _ := e.prefs.Int(hints.Namespace, hints.StepKey, -1); step != 0 {
		t.Errorf("tour step = %d after disabling hints, want 0", step)
	}

	e.send(keyEsc)
	if step, _ := e.prefs.Int(hints.Namespace, hints.StepKey, -1); step != 0 {
		t.Errorf("cancel restored tour step %d", step)
	}

	// The tour on screen restarts from the first hint.
	e.send(keyRune('n'))
	if step, _ := e.prefs.Int(hints.Namespace, hints.StepKey, -1); step != 1 {
		t.Errorf("tour step = %d after next, want 1", step)
	}
}

func TestSettings_OpenIgnoredWhileApplying(t *testing.T) {
	e := newTestEnv(t, Options{})

	e.send(keyRune('s'))
	e.m.settingsModal.SetFocus(prefID(prefs.PrettyName))
	e.send(keySpace, keyApply)
	id := e.m.session.ID()

	e.clock.Advance(1500 * time.Millisecond)
	e.send(keyRune('s'))
	if e.m.settingsOpen() {
		t.Error("settings reopened while applying")
	}
	if e.m.session.ID() != id {
		t.Error("applying session was replaced")
	}

	e.clock.Advance(500 * time.Millisecond)
	if e.m.store.Preference(prefs.PrettyName) {
		t.Error("pretty name should be committed off")
	}
}

func TestSettings_ReloadIgnoredWhileApplying(t *testing.T) {
	e := newTestEnv(t, Options{})
	flag := features.CompactRows.Name

	e.send(keyRune('s'))
	e.m.settingsModal.SetFocus(flagID(flag))
	e.send(keySpace, keyApply)

	e.clock.Advance(1500 * time.Millisecond)
	if e.m.settingsOpen() {
		t.Fatal("modal should be hidden after the confirm delay")
	}
	e.send(keyRune('r'))
	if e.m.session == nil || !e.m.session.Applying() {
		t.Fatal("reload closed the applying session")
	}
	if e.m.reloads != 0 {
		t.Errorf("reloads = %d before commit, want 0", e.m.reloads)
	}

	e.clock.Advance(500 * time.Millisecond)
	if e.m.reloads != 1 {
		t.Fatalf("reloads = %d, want 1", e.m.reloads)
	}
	if !e.m.flags.IsEnabled(flag) {
		t.Error("commit lost to the reload key")
	}
	cfg, err := config.LoadFrom(e.path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Features.Flags[flag] {
		t.Error("flag not persisted")
	}

	e.send(keyRune('r'))
	if e.m.reloads != 2 {
		t.Errorf("reload after commit: reloads = %d, want 2", e.m.reloads)
	}
}

func TestExternalEditDisposesSession(t *testing.T) {
	e := newTestEnv(t, Options{})

	e.send(keyRune('s'))
	e.m.settingsModal.SetFocus(flagID(features.ExpandAllGroups.Name))
	e.send(keySpace, keyApply)

	edited := config.Default()
	edited.Preferences.PrettyName = false
	if err := config.SaveTo(e.path, edited); err != nil {
		t.Fatal(err)
	}
	e.send(watch.ChangedMsg{})

	if e.m.session != nil {
		t.Fatal("external edit should close the session")
	}
	if e.clock.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", e.clock.Pending())
	}
	if e.m.store.Preference(prefs.PrettyName) {
		t.Error("external edit not loaded")
	}

	e.clock.Advance(2 * time.Second)
	if e.m.flags.IsEnabled(features.ExpandAllGroups.Name) {
		t.Error("stale session committed after external edit")
	}
	if e.m.reloads != 1 {
		t.Errorf("reloads = %d, want 1", e.m.reloads)
	}
}

func TestVersionBannerAndCopy(t *testing.T) {
	e := newTestEnv(t, Options{})

	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { clipboardWrite = orig })

	e.send(version.CheckedMsg{Result: version.CheckResult{
		CurrentVersion: "v1.0.0",
		LatestVersion:  "v1.1.0",
		HasUpdate:      true,
		UpdateURL:      "https://example.com/releases/v1.1.0",
		ReleaseNotes:   "Faster loading",
	}})

	if !strings.Contains(e.m.View(), "What's new in v1.1.0") {
		t.Error("release notes header missing")
	}

	e.send(keyRune('s'))
	if !strings.Contains(e.m.View(), "v1.1.0 is here!") {
		t.Error("update banner missing from settings")
	}
	e.send(keyRune('y'))
	if copied != "https://example.com/releases/v1.1.0" {
		t.Errorf("copied = %q", copied)
	}
}

func TestThemeSwitcher(t *testing.T) {
	t.Cleanup(func() { styles.ApplyTheme("default") })
	e := newTestEnv(t, Options{})

	e.send(keyRune('t'))
	if e.m.themeModal == nil {
		t.Fatal("t should open the theme switcher")
	}
	if !strings.Contains(e.m.View(), "Nord") {
		t.Error("theme list missing Nord")
	}

	e.m.themeModal.SetFocus(themeItemID("nord"))
	e.send(keyEnter)
	if got := e.m.store.Theme(); got != "nord" {
		t.Errorf("store theme = %q, want nord", got)
	}
	if got := styles.GetCurrentThemeName(); got != "nord" {
		t.Errorf("applied theme = %q, want nord", got)
	}

	e.send(keyEsc)
	if e.m.themeModal != nil {
		t.Error("esc should close the theme switcher")
	}
	cfg, err := config.LoadFrom(e.path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme.Name != "nord" {
		t.Errorf("persisted theme = %q", cfg.UI.Theme.Name)
	}
}
