package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flagdeck/internal/config"
	"github.com/wilbur182/flagdeck/internal/features"
	"github.com/wilbur182/flagdeck/internal/hints"
	"github.com/wilbur182/flagdeck/internal/keymap"
	"github.com/wilbur182/flagdeck/internal/markdown"
	"github.com/wilbur182/flagdeck/internal/modal"
	"github.com/wilbur182/flagdeck/internal/mouse"
	"github.com/wilbur182/flagdeck/internal/prefstore"
	"github.com/wilbur182/flagdeck/internal/schedule"
	"github.com/wilbur182/flagdeck/internal/settings"
	"github.com/wilbur182/flagdeck/internal/store"
	"github.com/wilbur182/flagdeck/internal/styles"
	"github.com/wilbur182/flagdeck/internal/version"
	"github.com/wilbur182/flagdeck/internal/watch"
)

// ProductName is shown in the header and the version banner.
const ProductName = "flagdeck"

const toastDuration = 3 * time.Second

// Options configures the root model.
type Options struct {
	// ConfigPath is the config file to load and persist. Defaults to
	// config.ConfigPath().
	ConfigPath string
	// Overrides are --enable/--disable values applied on every load.
	Overrides map[string]bool
	// Prefs stores the hint tour progress. Nil disables the tour.
	Prefs *prefstore.Store
	// Version is the running build version.
	Version string
	// Checker looks up the latest release. Nil skips the check.
	Checker *version.Checker
	// Watcher reports external config edits. Nil disables live reload.
	Watcher *watch.Watcher
	// Scheduler runs the apply sequence timers. Nil uses a schedule.Loop
	// driven by Update.
	Scheduler schedule.Scheduler
	Logger    *slog.Logger
}

// Model is the root Bubble Tea model for flagdeck.
type Model struct {
	opts   Options
	logger *slog.Logger

	// Loaded state, rebuilt by reload
	cfg   *config.Config
	flags *features.Manager
	store *store.Store
	tour  *hints.Tour

	// Settings modal
	loop          *schedule.Loop
	sched         schedule.Scheduler
	session       *settings.Session
	settingsModal *modal.Modal
	mouseHandler  *mouse.Handler

	// Theme switcher
	themeModal *modal.Modal

	// Keys and help
	keys         keymap.Main
	settingsKeys keymap.Settings
	help         help.Model

	// Version info
	banner version.Banner
	notes  *markdown.Renderer

	// ownWrite is the fingerprint of the last config this process saved, so
	// the watcher can tell our writes from external edits.
	ownWrite uint64
	reloads  int

	// UI state
	width, height int
	// groupOpen holds groups the user expanded or collapsed with the
	// toggle key. Other groups follow their default.
	groupOpen map[string]bool

	// Status/toast messages
	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool
}

// New loads the configuration at opts.ConfigPath and returns the root model.
func New(opts Options) (*Model, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.ConfigPath()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Model{
		opts:         opts,
		logger:       logger,
		sched:        opts.Scheduler,
		mouseHandler: mouse.NewHandler(),
		keys:         keymap.DefaultMain(),
		settingsKeys: keymap.DefaultSettings(),
		help:         help.New(),
		notes:        markdown.NewRenderer(logger),
	}
	if m.sched == nil {
		m.loop = schedule.NewLoop()
		m.sched = m.loop
	}
	if fp, err := config.Fingerprint(opts.ConfigPath); err == nil {
		m.ownWrite = fp
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	m.banner = version.NewBanner(version.CheckResult{CurrentVersion: opts.Version}, m.releasesURL())
	return m, nil
}

// Init starts the timer loop, the config watcher and the release check.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.loop != nil {
		cmds = append(cmds, m.loop.Listen())
	}
	if m.opts.Watcher != nil {
		cmds = append(cmds, watch.Listen(m.opts.Watcher))
	}
	if m.opts.Checker != nil && m.cfg.Version.Check {
		cmds = append(cmds, version.CheckAsync(m.opts.Checker, m.stateDir(), m.opts.Version))
	}
	return tea.Batch(cmds...)
}

// Close stops pending timers. Call it after the program exits.
func (m *Model) Close() {
	m.disposeSession()
	if m.loop != nil {
		m.loop.Close()
	}
}

func (m *Model) stateDir() string {
	return filepath.Dir(m.opts.ConfigPath)
}

func (m *Model) releasesURL() string {
	return version.ReleasesURL(m.cfg.Version.Owner, m.cfg.Version.Repo)
}

// load reads the config from disk and rebuilds every piece of state derived
// from it.
func (m *Model) load() error {
	cfg, err := config.LoadFrom(m.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	extra, err := features.LoadCatalog(cfg.Features.Catalog, m.stateDir())
	if err != nil {
		m.logger.Warn("flag catalog ignored", "err", err)
	}
	flags := features.NewManager(cfg, extra...)
	for name, enabled := range m.opts.Overrides {
		if err := flags.SetOverride(name, enabled); err != nil {
			m.logger.Warn("override ignored", "flag", name, "err", err)
		}
	}

	m.cfg = cfg
	m.flags = flags
	m.store = store.New(cfg, flags, store.WithPersister(m.persist), store.WithLogger(m.logger))
	m.loadTour()
	styles.ApplyTheme(cfg.UI.Theme.Name)
	return nil
}

// loadTour reads hint tour progress from the preference store.
func (m *Model) loadTour() {
	m.tour = nil
	if m.opts.Prefs == nil {
		return
	}
	tour, err := hints.Load(m.opts.Prefs)
	if err != nil {
		m.logger.Warn("hint tour", "err", err)
	}
	m.tour = tour
}

// persist saves committed changes and remembers the written content.
func (m *Model) persist(cfg *config.Config) error {
	if err := config.SaveTo(m.opts.ConfigPath, cfg); err != nil {
		return err
	}
	if fp, err := config.Fingerprint(m.opts.ConfigPath); err == nil {
		m.ownWrite = fp
	}
	return nil
}

// reload is the host reload primitive handed to settings sessions. It
// re-derives all state from the persisted config.
func (m *Model) reload() {
	m.reloads++
	if err := m.load(); err != nil {
		m.logger.Error("reload failed", "err", err)
		m.ShowError(err.Error())
		return
	}
	m.logger.Info("reloaded", "count", m.reloads)
	if m.session != nil && m.session.Err() != nil {
		m.ShowError("Some settings could not be saved")
		return
	}
	m.ShowToast("Reloaded", toastDuration)
}

// ShowToast displays a temporary status message.
func (m *Model) ShowToast(msg string, duration time.Duration) {
	m.statusMsg = msg
	m.statusIsError = false
	m.statusExpiry = time.Now().Add(duration)
}

// ShowError displays a temporary error message.
func (m *Model) ShowError(msg string) {
	m.ShowToast(msg, toastDuration)
	m.statusIsError = true
}

// ClearToast clears any expired toast message.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

// openSettings starts a new settings session over the committed state and
// shows the modal.
func (m *Model) openSettings() {
	if m.applying() {
		return
	}
	m.disposeSession()

	var pw settings.PreferenceWriter
	if m.opts.Prefs != nil {
		pw = m.opts.Prefs
	}
	s, err := settings.NewSession(settings.Deps{
		Flags:     m.flags,
		Store:     m.store,
		Prefs:     pw,
		Scheduler: m.sched,
		Reload:    m.reload,
		Logger:    m.logger,
	}, settings.Options{
		ConfirmDelay: m.cfg.Settings.ConfirmDelay,
		CommitDelay:  m.cfg.Settings.CommitDelay,
	})
	if err != nil {
		m.logger.Error("open settings", "err", err)
		m.ShowError(err.Error())
		return
	}
	m.session = s
	m.settingsModal = m.buildSettingsModal(s)
	if err := m.store.Dispatch(store.ToggleSettingsModal{Visible: true}); err != nil {
		m.logger.Warn("show settings", "err", err)
	}
}

// applying reports whether a session is between apply and commit, and tells
// the user so. The pending commit must not be cut short.
func (m *Model) applying() bool {
	if m.session == nil || !m.session.Applying() {
		return false
	}
	m.ShowToast("Settings are being applied", toastDuration)
	return true
}

func (m *Model) disposeSession() {
	if m.session == nil {
		return
	}
	m.session.Dispose()
	m.session = nil
	m.settingsModal = nil
}

// externalReload handles a config edit made outside this process. An open
// session is closed first so its timers cannot commit stale drafts.
func (m *Model) externalReload() {
	fp, err := config.Fingerprint(m.opts.ConfigPath)
	if err == nil && fp == m.ownWrite {
		return
	}
	m.ownWrite = fp
	m.logger.Info("config changed on disk")
	m.disposeSession()
	m.reloads++
	if err := m.load(); err != nil {
		m.logger.Error("reload failed", "err", err)
		m.ShowError(err.Error())
		return
	}
	m.ShowToast("Config reloaded", toastDuration)
}

// Update handles messages and routes input to the settings modal when it is
// visible.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.ClearToast()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case schedule.FiredMsg:
		if m.loop == nil {
			return m, nil
		}
		m.loop.Handle(msg)
		return m, m.loop.Listen()

	case watch.ChangedMsg:
		m.externalReload()
		return m, watch.Listen(m.opts.Watcher)

	case version.CheckedMsg:
		if msg.Result.Error != nil {
			m.logger.Debug("version check", "err", msg.Result.Error)
		}
		m.banner = version.NewBanner(msg.Result, m.releasesURL())
		return m, nil

	case tea.MouseMsg:
		switch {
		case m.settingsOpen():
			m.handleSettingsAction(m.settingsModal.HandleMouse(msg, m.mouseHandler))
		case m.themeModal != nil:
			m.handleThemeAction(m.themeModal.HandleMouse(msg, m.mouseHandler))
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.settingsOpen():
			return m, m.handleSettingsKey(msg)
		case m.themeModal != nil:
			m.handleThemeKey(msg)
			return m, nil
		}
		return m, m.handleMainKey(msg)
	}
	return m, nil
}

func (m *Model) settingsOpen() bool {
	return m.settingsModal != nil && m.store.SettingsVisible()
}
