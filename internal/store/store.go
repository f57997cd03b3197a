// Package store holds the committed application state: feature flag values,
// named preferences and modal visibility. State changes only through
// dispatched actions; flag and preference changes are persisted to the
// config file.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wilbur182/flagdeck/internal/config"
	"github.com/wilbur182/flagdeck/internal/features"
	"github.com/wilbur182/flagdeck/internal/prefs"
)

// ErrUnknownPreference is returned for a preference key outside prefs.All.
var ErrUnknownPreference = errors.New("unknown preference")

// Action is a state change request handled by Dispatch.
type Action interface {
	actionName() string
}

// ChangeFlag commits a feature flag value.
type ChangeFlag struct {
	Name  string
	Value bool
}

// SetPreference commits a named preference value.
type SetPreference struct {
	Key   prefs.Key
	Value bool
}

// SetTheme commits the UI theme name.
type SetTheme struct {
	Name string
}

// ToggleSettingsModal shows or hides the settings modal.
type ToggleSettingsModal struct {
	Visible bool
}

func (ChangeFlag) actionName() string          { return "change_flag" }
func (SetPreference) actionName() string       { return "set_preference" }
func (SetTheme) actionName() string            { return "set_theme" }
func (ToggleSettingsModal) actionName() string { return "toggle_settings_modal" }

// Persister writes the config after a committed change.
type Persister func(*config.Config) error

// Option configures a Store.
type Option func(*Store)

// WithPersister sets the function used to persist committed changes.
// The default keeps changes in memory only.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persist = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Store is the global committed state.
type Store struct {
	mu              sync.RWMutex
	cfg             *config.Config
	flags           *features.Manager
	persist         Persister
	logger          *slog.Logger
	settingsVisible bool
}

// New creates a store over cfg. flags must resolve against the same cfg.
func New(cfg *config.Config, flags *features.Manager, opts ...Option) *Store {
	s := &Store{
		cfg:     cfg,
		flags:   flags,
		persist: func(*config.Config) error { return nil },
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies an action. Flag and preference changes are persisted; a
// persistence failure leaves the in-memory value changed and returns an error.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch act := a.(type) {
	case ChangeFlag:
		if err := s.flags.SetEnabled(act.Name, act.Value); err != nil {
			return err
		}
		return s.persistLocked(a)
	case SetPreference:
		switch act.Key {
		case prefs.PrettyName:
			s.cfg.Preferences.PrettyName = act.Value
		case prefs.ShowFeatureHints:
			s.cfg.Preferences.ShowFeatureHints = act.Value
		default:
			return fmt.Errorf("%w: %s", ErrUnknownPreference, act.Key)
		}
		return s.persistLocked(a)
	case SetTheme:
		if act.Name == "" {
			return errors.New("empty theme name")
		}
		s.cfg.UI.Theme.Name = act.Name
		return s.persistLocked(a)
	case ToggleSettingsModal:
		s.settingsVisible = act.Visible
		s.logger.Debug("settings modal visibility", "visible", act.Visible)
		return nil
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
}

func (s *Store) persistLocked(a Action) error {
	if err := s.persist(s.cfg); err != nil {
		s.logger.Error("persist config", "action", a.actionName(), "err", err)
		return fmt.Errorf("persisting %s: %w", a.actionName(), err)
	}
	s.logger.Debug("committed", "action", a.actionName())
	return nil
}

// Flag returns the committed value of a feature flag.
func (s *Store) Flag(name string) bool {
	return s.flags.IsEnabled(name)
}

// Preference returns the committed value of a named preference.
func (s *Store) Preference(key prefs.Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch key {
	case prefs.PrettyName:
		return s.cfg.Preferences.PrettyName
	case prefs.ShowFeatureHints:
		return s.cfg.Preferences.ShowFeatureHints
	}
	return false
}

// Theme returns the committed UI theme name.
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.UI.Theme.Name
}

// SettingsVisible reports whether the settings modal is shown.
func (s *Store) SettingsVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settingsVisible
}

// SetFlag dispatches ChangeFlag.
func (s *Store) SetFlag(name string, value bool) error {
	return s.Dispatch(ChangeFlag{Name: name, Value: value})
}

// SetPreference dispatches SetPreference.
func (s *Store) SetPreference(key prefs.Key, value bool) error {
	return s.Dispatch(SetPreference{Key: key, Value: value})
}

// SetVisible dispatches ToggleSettingsModal.
func (s *Store) SetVisible(visible bool) error {
	return s.Dispatch(ToggleSettingsModal{Visible: visible})
}

// Features returns the flag manager backing the store.
func (s *Store) Features() *features.Manager {
	return s.flags
}
