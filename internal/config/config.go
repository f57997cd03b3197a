package config

import (
	"errors"
	"time"
)

// ErrDelayOrder is returned when the commit delay would fire before the
// confirmation delay.
var ErrDelayOrder = errors.New("settings.commitDelay must not be shorter than settings.confirmDelay")

// Default timings for the apply-and-close sequence.
const (
	DefaultConfirmDelay = 1500 * time.Millisecond
	DefaultCommitDelay  = 2 * time.Second
)

// Config is the root configuration structure.
type Config struct {
	Features    FeaturesConfig    `json:"features"`
	Preferences PreferencesConfig `json:"preferences"`
	Settings    SettingsConfig    `json:"settings"`
	Version     VersionConfig     `json:"version"`
	UI          UIConfig          `json:"ui"`
}

// FeaturesConfig holds feature flag settings.
type FeaturesConfig struct {
	Flags map[string]bool `json:"flags"`
	// Catalog is an optional YAML file declaring extra experimental flags.
	// Relative paths resolve against the config directory.
	Catalog string `json:"catalog,omitempty"`
}

// PreferencesConfig holds the named application preferences.
type PreferencesConfig struct {
	PrettyName       bool `json:"prettyName"`
	ShowFeatureHints bool `json:"showFeatureHints"`
}

// SettingsConfig tunes the settings modal apply sequence.
type SettingsConfig struct {
	// ConfirmDelay is how long the "changes applied" state stays visible
	// before the modal is hidden.
	ConfirmDelay time.Duration `json:"confirmDelay"`
	// CommitDelay is how long after apply the drafts are committed and the
	// application reloads. Must be >= ConfirmDelay.
	CommitDelay time.Duration `json:"commitDelay"`
}

// VersionConfig configures the release check shown in the settings modal.
type VersionConfig struct {
	Check bool   `json:"check"`
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	Theme ThemeConfig `json:"theme"`
}

// ThemeConfig configures the color theme.
type ThemeConfig struct {
	Name string `json:"name"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Features: FeaturesConfig{
			Flags:   make(map[string]bool),
			Catalog: "flags.yaml",
		},
		Preferences: PreferencesConfig{
			PrettyName:       true,
			ShowFeatureHints: true,
		},
		Settings: SettingsConfig{
			ConfirmDelay: DefaultConfirmDelay,
			CommitDelay:  DefaultCommitDelay,
		},
		Version: VersionConfig{
			Check: true,
			Owner: "wilbur182",
			Repo:  "flagdeck",
		},
		UI: UIConfig{
			Theme: ThemeConfig{Name: "default"},
		},
	}
}

// Validate checks the configuration for errors, repairing values that have a
// safe fallback.
func (c *Config) Validate() error {
	if c.Features.Flags == nil {
		c.Features.Flags = make(map[string]bool)
	}
	if c.Settings.ConfirmDelay <= 0 {
		c.Settings.ConfirmDelay = DefaultConfirmDelay
	}
	if c.Settings.CommitDelay <= 0 {
		c.Settings.CommitDelay = DefaultCommitDelay
	}
	if c.Settings.CommitDelay < c.Settings.ConfirmDelay {
		return ErrDelayOrder
	}
	if c.UI.Theme.Name == "" {
		c.UI.Theme.Name = "default"
	}
	return nil
}
