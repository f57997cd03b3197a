package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations
// and pointer booleans so unset fields fall back to defaults on load.
type saveConfig struct {
	Features    FeaturesConfig        `json:"features,omitempty"`
	Preferences savePreferencesConfig `json:"preferences,omitempty"`
	Settings    saveSettingsConfig    `json:"settings,omitempty"`
	Version     saveVersionConfig     `json:"version,omitempty"`
	UI          UIConfig              `json:"ui"`
}

type savePreferencesConfig struct {
	PrettyName       *bool `json:"prettyName,omitempty"`
	ShowFeatureHints *bool `json:"showFeatureHints,omitempty"`
}

type saveSettingsConfig struct {
	ConfirmDelay string `json:"confirmDelay,omitempty"`
	CommitDelay  string `json:"commitDelay,omitempty"`
}

type saveVersionConfig struct {
	Check *bool  `json:"check,omitempty"`
	Owner string `json:"owner,omitempty"`
	Repo  string `json:"repo,omitempty"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Features: cfg.Features,
		Preferences: savePreferencesConfig{
			PrettyName:       &cfg.Preferences.PrettyName,
			ShowFeatureHints: &cfg.Preferences.ShowFeatureHints,
		},
		Settings: saveSettingsConfig{
			ConfirmDelay: cfg.Settings.ConfirmDelay.String(),
			CommitDelay:  cfg.Settings.CommitDelay.String(),
		},
		Version: saveVersionConfig{
			Check: &cfg.Version.Check,
			Owner: cfg.Version.Owner,
			Repo:  cfg.Version.Repo,
		},
		UI: cfg.UI,
	}
}

// Save writes the config to ConfigPath().
func Save(cfg *Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating the parent directory.
func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	sc := toSaveConfig(cfg)
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}

	// Write through a temp file so a reader never sees a half-written config.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
