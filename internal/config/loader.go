package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	appDirName     = "flagdeck"
	configFileName = "config.json"
)

var (
	testPathMu sync.RWMutex
	testPath   string
)

// SetTestConfigPath redirects ConfigPath to the given file. Tests only.
func SetTestConfigPath(path string) {
	testPathMu.Lock()
	defer testPathMu.Unlock()
	testPath = path
}

// ResetTestConfigPath restores the default ConfigPath.
func ResetTestConfigPath() {
	SetTestConfigPath("")
}

// ConfigPath returns the path to the config file
// (~/.config/flagdeck/config.json).
func ConfigPath() string {
	testPathMu.RLock()
	p := testPath
	testPathMu.RUnlock()
	if p != "" {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, ".config", appDirName, configFileName)
}

// Dir returns the directory holding the config file and the other state
// files (preference database, version cache, debug log).
func Dir() string {
	return filepath.Dir(ConfigPath())
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config from path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var raw saveConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := mergeRaw(cfg, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeRaw copies the set fields of the on-disk representation over cfg.
func mergeRaw(cfg *Config, raw *saveConfig) error {
	if raw.Features.Flags != nil {
		cfg.Features.Flags = raw.Features.Flags
	}
	if raw.Features.Catalog != "" {
		cfg.Features.Catalog = raw.Features.Catalog
	}

	if raw.Preferences.PrettyName != nil {
		cfg.Preferences.PrettyName = *raw.Preferences.PrettyName
	}
	if raw.Preferences.ShowFeatureHints != nil {
		cfg.Preferences.ShowFeatureHints = *raw.Preferences.ShowFeatureHints
	}

	if raw.Settings.ConfirmDelay != "" {
		d, err := time.ParseDuration(raw.Settings.ConfirmDelay)
		if err != nil {
			return fmt.Errorf("settings.confirmDelay: %w", err)
		}
		cfg.Settings.ConfirmDelay = d
	}
	if raw.Settings.CommitDelay != "" {
		d, err := time.ParseDuration(raw.Settings.CommitDelay)
		if err != nil {
			return fmt.Errorf("settings.commitDelay: %w", err)
		}
		cfg.Settings.CommitDelay = d
	}

	if raw.Version.Check != nil {
		cfg.Version.Check = *raw.Version.Check
	}
	if raw.Version.Owner != "" {
		cfg.Version.Owner = raw.Version.Owner
	}
	if raw.Version.Repo != "" {
		cfg.Version.Repo = raw.Version.Repo
	}

	if raw.UI.Theme.Name != "" {
		cfg.UI.Theme.Name = raw.UI.Theme.Name
	}
	return nil
}

// Fingerprint hashes the config file content at path. A missing file hashes
// to zero.
func Fingerprint(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
