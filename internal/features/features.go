package features

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/wilbur182/flagdeck/internal/config"
)

// ErrUnknownFlag is returned when a flag name is not in the catalog.
var ErrUnknownFlag = errors.New("unknown feature flag")

// Feature represents a known feature flag with its default value.
type Feature struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Default     bool   `yaml:"default"`
	Description string `yaml:"description"`
}

// Flag is a catalog entry paired with its resolved value.
type Flag struct {
	Key         string
	Name        string
	Description string
	Value       bool
}

// Known feature flags - add new features here.
var (
	// SizeWarning asks before rendering very large flag groups.
	SizeWarning = Feature{
		Name:        "size_warning",
		Title:       "Size warning",
		Default:     true,
		Description: "Show a warning before rendering very large groups",
	}
	// ExpandAllGroups opens every group on the main screen at startup.
	ExpandAllGroups = Feature{
		Name:        "expand_all_groups",
		Title:       "Expand all groups",
		Default:     false,
		Description: "Expand every group on the main screen at startup",
	}
	// CompactRows renders one line per flag without descriptions.
	CompactRows = Feature{
		Name:        "compact_rows",
		Title:       "Compact rows",
		Default:     false,
		Description: "Hide descriptions on the main screen",
	}
)

// builtinFeatures is the registry of compiled-in features.
var builtinFeatures = []Feature{
	SizeWarning,
	ExpandAllGroups,
	CompactRows,
}

// Builtin returns a copy of the compiled-in catalog.
func Builtin() []Feature {
	result := make([]Feature, len(builtinFeatures))
	copy(result, builtinFeatures)
	return result
}

// Manager handles feature flag state for one loaded configuration.
type Manager struct {
	mu        sync.RWMutex
	cfg       *config.Config
	catalog   []Feature
	defaults  map[string]bool
	overrides map[string]bool // CLI overrides take precedence
}

// NewManager creates a manager over cfg. Extra catalog entries are appended
// after the built-ins; an extra entry reusing a built-in name is ignored.
func NewManager(cfg *config.Config, extra ...Feature) *Manager {
	catalog := Builtin()
	defaults := make(map[string]bool, len(catalog)+len(extra))
	for _, f := range catalog {
		defaults[f.Name] = f.Default
	}
	for _, f := range extra {
		if f.Name == "" {
			continue
		}
		if _, dup := defaults[f.Name]; dup {
			continue
		}
		catalog = append(catalog, f)
		defaults[f.Name] = f.Default
	}

	return &Manager{
		cfg:       cfg,
		catalog:   catalog,
		defaults:  defaults,
		overrides: make(map[string]bool),
	}
}

// IsKnownFeature returns true if the feature name is registered.
func (m *Manager) IsKnownFeature(name string) bool {
	_, ok := m.defaults[name]
	return ok
}

// SetOverride sets a CLI override for a feature flag.
// Overrides take precedence over config values.
func (m *Manager) SetOverride(name string, enabled bool) error {
	if !m.IsKnownFeature(name) {
		return fmt.Errorf("%w: %s", ErrUnknownFlag, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[name] = enabled
	return nil
}

// IsEnabled checks if a feature is enabled.
// Priority: CLI override > config > default.
func (m *Manager) IsEnabled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isEnabledLocked(name)
}

// isEnabledLocked checks feature state without acquiring locks (caller must hold lock).
func (m *Manager) isEnabledLocked(name string) bool {
	if enabled, ok := m.overrides[name]; ok {
		return enabled
	}
	if m.cfg != nil && m.cfg.Features.Flags != nil {
		if enabled, ok := m.cfg.Features.Flags[name]; ok {
			return enabled
		}
	}
	return m.defaults[name] // Unknown features default to disabled
}

// ListAll returns all known features with metadata.
// Returns a copy to prevent mutation of internal state.
func (m *Manager) ListAll() []Feature {
	result := make([]Feature, len(m.catalog))
	copy(result, m.catalog)
	return result
}

// ListFlags returns a snapshot of every catalog flag with its resolved value,
// in catalog order.
func (m *Manager) ListFlags() []Flag {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flags := make([]Flag, 0, len(m.catalog))
	for _, f := range m.catalog {
		title := f.Title
		if title == "" {
			title = f.Name
		}
		flags = append(flags, Flag{
			Key:         f.Name,
			Name:        title,
			Description: f.Description,
			Value:       m.isEnabledLocked(f.Name),
		})
	}
	return flags
}

// List returns all known features with their current enabled state.
func (m *Manager) List() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]bool, len(m.catalog))
	for _, f := range m.catalog {
		result[f.Name] = m.isEnabledLocked(f.Name)
	}
	return result
}

// SetEnabled records a committed value in the in-memory config. A CLI
// override for the same flag is dropped so the committed value is observable.
// Persisting the config is the caller's job.
func (m *Manager) SetEnabled(name string, enabled bool) error {
	if !m.IsKnownFeature(name) {
		return fmt.Errorf("%w: %s", ErrUnknownFlag, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.Features.Flags == nil {
		m.cfg.Features.Flags = make(map[string]bool)
	}
	m.cfg.Features.Flags[name] = enabled
	delete(m.overrides, name)
	return nil
}

// Names returns the sorted catalog names.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.catalog))
	for _, f := range m.catalog {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}
