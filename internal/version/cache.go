package version

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheFile = "version_cache.json"
	cacheTTL  = 3 * time.Hour
)

// CacheEntry stores a cached version check result.
type CacheEntry struct {
	LatestVersion  string    `json:"latestVersion"`
	CurrentVersion string    `json:"currentVersion"`
	UpdateURL      string    `json:"updateUrl"`
	ReleaseNotes   string    `json:"releaseNotes"`
	CheckedAt      time.Time `json:"checkedAt"`
	HasUpdate      bool      `json:"hasUpdate"`
}

// CachePath returns the cache file location inside dir.
func CachePath(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, cacheFile)
}

// LoadCache reads a cached version check result.
func LoadCache(path string) (*CacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveCache writes a version check result. An empty path is a no-op.
func SaveCache(path string, entry *CacheEntry) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IsCacheValid reports whether entry is fresh and was recorded for
// currentVersion. Upgrades and downgrades invalidate it.
func IsCacheValid(entry *CacheEntry, currentVersion string, now time.Time) bool {
	if entry == nil {
		return false
	}
	if entry.CurrentVersion != currentVersion {
		return false
	}
	return now.Sub(entry.CheckedAt) < cacheTTL
}

func entryFromResult(r CheckResult, now time.Time) *CacheEntry {
	return &CacheEntry{
		LatestVersion:  r.LatestVersion,
		CurrentVersion: r.CurrentVersion,
		UpdateURL:      r.UpdateURL,
		ReleaseNotes:   r.ReleaseNotes,
		CheckedAt:      now,
		HasUpdate:      r.HasUpdate,
	}
}

func (e *CacheEntry) result() CheckResult {
	return CheckResult{
		CurrentVersion: e.CurrentVersion,
		LatestVersion:  e.LatestVersion,
		UpdateURL:      e.UpdateURL,
		ReleaseNotes:   e.ReleaseNotes,
		HasUpdate:      e.HasUpdate,
	}
}
