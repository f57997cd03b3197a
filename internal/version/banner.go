package version

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Banner is the version line shown at the bottom of the settings modal.
type Banner struct {
	Current  string
	Latest   string
	URL      string
	Notes    string
	Outdated bool
}

// NewBanner builds a banner from a check result. releasesURL is used when
// the release has no page of its own.
func NewBanner(r CheckResult, releasesURL string) Banner {
	url := r.UpdateURL
	if url == "" {
		url = releasesURL
	}
	return Banner{
		Current:  r.CurrentVersion,
		Latest:   r.LatestVersion,
		URL:      url,
		Notes:    r.ReleaseNotes,
		Outdated: r.HasUpdate,
	}
}

// ReleasesURL returns the GitHub releases page of owner/repo.
func ReleasesURL(owner, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s/releases", owner, repo)
}

// Line renders the banner text for product.
func (b Banner) Line(product string) string {
	switch {
	case b.Outdated:
		return fmt.Sprintf("• %s %s is here! View release notes", product, b.Latest)
	case b.Latest != "":
		return fmt.Sprintf("• You are on the latest version of %s (%s)", product, b.Latest)
	case isDevelopmentVersion(b.Current):
		return fmt.Sprintf("• You are running a development build of %s", product)
	default:
		return fmt.Sprintf("• %s %s", product, b.Current)
	}
}

// CheckedMsg carries the result of CheckAsync.
type CheckedMsg struct {
	Result CheckResult
}

// CheckAsync returns a command that resolves the latest release, using the
// cache in cacheDir when it is fresh. Successful network results are cached.
func CheckAsync(c *Checker, cacheDir, currentVersion string) tea.Cmd {
	return func() tea.Msg {
		return CheckedMsg{Result: checkCached(c, CachePath(cacheDir), currentVersion, time.Now())}
	}
}

func checkCached(c *Checker, path, currentVersion string, now time.Time) CheckResult {
	if path != "" {
		if entry, err := LoadCache(path); err == nil && IsCacheValid(entry, currentVersion, now) {
			return entry.result()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	r := c.Check(ctx, currentVersion)

	if r.Error == nil && r.LatestVersion != "" {
		_ = SaveCache(path, entryFromResult(r, now))
	}
	return r
}
