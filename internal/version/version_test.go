package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"v1.2.0", "v1.1.9", true},
		{"v1.10.0", "v1.9.0", true},
		{"1.2.0", "v1.2.0", false},
		{"v1.2.0", "v1.2.0-rc1", false},
		{"v2", "v1.9.9", true},
		{"v1.0.0", "v1.0.1", false},
		{"garbage", "v1.0.0", false},
		{"v1.0.0", "garbage", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isNewer(tt.latest, tt.current), "isNewer(%q, %q)", tt.latest, tt.current)
	}
}

func TestIsDevelopmentVersion(t *testing.T) {
	for _, v := range []string{"", "unknown", "devel", "dev", "devel+abc123"} {
		assert.True(t, isDevelopmentVersion(v), v)
	}
	assert.False(t, isDevelopmentVersion("v0.3.1"))
}

func newReleaseServer(t *testing.T, hits *int32, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/repos/acme/flagdeck/releases/latest", r.URL.Path)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v1.3.0","html_url":"https://example.com/r/v1.3.0","body":"## Fixes\n- faster"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChecker_Check(t *testing.T) {
	var hits int32
	srv := newReleaseServer(t, &hits, http.StatusOK)
	c := &Checker{Owner: "acme", Repo: "flagdeck", APIBase: srv.URL, Client: srv.Client()}

	r := c.Check(context.Background(), "v1.2.0")
	require.NoError(t, r.Error)
	assert.True(t, r.HasUpdate)
	assert.Equal(t, "v1.3.0", r.LatestVersion)
	assert.Equal(t, "https://example.com/r/v1.3.0", r.UpdateURL)
	assert.Contains(t, r.ReleaseNotes, "Fixes")

	r = c.Check(context.Background(), "devel")
	assert.Empty(t, r.LatestVersion)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "dev builds skip the network")
}

func TestChecker_HTTPError(t *testing.T) {
	var hits int32
	srv := newReleaseServer(t, &hits, http.StatusForbidden)
	c := &Checker{Owner: "acme", Repo: "flagdeck", APIBase: srv.URL, Client: srv.Client()}

	r := c.Check(context.Background(), "v1.0.0")
	require.Error(t, r.Error)
	assert.Contains(t, r.Error.Error(), "403")
	assert.False(t, r.HasUpdate)
}

func TestCheckCached_UsesFreshCache(t *testing.T) {
	var hits int32
	srv := newReleaseServer(t, &hits, http.StatusOK)
	c := &Checker{Owner: "acme", Repo: "flagdeck", APIBase: srv.URL, Client: srv.Client()}
	path := CachePath(t.TempDir())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	first := checkCached(c, path, "v1.2.0", now)
	require.NoError(t, first.Error)
	second := checkCached(c, path, "v1.2.0", now.Add(time.Hour))
	assert.Equal(t, first.LatestVersion, second.LatestVersion)
	assert.Equal(t, first.ReleaseNotes, second.ReleaseNotes)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	checkCached(c, path, "v1.2.0", now.Add(4*time.Hour))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "expired cache refetches")

	checkCached(c, path, "v1.2.1", now.Add(4*time.Hour))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "version change invalidates cache")
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", cacheFile)
	now := time.Now()
	require.NoError(t, SaveCache(path, &CacheEntry{CurrentVersion: "v1", LatestVersion: "v2", CheckedAt: now}))

	entry, err := LoadCache(path)
	require.NoError(t, err)
	assert.True(t, IsCacheValid(entry, "v1", now))
	assert.False(t, IsCacheValid(entry, "v0", now))
	assert.False(t, IsCacheValid(nil, "v1", now))
	assert.NoError(t, SaveCache("", entry))
}

func TestBannerLine(t *testing.T) {
	releases := ReleasesURL("acme", "flagdeck")

	b := NewBanner(CheckResult{CurrentVersion: "v1.0.0", LatestVersion: "v1.1.0", HasUpdate: true}, releases)
	assert.Equal(t, "• Flagdeck v1.1.0 is here! View release notes", b.Line("Flagdeck"))
	assert.Equal(t, "https://github.com/acme/flagdeck/releases", b.URL)

	b = NewBanner(CheckResult{CurrentVersion: "v1.1.0", LatestVersion: "v1.1.0", UpdateURL: "https://x"}, releases)
	assert.True(t, strings.HasPrefix(b.Line("Flagdeck"), "• You are on the latest version of Flagdeck (v1.1.0)"))
	assert.Equal(t, "https://x", b.URL)

	b = NewBanner(CheckResult{CurrentVersion: "devel"}, releases)
	assert.Contains(t, b.Line("Flagdeck"), "development build")

	b = NewBanner(CheckResult{CurrentVersion: "v1.0.0"}, releases)
	assert.Equal(t, "• Flagdeck v1.0.0", b.Line("Flagdeck"))
}
