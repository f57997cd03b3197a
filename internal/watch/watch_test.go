package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitEvent(w *Watcher, d time.Duration) bool {
	select {
	case _, ok := <-w.Events():
		return ok
	case <-time.After(d):
		return false
	}
}

func TestWatcher_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	w, err := New(path)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))
	assert.True(t, waitEvent(w, 2*time.Second), "expected change event")
}

func TestWatcher_SeesAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	w, err := New(path)
	require.NoError(t, err)
	defer w.Stop()

	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(`{"a":1}`), 0644))
	require.NoError(t, os.Rename(tmp, path))
	assert.True(t, waitEvent(w, 2*time.Second))
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug.log"), []byte("x"), 0644))
	assert.False(t, waitEvent(w, 400*time.Millisecond))
}

func TestWatcher_CreatesMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "flags.yaml")
	w, err := New(path)
	require.NoError(t, err)
	defer w.Stop()

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestListen_NilAfterStop(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	cmd := Listen(w)
	w.Stop()
	w.Stop()

	done := make(chan any, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after Stop")
	}
	assert.Nil(t, Listen(nil))
}
