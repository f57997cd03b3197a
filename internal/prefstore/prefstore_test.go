package prefstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWriteMergesIntoNamespace(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Write("flagdeck", map[string]any{"featureHintsStep": 3, "seen": true}))
	require.NoError(t, s.Write("flagdeck", map[string]any{"featureHintsStep": 0}))

	step, err := s.Int("flagdeck", "featureHintsStep", -1)
	require.NoError(t, err)
	assert.Equal(t, 0, step)

	var seen bool
	require.NoError(t, s.Get("flagdeck", "seen", &seen))
	assert.True(t, seen, "keys not in the second write keep their value")
}

func TestNamespacesAreIsolated(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Write("a", map[string]any{"k": "one"}))
	require.NoError(t, s.Write("b", map[string]any{"k": "two"}))

	got, err := s.Read("a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `"one"`, string(got["k"]))
}

func TestIntDefaultsWhenMissing(t *testing.T) {
	s := openTestStore(t)

	n, err := s.Int("flagdeck", "absent", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	var v int
	assert.ErrorIs(t, s.Get("flagdeck", "absent", &v), ErrNotFound)
}

func TestWriteEmptyIsNoop(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Write("flagdeck", nil))

	got, err := s.Read("flagdeck")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenOnDiskSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Write("flagdeck", map[string]any{"featureHintsStep": 2}))
	require.NoError(t, s1.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	n, err := s2.Int("flagdeck", "featureHintsStep", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
