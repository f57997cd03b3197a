package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilbur182/flagdeck/internal/prefstore"
)

func openStore(t *testing.T) *prefstore.Store {
	t.Helper()
	s, err := prefstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTourStartsAtFirstHint(t *testing.T) {
	tour, err := Load(openStore(t))
	require.NoError(t, err)

	h, ok := tour.Current()
	require.True(t, ok)
	assert.Equal(t, "Settings", h.Title)
	assert.Equal(t, 0, tour.Step())
}

func TestNextPersistsProgress(t *testing.T) {
	store := openStore(t)
	tour, err := Load(store)
	require.NoError(t, err)

	require.NoError(t, tour.Next())
	require.NoError(t, tour.Next())

	reloaded, err := Load(store)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Step())
}

func TestDismissThenReset(t *testing.T) {
	store := openStore(t)
	tour, err := Load(store)
	require.NoError(t, err)

	require.NoError(t, tour.Dismiss())
	_, ok := tour.Current()
	assert.False(t, ok)
	assert.NoError(t, tour.Next(), "next past the end is a no-op")

	require.NoError(t, Reset(store))
	reloaded, err := Load(store)
	require.NoError(t, err)
	_, ok = reloaded.Current()
	assert.True(t, ok)
	assert.Equal(t, 0, reloaded.Step())
}
