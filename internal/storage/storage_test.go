package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("key", "value"))

	value, err := store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)

	require.NoError(t, store.Delete("key"))

	_, err = store.Get("key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("key", `{"nested":"json"}`))

	value, err := store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, `{"nested":"json"}`, value)

	// Values survive a new store over the same file.
	reopened := NewFileStore(path)
	value, err = reopened.Get("key")
	require.NoError(t, err)
	assert.Equal(t, `{"nested":"json"}`, value)

	require.NoError(t, store.Delete("key"))
	_, err = store.Get("key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	require.NoError(t, store.Set("key", "value"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	store := NewFileStore(path)

	_, err := store.Get("key")
	assert.ErrorIs(t, err, ErrNotFound)

	// Writes recover the file.
	require.NoError(t, store.Set("key", "value"))
	value, err := store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)
}
