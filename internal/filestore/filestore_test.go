package filestore

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndOpen(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	content := []byte("fake audio bytes")
	filename, path, size, err := store.Save(bytes.NewReader(content), "session.wav")
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), size)
	assert.Equal(t, ".wav", filepath.Ext(filename))
	assert.Equal(t, filepath.Join(store.Dir(), filename), path)

	f, err := store.Open(path)
	require.NoError(t, err)
	defer f.Close()

	read, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, content, read)
}

func TestStore_SaveKeepsNamesUnique(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	a, _, _, err := store.Save(strings.NewReader("one"), "clip.mp3")
	require.NoError(t, err)
	b, _, _, err := store.Save(strings.NewReader("two"), "clip.mp3")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestStore_SaveWithoutExtension(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	filename, _, _, err := store.Save(strings.NewReader("data"), "noext")
	require.NoError(t, err)
	assert.Equal(t, ".bin", filepath.Ext(filename))
}

func TestStore_Remove(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, path, _, err := store.Save(strings.NewReader("bytes"), "clip.wav")
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))

	_, err = store.Open(path)
	assert.Error(t, err)

	// Removing again is not an error.
	assert.NoError(t, store.Remove(path))
}
