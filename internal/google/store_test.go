package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_GetMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "token.json"))

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, ErrNoCachedCredential)
}

func TestFileStore_PutGet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "token.json")
	store := NewFileStore(path)
	assert.Equal(t, path, store.Path())

	require.NoError(t, store.Put(ctx, []byte(`{"token":"one"}`)))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"token":"one"}`, string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "token.json"))

	require.NoError(t, store.Put(ctx, []byte(`{"token":"a much longer first value"}`)))
	require.NoError(t, store.Put(ctx, []byte(`{"token":"b"}`)))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"token":"b"}`, string(got))

	// No temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_GetUnreadable(t *testing.T) {
	// A directory at the token path cannot be read as a file
	dir := t.TempDir()
	store := NewFileStore(dir)

	_, err := store.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCachedCredential)
}
