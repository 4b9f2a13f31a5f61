package diskstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestSaveReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "photo.png", strings.NewReader("first")))
	require.NoError(t, store.Save(ctx, "photo.png", strings.NewReader("second")))

	data, err := os.ReadFile(filepath.Join(dir, "photo.png"))
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRenameReplacesTarget(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "photo.png", strings.NewReader("old")))
	require.NoError(t, store.Save(ctx, ".pending-photo.png", strings.NewReader("new")))
	require.NoError(t, store.Rename(ctx, ".pending-photo.png", "photo.png"))

	data, err := os.ReadFile(filepath.Join(dir, "photo.png"))
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
	require.False(t, fileExists(t, filepath.Join(dir, ".pending-photo.png")))

	err = store.Rename(ctx, ".pending-photo.png", "photo.png")
	require.ErrorIs(t, err, fs.ErrNotExist)

	err = store.Rename(ctx, "photo.png", "../photo.png")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestDeleteMissingFileReportsNotExist(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "photo.jpg", strings.NewReader("data")))
	require.NoError(t, store.Delete(ctx, "photo.jpg"))
	require.False(t, fileExists(t, filepath.Join(dir, "photo.jpg")))

	err = store.Delete(ctx, "photo.jpg")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPathRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../secret.png", "nested/photo.png"} {
		_, err := store.Path(name)
		require.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads", "photos")
	_, err := New(dir, zerolog.Nop())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
