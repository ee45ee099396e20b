package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()

	s, err := NewDiskStore(dir)
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "avatar.PNG", strings.NewReader("not-really-a-png"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/"), "got %q", url)
	require.True(t, strings.HasSuffix(url, ".png"), "extension should be lowercased: %q", url)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	require.Equal(t, "not-really-a-png", string(data))
}

func TestDiskStoreRejectsUnsupportedTypes(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"payload.exe", "style.css", "noextension", "image.svg"} {
		_, err := s.Save(context.Background(), name, strings.NewReader("x"))
		require.ErrorIs(t, err, ErrUnsupportedType, "file %q should be rejected", name)
	}
}

func TestDiskStoreGeneratedNamesAreUnique(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	a, err := s.Save(context.Background(), "one.jpg", strings.NewReader("a"))
	require.NoError(t, err)

	b, err := s.Save(context.Background(), "one.jpg", strings.NewReader("b"))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestNewDiskStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	s, err := NewDiskStore(dir)
	require.NoError(t, err)
	require.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
