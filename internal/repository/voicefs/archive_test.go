package voicefs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jarvis/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_SaveAndList(t *testing.T) {
	dir := t.TempDir()
	archive := NewArchive(dir)
	ctx := context.Background()

	count, err := archive.Save(ctx, 7, "AwACAgIAAxkB", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = archive.Save(ctx, 7, "file/../id", strings.NewReader("second"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	paths, err := archive.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, filepath.Join(dir, "7", "000001_AwACAgIAAxkB.ogg"), paths[0])
	assert.Equal(t, filepath.Join(dir, "7", "000002_file_id.ogg"), paths[1])

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestArchive_UsersAreSeparate(t *testing.T) {
	archive := NewArchive(t.TempDir())
	ctx := context.Background()

	_, err := archive.Save(ctx, 1, "a", strings.NewReader("x"))
	require.NoError(t, err)

	count, err := archive.Save(ctx, 2, "b", strings.NewReader("y"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	paths, err := archive.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestArchive_ListMissingDir(t *testing.T) {
	archive := NewArchive(filepath.Join(t.TempDir(), "voices"))

	paths, err := archive.List(context.Background(), 99)

	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestArchive_ListOrdersBySequence(t *testing.T) {
	dir := t.TempDir()
	userDir := filepath.Join(dir, "3")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	for _, name := range []string{"000010_c.ogg", "000002_a.ogg", "000003_b.ogg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(userDir, name), []byte("x"), 0o644))
	}

	archive := NewArchive(dir)
	paths, err := archive.List(context.Background(), 3)
	require.NoError(t, err)

	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"000002_a.ogg", "000003_b.ogg", "000010_c.ogg"}, names)

	count, err := archive.Save(context.Background(), 3, "d", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	paths, err = archive.List(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "000011_d.ogg", filepath.Base(paths[3]))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestArchive_SaveReadError(t *testing.T) {
	dir := t.TempDir()
	archive := NewArchive(dir)

	_, err := archive.Save(context.Background(), 5, "x", failingReader{})
	assert.ErrorIs(t, err, domain.ErrPersistence)

	paths, err := archive.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, paths)

	entries, err := os.ReadDir(filepath.Join(dir, "5"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "AwACAgIAAxkB", expected: "AwACAgIAAxkB"},
		{input: "a b/c", expected: "a_b_c"},
		{input: "", expected: "clip"},
		{input: strings.Repeat("z", 100), expected: strings.Repeat("z", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitize(tt.input))
		})
	}
}
