package vpnlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFileWithTime(t *testing.T, dir, name, content string, modTime time.Time) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func TestLocatorLatest(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		files map[string]time.Duration
		want  string
	}{
		{
			name:  "single file",
			files: map[string]time.Duration{"client.txt": 0},
			want:  "client.txt",
		},
		{
			name: "newest file wins",
			files: map[string]time.Duration{
				"client-1.txt": time.Minute,
				"client-2.txt": 3 * time.Minute,
				"client.txt":   2 * time.Minute,
			},
			want: "client-2.txt",
		},
		{
			name: "name order does not matter",
			files: map[string]time.Duration{
				"a.txt": 5 * time.Hour,
				"z.txt": time.Hour,
			},
			want: "a.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, offset := range tt.files {
				writeFileWithTime(t, dir, name, "x", base.Add(offset))
			}

			file, err := NewLocator(dir).Latest()
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), file.Path)
			assert.True(t, file.ModTime.Equal(base.Add(tt.files[tt.want])))
		})
	}
}

func TestLocatorSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	writeFileWithTime(t, dir, "client.txt", "x", base)

	sub := filepath.Join(dir, "archive")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFileWithTime(t, sub, "newer.txt", "x", base.Add(30*time.Minute))
	require.NoError(t, os.Chtimes(sub, base.Add(time.Hour), base.Add(time.Hour)))

	file, err := NewLocator(dir).Latest()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "client.txt"), file.Path)
}

func TestLocatorPattern(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	writeFileWithTime(t, dir, "client.txt", "x", base)
	writeFileWithTime(t, dir, "settings.json", "{}", base.Add(time.Minute))

	file, err := NewLocator(dir, WithPattern("*.txt")).Latest()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "client.txt"), file.Path)

	_, err = NewLocator(dir, WithPattern("*.log")).Latest()
	assert.True(t, errors.Is(err, ErrNoLogFiles))
}

func TestLocatorNotFound(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		_, err := NewLocator(t.TempDir()).Latest()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoLogFiles)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewLocator(filepath.Join(t.TempDir(), "missing")).Latest()
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
