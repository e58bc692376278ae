package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirWatcherSignalsWrites(t *testing.T) {
	dir := t.TempDir()

	w, err := NewDirWatcher(dir, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "vpn.log"), []byte("Port pair 1->1\n"), 0o644))

	select {
	case <-w.Wake():
	case <-time.After(5 * time.Second):
		t.Fatal("no wake after write")
	}
}

func TestDirWatcherMissingDirectory(t *testing.T) {
	_, err := NewDirWatcher(filepath.Join(t.TempDir(), "missing"), zerolog.Nop())
	assert.Error(t, err)
}

func TestDirWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewDirWatcher(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
