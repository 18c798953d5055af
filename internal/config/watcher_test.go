package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsWatchedFileOnly(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	other := filepath.Join(dir, "notes.txt")

	changed := make(chan string, 4)
	w, err := NewWatcher([]string{target}, func(path string) { changed <- path },
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("gap: 2\n"), 0644))

	select {
	case got := <-changed:
		require.Equal(t, target, filepath.Clean(got))
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "config.yaml")}, func(string) {}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
