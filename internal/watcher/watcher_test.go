package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/rdapgw/internal/watcher"
)

func start(t *testing.T, path string) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err)
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrars.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	onChange := start(t, path)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("[%d]", i)), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherArtifacts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registrars.json")
	other := filepath.Join(dir, "gateway_analysis.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0o600))
	onChange := start(t, path)

	require.NoError(t, os.WriteFile(other, []byte(`{"a":1}`), 0o600))

	select {
	case <-onChange:
		t.Fatal("should not notify for other files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_SeesReplacement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registrars.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	onChange := start(t, path)

	tmp := filepath.Join(dir, "registrars.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("[1]"), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for replaced file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registrars.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	w, err := watcher.New(watcher.DefaultConfig(path))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() timed out")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "nope", "registrars.json")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/out/registrars.json")
	assert.Equal(t, "/out/registrars.json", cfg.Path)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDur)
}
