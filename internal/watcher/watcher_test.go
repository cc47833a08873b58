package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewdiff/internal/watcher"
)

func startWatcher(t *testing.T, root string) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Root:        root,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func expectSignal(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal(msg)
	}
}

func expectQuiet(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal(msg)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0o644))

	onChange := startWatcher(t, dir)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("package main // %d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	expectSignal(t, onChange, "expected notification but got timeout")
	expectQuiet(t, onChange, "unexpected second notification")
}

func TestWatcher_SeesNestedAndNewDirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	onChange := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(nested, "x.txt"), []byte("x"), 0o644))
	expectSignal(t, onChange, "expected notification for nested file")

	fresh := filepath.Join(dir, "fresh")
	require.NoError(t, os.Mkdir(fresh, 0o755))
	expectSignal(t, onChange, "expected notification for new directory")

	// Give the watcher time to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(fresh, "y.txt"), []byte("y"), 0o644))
	expectSignal(t, onChange, "expected notification inside new directory")
}

func TestWatcher_GitMetadataFilter(t *testing.T) {
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(filepath.Join(gitDir, "objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "index"), []byte("i"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "FETCH_HEAD"), []byte("f"), 0o644))

	onChange := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "FETCH_HEAD"), []byte("ff"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "objects", "ab"), []byte("o"), 0o644))
	expectQuiet(t, onChange, "should not notify for git internals")

	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "index"), []byte("ii"), 0o644))
	expectSignal(t, onChange, "expected notification for index change")
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	w, err := watcher.New(watcher.Config{Root: dir, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_MissingRoot(t *testing.T) {
	w, err := watcher.New(watcher.Config{Root: filepath.Join(t.TempDir(), "nope")})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/repo", "/repo/.git")
	assert.Equal(t, "/repo", cfg.Root)
	assert.Equal(t, "/repo/.git", cfg.GitDir)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDur)
}
