package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/navstack/internal/watch"
)

func startWatcher(t *testing.T, dir string, ignore ...string) <-chan []string {
	t.Helper()
	w, err := watch.New(watch.Config{Dir: dir, Ignore: ignore, Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	changes := make(chan []string, 8)
	w.OnChange(func(paths []string) { changes <- paths })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give fsnotify a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
	return changes
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcherDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, dir)

	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.go")
	for i := 0; i < 5; i++ {
		write(t, a, "package screens\n")
		write(t, b, "package screens\n")
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case paths := <-changes:
		require.Equal(t, []string{a, b}, paths)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	select {
	case paths := <-changes:
		t.Fatalf("unexpected second notification: %v", paths)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherIgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, dir, "routes_gen.go")

	write(t, filepath.Join(dir, "routes_gen.go"), "package screens\n")
	write(t, filepath.Join(dir, "screens_test.go"), "package screens\n")
	write(t, filepath.Join(dir, "notes.txt"), "hello\n")

	select {
	case paths := <-changes:
		t.Fatalf("unexpected notification: %v", paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStop(t *testing.T) {
	dir := t.TempDir()
	w, err := watch.New(watch.Config{Dir: dir})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()
	w.Stop()
	w.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w, err := watch.New(watch.Config{Dir: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)
	require.Error(t, w.Start(context.Background()))
}
