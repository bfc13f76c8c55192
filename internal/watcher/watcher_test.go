package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnapshotWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectorlib.snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w := New(path)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	go func() {
		_ = w.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"libraries":[]}`), 0o644))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}
}

func TestSnapshotWatcherPollingFallbackDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectorlib.snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w := &SnapshotWatcher{path: path, debounce: DefaultDebounce, pollEvery: 20 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	go func() {
		_ = w.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(50 * time.Millisecond)
	// Advance mtime deterministically rather than relying on filesystem
	// timestamp resolution between consecutive writes.
	future := time.Now().Add(time.Second)
	require.NoError(t, os.WriteFile(path, []byte(`{"libraries":[]}`), 0o644))
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for polling change notification")
	}
}

func TestSnapshotWatcherIgnoresUnrelatedFilesInSameDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectorlib.snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w := New(path)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	go func() {
		_ = w.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("noise"), 0o644))

	select {
	case <-changed:
		t.Fatal("watcher fired for an unrelated file in the same directory")
	case <-time.After(200 * time.Millisecond):
	}
}
