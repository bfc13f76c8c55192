// Package watcher notifies callers when a snapshot file changes on disk,
// so a running server can pick up a snapshot written by another process
// (an operator restoring a backup, a sidecar sync job) without a restart.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events a single snapshot write
// usually produces (create + several writes + rename) into one callback.
const DefaultDebounce = 300 * time.Millisecond

// DefaultPollInterval is used when fsnotify is unavailable on the host.
const DefaultPollInterval = 2 * time.Second

// SnapshotWatcher watches a single file path and invokes a callback shortly
// after it changes. It prefers fsnotify and falls back to polling the file's
// mtime when fsnotify can't be initialized (e.g. inotify watch limits).
type SnapshotWatcher struct {
	path      string
	debounce  time.Duration
	pollEvery time.Duration
	fsWatcher *fsnotify.Watcher
}

// New creates a SnapshotWatcher for path. fsnotify is attempted first; if it
// fails to initialize, the watcher transparently uses polling instead.
func New(path string) *SnapshotWatcher {
	w := &SnapshotWatcher{path: path, debounce: DefaultDebounce, pollEvery: DefaultPollInterval}
	if fsw, err := fsnotify.NewWatcher(); err == nil {
		w.fsWatcher = fsw
	}
	return w
}

// Watch blocks until ctx is canceled, invoking onChange after each debounced
// burst of modifications to the watched path. onChange runs synchronously on
// the watcher goroutine; callers that need concurrency should dispatch
// internally.
func (w *SnapshotWatcher) Watch(ctx context.Context, onChange func()) error {
	if w.fsWatcher != nil {
		return w.watchFsnotify(ctx, onChange)
	}
	return w.watchPolling(ctx, onChange)
}

func (w *SnapshotWatcher) watchFsnotify(ctx context.Context, onChange func()) error {
	defer w.fsWatcher.Close()

	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		slog.Warn("fsnotify watch failed, falling back to polling", slog.String("path", dir), slog.Any("error", err))
		return w.watchPolling(ctx, onChange)
	}

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, onChange)
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *SnapshotWatcher) watchPolling(ctx context.Context, onChange func()) error {
	var lastMod time.Time
	if info, err := os.Stat(w.path); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if info.ModTime().After(lastMod) {
				lastMod = info.ModTime()
				onChange()
			}
		}
	}
}
