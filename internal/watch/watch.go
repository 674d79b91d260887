// Package watch reruns a function whenever one of a set of files changes.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher runs a function once, then again after every change to its files.
type Watcher struct {
	// Files are the paths to watch. Their parent directories are watched so
	// that atomic replace-by-rename saves are seen.
	Files []string

	// Debounce is the quiet period before a rerun. Defaults to DefaultDebounce.
	Debounce time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Run calls fn immediately and after each debounced change until ctx is
// done. Errors from fn are logged, not returned; a failed run waits for the
// next change. Run returns ctx.Err() on cancellation.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	log := w.Logger
	if log == nil {
		log = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer fsw.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range w.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return errors.Wrapf(err, "resolve %s", f)
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			return errors.Wrapf(err, "watch %s", dir)
		}
		dirs[dir] = true
	}

	run := func() {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			log.Error("run failed", slog.Any("error", err))
		}
	}
	run()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if !watched[filepath.Clean(event.Name)] || event.Op == fsnotify.Chmod {
				continue
			}
			log.Debug("change detected", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			timer.Reset(debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			log.Warn("watch error", slog.Any("error", err))
		case <-timer.C:
			run()
		}
	}
}
