package cli

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/cartographer/internal/logger"
)

// watchDebounce is how long to wait for more changes before rescanning.
const watchDebounce = 500 * time.Millisecond

// watchTree calls onChange after files under root change, coalescing bursts
// of events. New subdirectories are watched as they appear. It blocks until
// ctx is done.
func watchTree(ctx context.Context, root string, debounce time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := addWatchesRecursive(w, root); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if err := addWatchesRecursive(w, ev.Name); err != nil {
					logger.Debug("Not watching %s: %v", ev.Name, err)
				}
			}
			logger.Debug("Change detected: %s %s", ev.Op, ev.Name)
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		case <-timer.C:
			onChange()
		}
	}
}

// addWatchesRecursive watches path and every directory beneath it.
// Plain files are ignored; their parent is already watched.
func addWatchesRecursive(w *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
