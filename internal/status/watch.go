// internal/status/watch.go
package status

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn with the current snapshot, then again every time the
// status file is replaced, until ctx is done.
// The parent directory is watched because atomic replacement swaps the inode.
func Watch(ctx context.Context, path string, fn func(snap Snapshot, found bool)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("status: watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("status: watch %s: %w", filepath.Dir(abs), err)
	}

	emit := func() error {
		snap, found, err := Read(abs)
		if err != nil {
			return err
		}
		fn(snap, found)
		return nil
	}
	if err := emit(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if err := emit(); err != nil {
				return err
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("status: watch: %w", err)
		}
	}
}
