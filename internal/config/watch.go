package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path and calls onChange with a freshly loaded Config every
// time the file is rewritten. Invalid reloads are logged and skipped so the
// previous config stays active. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			reload(watcher, path, event, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// reload handles one fsnotify event. Write and Create both count as a change
// since editors commonly save atomically via rename; after a reload the path
// is re-added in case the inode was replaced.
func reload(watcher *fsnotify.Watcher, path string, event fsnotify.Event, onChange func(*Config)) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed, keeping previous config", "path", path, "err", err)
		return
	}

	slog.Info("config: reloaded", "path", path, "rules", len(cfg.Monitor.Rules))
	onChange(cfg)

	_ = watcher.Add(path)
}
