package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch blocks until ctx is cancelled, re-reading the config file whenever
// the filesystem reports it written or recreated and handing each
// successfully loaded Config to apply. Reloads that fail to parse or
// validate are logged and skipped, so the last applied config stays in
// effect.
func Watch(ctx context.Context, path string, apply func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}
	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Editors commonly save via rename, which surfaces as Create on
			// a fresh inode; anything other than Write/Create is noise.
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				reload(path, apply)
				// The watch follows the old inode after an atomic save.
				_ = w.Add(path)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// reload loads path and applies it, keeping the previous config on failure.
func reload(path string, apply func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload rejected", "path", path, "err", err)
		return
	}
	apply(cfg)
	slog.Info("config: reloaded", "path", path, "log_level", cfg.Server.LogLevel)
}
