package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the file at path on every write and calls onChange with the
// new Config. It blocks until ctx is cancelled.
// A reload that fails to parse or validate is logged and skipped; onChange is
// not called and the caller keeps its previous config.
func Watch(ctx context.Context, path string, logger *zap.Logger, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	logger.Info("Watching config", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// atomic-save editors replace the file: rename then create
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				_ = watcher.Add(path)
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFile(path)
			if err != nil {
				logger.Warn("Config reload failed, keeping previous config",
					zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Info("Config reloaded", zap.String("path", path), zap.Int("boards", len(cfg.Boards)))
			onChange(cfg)

			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Config watcher error", zap.Error(err))
		}
	}
}
