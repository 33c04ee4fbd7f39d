package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchEnvFile watches a .env file and re-applies it (with override) when
// it changes, so a rotated credential takes effect without a restart.
// onChange is invoked with the freshly resolved GEMINI_API_KEY after each
// reload. The watcher runs until ctx is cancelled.
//
// The parent directory is watched rather than the file itself: editors
// typically replace the file on save, which would otherwise drop the
// watch.
func WatchEnvFile(ctx context.Context, path string, logger *zap.Logger, onChange func(apiKey string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil || abs != target {
					continue
				}
				if _, err := LoadDotenv([]string{path}, true); err != nil {
					logger.Warn("failed to reload env file",
						zap.String("path", path), zap.Error(err))
					continue
				}
				key := os.Getenv("GEMINI_API_KEY")
				logger.Info("credential reloaded from env file",
					zap.String("path", path), zap.String("key", Redact(key)))
				if onChange != nil {
					onChange(key)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("env file watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
