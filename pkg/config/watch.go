package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rubiojr/hostsearch/pkg/log"
)

// settleDelay gives editors time to finish writing before the file is read.
var settleDelay = 100 * time.Millisecond

// Watch reloads configPath whenever it changes and passes the new config to
// onReload. Invalid files are logged and skipped. Watch blocks until ctx is
// canceled.
func Watch(ctx context.Context, configPath string, onReload func(*Config)) error {
	logger := log.ForService("config")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warnf("failed to close config file watcher: %v", err)
		}
	}()

	if err := watcher.Add(configPath); err != nil {
		return fmt.Errorf("watching config file %s: %w", configPath, err)
	}
	logger.Infof("Watching config file for changes: %s", configPath)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often write atomically through rename.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			logger.Debugf("config file event %s", event.Op)

			if !sleepCtx(ctx, settleDelay) {
				return nil
			}

			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
					logger.Warnf("config file was removed and not replaced, skipping reload")
					continue
				}
				if err := watcher.Add(configPath); err != nil {
					logger.Warnf("failed to re-add config file to watcher: %v", err)
				}
			}

			cfg, err := LoadConfig(configPath)
			if err != nil {
				logger.Errorf("failed to reload configuration: %v", err)
				continue
			}
			logger.Infof("Configuration reloaded")
			onReload(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("config file watcher error: %v", err)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
