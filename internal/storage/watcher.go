package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is invoked with the storage key whose backing file was
// modified by another process.
type ChangeCallback func(key string)

// Watch starts an fsnotify watcher on the data directory and reports
// external modifications of key files until ctx is cancelled.
//
// Events are debounced per key (editors and sync tools often fire several
// writes in quick succession) and writes performed through fs itself are
// suppressed via checksum comparison.
func Watch(ctx context.Context, fs *FS, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(fs.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", fs.Root()))

	const settle = 200 * time.Millisecond
	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func(key string) {
		pending[key] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(settle)
			timerCh = timer.C
		} else {
			timer.Reset(settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for key := range pending {
				delete(pending, key)
				data, readErr := os.ReadFile(filepath.Join(fs.Root(), key+".json"))
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("key", key), slog.String("error", readErr.Error()))
					continue
				}
				if fs.IsSelfWrite(key, data) {
					continue
				}
				logger.Debug("watcher: external change", slog.String("key", key))
				if cb != nil {
					cb(key)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			schedule(strings.TrimSuffix(name, ".json"))

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
