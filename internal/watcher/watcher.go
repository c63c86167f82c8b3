// Package watcher reacts to vault edits by requesting early sync cycles,
// so adding a feeds list to a document takes effect without waiting for
// the next scheduled tick.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Trigger requests an out-of-band sync cycle.
type Trigger interface {
	Trigger() bool
}

const debounce = 2 * time.Second

// Watch monitors the target folder inside the vault root and requests a
// debounced sync whenever a Markdown document there is created or written.
// The folder may not exist yet; the vault root is watched so the folder is
// picked up when the user creates it. Runs until ctx is cancelled.
//
// Writes made by the engine itself surface here too; the scheduler gate
// makes the resulting cycle a no-op.
func Watch(ctx context.Context, root, folder string, trig Trigger, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}
	target := filepath.Join(root, folder)
	if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
		if addErr := w.Add(target); addErr != nil {
			logger.Warn("watcher: add target folder failed",
				slog.String("path", target),
				slog.String("error", addErr.Error()))
		}
	}

	logger.Info("watcher: started", slog.String("folder", target))

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	scheduleTrigger := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(debounce)
			debounceCh = debounceTimer.C
		} else {
			debounceTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			if trig.Trigger() {
				logger.Debug("watcher: sync requested")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// The target folder itself appearing: start watching it.
			if ev.Op&fsnotify.Create != 0 && ev.Name == target {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("watcher: add target folder failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleTrigger()
					continue
				}
			}

			// Only documents directly inside the target folder matter.
			if filepath.Dir(ev.Name) != target || !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleTrigger()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
