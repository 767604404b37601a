package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last archive event before a check runs.
const DefaultDebounce = 500 * time.Millisecond

// Follow performs an initial CheckAndUpdate and then watches HealthDir for
// archive changes until ctx is done. Checks never overlap. Failed checks are
// logged and the watch continues.
func (u *Updater) Follow(ctx context.Context, run func() error) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fsWatcher.Close() }()

	if err := fsWatcher.Add(u.HealthDir); err != nil {
		return fmt.Errorf("watch %s: %w", u.HealthDir, err)
	}

	logger := u.logger().WithField("health_dir", u.HealthDir)
	logger.Info("watching for new exports")

	check := func() {
		if _, err := u.CheckAndUpdate(run); err != nil {
			logger.Errorf("update failed: %s", err)
		}
	}
	check()

	delay := u.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}

	trigger := make(chan struct{}, 1)
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher stopped")
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			// Rename covers archives written elsewhere and moved into place.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isArchiveName(filepath.Base(event.Name)) {
				continue
			}
			logger.Debugf("fsnotify: %s %s", event.Op, event.Name)

			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(delay, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
			timerMu.Unlock()
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("watcher error")
		case <-trigger:
			check()
		}
	}
}
