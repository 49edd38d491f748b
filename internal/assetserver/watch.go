package assetserver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay coalesces bursts of file events into one rescan.
const reloadDelay = 200 * time.Millisecond

// Watch rescans the catalog whenever files under the root change, until
// ctx is done. onReload, if set, runs after each rescan.
func (c *Catalog) Watch(ctx context.Context, onReload func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range c.dirs() {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if e.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
					if err := w.Add(e.Name); err != nil {
						c.log.Warn("watch new category", zap.String("dir", e.Name), zap.Error(err))
					}
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				timer.Reset(reloadDelay)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if err := c.Reload(); err != nil {
				c.log.Error("catalog reload failed", zap.Error(err))
				continue
			}
			c.log.Info("catalog reloaded", zap.String("root", c.root))
			if onReload != nil {
				onReload()
			}

		case <-ctx.Done():
			return nil
		}
	}
}
