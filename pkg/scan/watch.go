package scan

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// rawExt is the scan-file extension the watcher reacts to.
const rawExt = ".mzml"

// Watch monitors dir for newly written raw scan files and pre-parses each
// into its on-disk cache entry, so later analysis runs start warm. Blocks
// until ctx is cancelled or the watcher fails. Per-file parse failures
// are logged and skipped; the watch keeps running.
func (c *Cache) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != rawExt {
				continue
			}
			if err := c.Warm(event.Name); err != nil {
				log.Printf("cache warm failed for %s: %v", event.Name, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}
