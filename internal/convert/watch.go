package convert

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch runs a full conversion and then converts SVG files again as they are
// written or created below srcDir, including in directories created later.
// It blocks until ctx is cancelled.
func (c *Converter) Watch(ctx context.Context, srcDir string) error {
	if _, err := c.Run(ctx, srcDir); err != nil && ctx.Err() == nil {
		c.logger.Warn("Initial conversion had failures", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := c.addTree(watcher, srcDir); err != nil {
		return err
	}
	c.logger.Info("Watching for svg changes", "source", srcDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if err := c.addTree(watcher, event.Name); err != nil {
					c.logger.Warn("Failed to watch directory", "path", event.Name, "error", err)
				}
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".svg") || c.isOutput(event.Name) {
				continue
			}

			rel, err := filepath.Rel(srcDir, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			written, err := c.convertFile(ctx, srcDir, rel)
			switch {
			case err != nil:
				c.logger.Warn("Failed to convert file", "file", rel, "error", err)
			case written:
				c.logger.Info("Converted file", "file", rel)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			c.logger.Error("File watcher error", "error", err)
		}
	}
}

// addTree watches root and every directory below it except the output directory
func (c *Converter) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if c.isOutput(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (c *Converter) isOutput(path string) bool {
	rel, err := filepath.Rel(c.outDir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
