package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// watchDirs calls onChange for every write or create event under dirs until
// ctx is done. Subdirectories are watched too, including ones created while
// watching. Directories that do not exist are skipped.
func watchDirs(ctx context.Context, dirs []string, logger *slog.Logger, onChange func(string) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			logger.Debug("skipping watch of missing directory", "dir", dir)
			continue
		}
		n, err := addTree(watcher, dir)
		if err != nil {
			return err
		}
		watched += n
	}
	if watched == 0 {
		logger.Warn("no template directories to watch", "dirs", dirs)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if _, err := addTree(watcher, event.Name); err != nil {
						logger.Warn("cannot watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if err := onChange(strings.ReplaceAll(event.Name, "\\", "/")); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// addTree watches root and every directory below it.
func addTree(watcher *fsnotify.Watcher, root string) (int, error) {
	added := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return err
		}
		added++
		return nil
	})
	return added, err
}
