package node

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WatchNodesFile hot-reloads the candidate node list from path whenever the
// file changes. One URL per line, # starts a comment.
func WatchNodesFile(ctx context.Context, path string, m *Manager) {
	if urls := readNodesFile(path); len(urls) > 0 {
		m.SetURLs(urls)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("error creating nodes file watcher", "error", err)
		return
	}
	defer func(watcher *fsnotify.Watcher) {
		if err := watcher.Close(); err != nil {
			slog.Error("error closing nodes file watcher", "error", err)
		}
	}(watcher)

	// Watch the directory rather than the file itself: editors and config
	// management tools replace the file via rename, which would silently
	// detach a direct file watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		slog.Error("error watching nodes file directory", "path", path, "error", err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				slog.Info("nodes file changed", "path", event.Name)
				if urls := readNodesFile(path); len(urls) > 0 {
					m.SetURLs(urls)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("nodes file watcher error", "error", err)
		}
	}
}

func readNodesFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("unable to read nodes file", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		slog.Error("error scanning nodes file", "path", path, "error", err)
		return nil
	}
	return urls
}
