package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchDir reformats every .kdl file under dir in place whenever
// fsnotify reports a write to it, until ctx is canceled.
func watchDir(ctx context.Context, dir string, out io.Writer, useColor bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	fmt.Fprintln(out, colorize("watching "+dir+" for changes", colorCyan, useColor))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Ext(event.Name) != ".kdl" {
				continue
			}
			if err := reformatOnDisk(event.Name); err != nil {
				fmt.Fprintln(out, colorize(fmt.Sprintf("%s: %v", event.Name, err), colorRed, useColor))
				continue
			}
			fmt.Fprintln(out, colorize("formatted "+event.Name, colorGreen, useColor))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(out, colorize(fmt.Sprintf("watch error: %v", err), colorRed, useColor))
		}
	}
}
