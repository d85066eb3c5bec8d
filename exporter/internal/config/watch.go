package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch reports edits to the config file at path, calling onChange with the
// freshly loaded Config after each one. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file: an editor that saves
// by renaming a temp file over path replaces the inode, and a watch on the
// file itself would stop firing after the first such save. Events for other
// names in the directory are ignored.
//
// A reload that fails (e.g., invalid YAML) is logged and onChange is not
// called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// A rename over path shows up as Create; Remove and Rename of
			// path itself leave nothing to load until the next Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(target)
			if err != nil {
				slog.Error("config: reload failed", "path", target, "err", err)
				continue
			}
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// DeviceDiff compares the devices in c against the addresses the exporter
// is running with. Addresses are compared after trimming whitespace, the same
// way the device registry stores them. Both results keep first-seen order.
func (c *Config) DeviceDiff(running []string) (added, removed []string) {
	have := make(map[string]bool, len(running))
	for _, a := range running {
		have[strings.TrimSpace(a)] = true
	}
	want := make(map[string]bool, len(c.Devices))
	for _, d := range c.Devices {
		a := strings.TrimSpace(d.Address)
		if a == "" || want[a] {
			continue
		}
		want[a] = true
		if !have[a] {
			added = append(added, a)
		}
	}
	for _, a := range running {
		a = strings.TrimSpace(a)
		if !want[a] {
			removed = append(removed, a)
			want[a] = true // report each address once
		}
	}
	return added, removed
}
