package main

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"
)

const watchOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

func (c *cli) watch(ctx context.Context, args []string) int {
	fs := c.newFlagSet("watch", "Prints the migration plan, then again each time a snapshot file changes.")
	format := fs.String("format", "json", "output format: json or yaml")
	latest := fs.Bool("latest", false, "print only the store specs of the newest version")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *format != "json" && *format != "yaml" {
		_ = writef(c.stderr, "error: unsupported format %q\n", *format)
		return exitUsage
	}
	patterns, err := c.patterns(fs.Args())
	if err != nil {
		_ = writef(c.stderr, "error: %v\n", err)
		return exitFailure
	}
	if len(patterns) == 0 {
		_ = writeln(c.stderr, "error: no snapshots given and none configured")
		fs.Usage()
		return exitUsage
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		_ = writef(c.stderr, "error: %v\n", err)
		return exitFailure
	}
	defer w.Close()
	for _, dir := range watchDirs(patterns) {
		if err := w.Add(dir); err != nil {
			_ = writef(c.stderr, "error: watch %s: %v\n", dir, err)
			return exitFailure
		}
		c.logger.Debug("watching", "dir", dir)
	}

	rebuild := func() {
		p, err := c.plan(ctx, patterns)
		if err == nil {
			err = c.print(p, *format, *latest)
		}
		if err != nil {
			_ = writef(c.stderr, "error: %v\n", err)
		}
	}
	rebuild()
	for {
		select {
		case <-ctx.Done():
			return exitOK
		case ev, ok := <-w.Events:
			if !ok {
				return exitOK
			}
			if ev.Op&watchOps == 0 || !matchAny(patterns, ev.Name) {
				continue
			}
			c.logger.Info("snapshot changed", "file", ev.Name, "op", ev.Op.String())
			rebuild()
		case err, ok := <-w.Errors:
			if !ok {
				return exitOK
			}
			c.logger.Error("watch failed", "error", err)
		}
	}
}

// watchDirs returns the directories holding the snapshot files.
func watchDirs(patterns [][]string) []string {
	var dirs []string
	for _, snap := range patterns {
		for _, p := range snap {
			if d := filepath.Dir(p); !slices.Contains(dirs, d) {
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}

func matchAny(patterns [][]string, name string) bool {
	name = filepath.Clean(name)
	for _, snap := range patterns {
		for _, p := range snap {
			if ok, err := filepath.Match(filepath.Clean(p), name); err == nil && ok {
				return true
			}
		}
	}
	return false
}
