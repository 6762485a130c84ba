package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/vitalvas/routekit/internal/config"
)

func newWatchCommand(opts *options) *cobra.Command {
	var (
		debounce int
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the document when route files change",
		Long: `Watch generates the document once, then regenerates it whenever a file
matching the route patterns is written, created, renamed or removed.
Bursts of changes are collapsed with a debounce delay.

Example:
  routekit watch -r 'routes/**/*.yaml' --debounce 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debounce") {
				cfg.Watch.Debounce = debounce
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return opts.watch(ctx, cmd, cfg, validate)
		},
	}

	cmd.Flags().IntVar(&debounce, "debounce", 0, "debounce delay in milliseconds (default: from config)")
	cmd.Flags().BoolVar(&validate, "validate", false, "validate the document on every run")

	return cmd
}

// watch runs until ctx is done. Generation failures are logged and do not
// stop the loop.
func (o *options) watch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, validate bool) error {
	regenerate := func() {
		if err := o.generate(cmd, cfg, validate); err != nil {
			o.logger.Error("generate failed", "error", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	dirs := watchDirs(cfg.Routes)
	if len(dirs) == 0 {
		return fmt.Errorf("watch: no directory to watch for %s", strings.Join(cfg.Routes, ", "))
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		o.logger.Debug("watching directory", "dir", dir)
	}

	regenerate()
	o.printInfo(cmd, "Watching %s (Ctrl+C to stop)", strings.Join(cfg.Routes, ", "))

	delay := time.Duration(cfg.Watch.Debounce) * time.Millisecond
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(cfg.Routes, ev) {
				continue
			}
			o.logger.Debug("route file changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.logger.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			regenerate()
		}
	}
}

// watchDirs returns the existing directories that can hold files matching
// patterns. Patterns with "**" contribute every directory below their
// static prefix.
func watchDirs(patterns []string) []string {
	var dirs []string
	add := func(dir string) {
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
		base = filepath.FromSlash(base)
		if rest == "" || !strings.ContainsAny(rest, "*?[{") {
			// A literal file path: watch its directory.
			base = filepath.Dir(filepath.FromSlash(pattern))
		}

		info, err := os.Stat(base)
		if err != nil || !info.IsDir() {
			continue
		}
		if !strings.Contains(rest, "**") {
			add(base)
			continue
		}
		_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				add(path)
			}
			return nil
		})
	}

	return dirs
}

const watchedOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// relevant reports whether ev touches a file matching one of patterns.
func relevant(patterns []string, ev fsnotify.Event) bool {
	if ev.Op&watchedOps == 0 {
		return false
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.PathMatch(filepath.FromSlash(pattern), ev.Name); ok {
			return true
		}
	}
	return false
}
