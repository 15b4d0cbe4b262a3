package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/danmuck/tlgen/internal/config"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// settle coalesces the burst of events an editor save produces.
const settle = 150 * time.Millisecond

// RunFunc is one regeneration. It returns the configuration it ran with so
// the watched directories follow edits to the source lists. Watch logs its
// error and keeps watching.
type RunFunc func(ctx context.Context) (config.Config, error)

// Watch runs fn once, then again whenever a source file changes, until ctx
// is done. Runs never overlap.
func Watch(ctx context.Context, cfg config.Config, fn RunFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	if err := syncDirs(watcher, watched, cfg); err != nil {
		return err
	}

	runOnce := func() {
		current, err := fn(ctx)
		if err != nil {
			log.Error().Err(err).Msg("pipeline.Watch run failed")
		}
		if err := syncDirs(watcher, watched, current); err != nil {
			log.Warn().Err(err).Msg("pipeline.Watch keeping previous directories")
		}
	}
	runOnce()

	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("pipeline.Watch change")
			timer.Reset(settle)
		case <-timer.C:
			runOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("pipeline.Watch watcher error")
		}
	}
}

// syncDirs makes the watcher cover exactly the directories of cfg.
// Directories are watched rather than files so atomic saves (write to temp,
// rename) keep being seen.
func syncDirs(w *fsnotify.Watcher, watched map[string]bool, cfg config.Config) error {
	want := watchDirs(cfg)
	keep := make(map[string]bool, len(want))
	for _, dir := range want {
		keep[dir] = true
		if watched[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch directory: %w", err)
		}
		watched[dir] = true
		log.Info().Str("dir", dir).Msg("pipeline.Watch watching")
	}
	for dir := range watched {
		if keep[dir] {
			continue
		}
		// the directory may already be gone
		_ = w.Remove(dir)
		delete(watched, dir)
		log.Info().Str("dir", dir).Msg("pipeline.Watch dropped")
	}
	return nil
}

func relevant(name string) bool {
	switch filepath.Ext(name) {
	case ".tl", ".tsv", ".txt", ".toml":
		return true
	}
	return false
}

// watchDirs returns the source directories, the directories of plain source
// files and the config directory, deduplicated and sorted.
func watchDirs(cfg config.Config) []string {
	seen := map[string]bool{filepath.Clean(cfg.Dir): true}
	var sources []string
	sources = append(sources, cfg.API.Sources...)
	sources = append(sources, cfg.Errors.Sources...)
	for _, src := range sources {
		p := cfg.Path(src)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			p = filepath.Dir(p)
		}
		seen[filepath.Clean(p)] = true
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}
