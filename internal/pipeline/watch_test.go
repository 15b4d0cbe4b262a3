package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/tlgen/internal/config"
	"github.com/danmuck/tlgen/internal/testutil/testlog"
	"github.com/fsnotify/fsnotify"
)

func TestWatchDirs(t *testing.T) {
	testlog.Start(t)
	cfg := sampleWorkspace(t)
	cfg.Errors.Sources = []string{"errors/table.txt"}
	dirs := watchDirs(cfg)
	want := []string{cfg.Dir, filepath.Join(cfg.Dir, "errors"), filepath.Join(cfg.Dir, "schema")}
	if len(dirs) != len(want) {
		t.Fatalf("expected %v, got %v", want, dirs)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, dirs)
		}
	}
}

func TestWatchRerunsOnChange(t *testing.T) {
	testlog.Start(t)
	cfg := sampleWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, cfg, func(context.Context) (config.Config, error) {
			runs <- struct{}{}
			return cfg, nil
		})
	}()

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected an initial run")
	}

	path := filepath.Join(cfg.Dir, "schema", "a_main.tl")
	if err := os.WriteFile(path, []byte(apiSchema+"\nbaz = Baz;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a run after the schema changed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not stop")
	}
}

func TestWatchFollowsReloadedSources(t *testing.T) {
	testlog.Start(t)
	cfg := sampleWorkspace(t)
	extra := filepath.Join(cfg.Dir, "extra")
	if err := os.MkdirAll(extra, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	reloaded := cfg
	reloaded.API.Sources = append([]string{"extra"}, cfg.API.Sources...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runs := make(chan struct{}, 64)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, cfg, func(context.Context) (config.Config, error) {
			runs <- struct{}{}
			return reloaded, nil
		})
	}()

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected an initial run")
	}

	// the new directory is added right after the run returns; keep touching
	// the file until the watcher reports it
	path := filepath.Join(extra, "more.tl")
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for seen := false; !seen; {
		if err := os.WriteFile(path, []byte("more = More;\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		select {
		case <-runs:
			seen = true
		case <-tick.C:
		case <-deadline:
			t.Fatalf("expected a run after a file in the reloaded source directory changed")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not stop")
	}
}

func TestSyncDirsDropsRemovedSources(t *testing.T) {
	testlog.Start(t)
	cfg := sampleWorkspace(t)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	watched := make(map[string]bool)
	if err := syncDirs(w, watched, cfg); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !watched[filepath.Join(cfg.Dir, "errors")] {
		t.Fatalf("expected errors directory watched, got %v", watched)
	}
	narrowed := cfg
	narrowed.Errors.Sources = nil
	if err := syncDirs(w, watched, narrowed); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if watched[filepath.Join(cfg.Dir, "errors")] || !watched[filepath.Join(cfg.Dir, "schema")] {
		t.Fatalf("unexpected watched set: %v", watched)
	}
	if len(w.WatchList()) != len(watched) {
		t.Fatalf("watcher has %v, expected %v", w.WatchList(), watched)
	}
}
