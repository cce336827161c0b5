package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long the file must stay quiet before a change
// is reported.
const DefaultWatchDebounce = 200 * time.Millisecond

// Watch reports changes to config.json until ctx is done. onChange receives
// the reloaded document, or nil when the file was removed or no longer holds
// a usable document. It runs on a background goroutine; callers that touch UI
// state must hand the value to their own loop. Writes made by this Store are
// reported too.
func (s *Store) Watch(ctx context.Context, onChange func(*Document)) error {
	return s.watch(ctx, DefaultWatchDebounce, onChange)
}

func (s *Store) watch(ctx context.Context, debounce time.Duration, onChange func(*Document)) error {
	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	// Watch the directory: the file itself is replaced by rename on every save.
	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	target := filepath.Clean(s.Path())
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	fire := func() {
		doc, _ := s.Load()
		onChange(doc)
	}
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, fire)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warnf("Config watcher error: %v", err)
		}
	}
}
