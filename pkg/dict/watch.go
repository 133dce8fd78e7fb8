// CLAUDE:SUMMARY fsnotify watcher on the dictionary directory; bursts of changes trigger one debounced Reload.
package dict

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period Watch waits for before reloading.
const DefaultDebounce = 500 * time.Millisecond

// ignoredFiles are base names whose changes never trigger a reload (the
// source database lives next to the dictionaries).
var ignoredFiles = []string{"*.db", "*.db-*", "*.tmp", "*.part", ".*", "*~"}

// Watch reloads the registry when files under its directory change. Events
// are coalesced: Reload runs once debounce has elapsed without new events.
// Reload errors are logged and the previous dictionaries stay active. Watch
// blocks until ctx is done.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := os.MkdirAll(r.dictsDir, 0o755); err != nil {
		return fmt.Errorf("create dicts dir: %w", err)
	}
	if err := w.Add(r.dictsDir); err != nil {
		return fmt.Errorf("watch %s: %w", r.dictsDir, err)
	}
	entries, err := os.ReadDir(r.dictsDir)
	if err != nil {
		return fmt.Errorf("read dicts dir %s: %w", r.dictsDir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			r.watchDir(w, filepath.Join(r.dictsDir, e.Name()))
		}
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			if ctx.Err() != nil {
				return
			}
			if err := r.Reload(); err != nil {
				r.logger.Error("dictionary reload failed", "error", err)
			}
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	r.logger.Info("watching dictionaries", "dir", r.dictsDir, "debounce", debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignoredEvent(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					r.watchDir(w, ev.Name)
				}
			}
			r.logger.Debug("dictionary change", "path", ev.Name, "op", ev.Op.String())
			schedule()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("dictionary watcher error", "error", err)
		}
	}
}

func (r *Registry) watchDir(w *fsnotify.Watcher, dir string) {
	if err := w.Add(dir); err != nil {
		r.logger.Warn("watch dictionary dir", "dir", dir, "error", err)
	}
}

func ignoredEvent(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	base := filepath.Base(ev.Name)
	for _, p := range ignoredFiles {
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}
