package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"gym-statistics/internal/pkg/logger"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 200 * time.Millisecond

// FileWatcher calls a handler after a single file was written, created, or
// replaced by rename. The parent directory is watched rather than the file, so the
// watch survives atomic rewrites that swap the inode. Bursts of events within the
// debounce window collapse into one call.
type FileWatcher struct {
	path     string
	debounce time.Duration
	handler  func(ctx context.Context)
	watcher  *fsnotify.Watcher
	logger   logger.ILogger
}

func NewFileWatcher(path string, debounce time.Duration, handler func(ctx context.Context), log logger.ILogger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &FileWatcher{
		path:     abs,
		debounce: debounce,
		handler:  handler,
		watcher:  w,
		logger:   log,
	}, nil
}

// Run blocks until ctx is done, then releases the watcher.
func (w *FileWatcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("FileWatcher", "Watcher error", map[string]interface{}{"path": w.path, "error": err.Error()})

		case <-timerC:
			timerC = nil
			w.logger.Debug("FileWatcher", "File changed", map[string]interface{}{"path": w.path})
			w.handler(ctx)
		}
	}
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
