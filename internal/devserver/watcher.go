package devserver

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc rebuilds the site after sources change.
type RebuildFunc func(ctx context.Context) error

// Watcher rebuilds when files matching a glob change in one directory.
type Watcher struct {
	dir       string
	pattern   string
	debounce  time.Duration
	rebuild   RebuildFunc
	onRebuilt func()
	logger    *zap.Logger
	fsw       *fsnotify.Watcher
}

// NewWatcher starts watching dir. Call Run to process events; Run releases
// the underlying watcher when it returns. onRebuilt runs after each
// successful rebuild and may be nil.
func NewWatcher(dir, pattern string, debounce time.Duration, rebuild RebuildFunc, onRebuilt func(), logger *zap.Logger) (*Watcher, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid watch pattern %q: %w", pattern, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		dir:       dir,
		pattern:   pattern,
		debounce:  debounce,
		rebuild:   rebuild,
		onRebuilt: onRebuilt,
		logger:    logger,
		fsw:       fsw,
	}, nil
}

// Run processes events until ctx is cancelled. Rebuild errors are logged
// and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.logger.Info("watching for changes", zap.String("dir", w.dir), zap.String("pattern", w.pattern))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timer.C:
			w.runRebuild(ctx)

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("source changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	ok, _ := filepath.Match(w.pattern, filepath.Base(ev.Name))
	return ok
}

func (w *Watcher) runRebuild(ctx context.Context) {
	start := time.Now()
	if err := w.rebuild(ctx); err != nil {
		if ctx.Err() == nil {
			w.logger.Error("rebuild failed", zap.Error(err))
		}
		return
	}
	w.logger.Info("rebuilt", zap.Duration("took", time.Since(start).Round(time.Millisecond)))
	if w.onRebuilt != nil {
		w.onRebuilt()
	}
}
