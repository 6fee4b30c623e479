package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher rebuilds the catalog when its source file changes. It is meant for
// development; a source that fails to parse leaves the current catalog in
// place.
type Watcher struct {
	loader   *Loader
	holder   *Holder
	opts     BuildOptions
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for opts.SourcePath. The parent directory is
// watched so editors that replace the file on save are handled.
func NewWatcher(loader *Loader, holder *Holder, opts BuildOptions) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(opts.SourcePath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", opts.SourcePath, err)
	}
	return &Watcher{
		loader:   loader,
		holder:   holder,
		opts:     opts,
		debounce: 300 * time.Millisecond,
		watcher:  fw,
	}, nil
}

// Run processes file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	target := filepath.Clean(w.opts.SourcePath)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	slog.Info("watching catalog source", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Coalesce bursts of saves into one rebuild.
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher", "error", err)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cat, err := w.loader.Build(w.opts)
	if err != nil {
		slog.Error("catalog reload failed, keeping previous catalog", "error", err)
		return
	}
	w.holder.Replace(cat)
}
