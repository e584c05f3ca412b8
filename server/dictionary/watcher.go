package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 200 * time.Millisecond

// Importer stores loaded words.
type Importer interface {
	ImportWords(ctx context.Context, words map[string]string) (int, error)
}

// Watcher reloads the seed file into the store whenever it changes. The
// parent directory is watched so that editors replacing the file are seen.
// The fsnotify watcher is only opened by Run, so a Watcher used for Sync
// alone holds no descriptors.
type Watcher struct {
	path     string
	importer Importer
}

func NewWatcher(path string, importer Importer) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dictionary path: %w", err)
	}
	return &Watcher{path: abs, importer: importer}, nil
}

// Sync loads the file once and imports it.
func (w *Watcher) Sync(ctx context.Context) error {
	words, err := Load(w.path)
	if err != nil {
		return err
	}
	n, err := w.importer.ImportWords(ctx, words)
	if err != nil {
		return err
	}
	slog.Info("Dictionary loaded", "path", w.path, "words", n)
	return nil
}

// Run watches until ctx ends. Bursts of events are coalesced into a single
// reload.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	slog.Info("Watching dictionary file", "path", w.path)

	timer := time.NewTimer(reloadDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(reloadDelay)

		case <-timer.C:
			if err := w.Sync(ctx); err != nil {
				slog.Error("Failed to reload dictionary", "error", err, "path", w.path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Dictionary watcher error", "error", err)
		}
	}
}
