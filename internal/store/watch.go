// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	xglog "github.com/ManuGH/romcfg/internal/log"
)

// ErrWatching is returned by Watch when the holder is already watching.
var ErrWatching = errors.New("store already watched")

// Watch reloads the document whenever the file changes on disk. Events are
// debounced and writes made by Save are ignored. The parent directory is
// watched so that atomic replacements are seen. Watching stops when ctx is
// cancelled or Close is called.
func (h *Holder) Watch(ctx context.Context) error {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()

	if h.stop != nil {
		return ErrWatching
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch store directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	h.stop = cancel
	h.done = make(chan struct{})

	h.logger.Info().
		Str(xglog.FieldEvent, "store.watcher_started").
		Str(xglog.FieldPath, h.path).
		Msg("watching store file for changes")

	go h.watchLoop(ctx, watcher, h.done)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan<- struct{}) {
	defer close(done)
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(h.path)

	timer := time.NewTimer(h.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xglog.FieldEvent, "store.watcher_stopped").Msg("store watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				h.logger.Debug().
					Str(xglog.FieldEvent, "store.file_changed").
					Str("op", event.Op.String()).
					Msg("store file changed")
				timer.Reset(h.debounce)
			}

		case <-timer.C:
			if !h.changedOnDisk() {
				continue
			}
			if err := h.Reload(ctx); err != nil {
				h.logger.Error().Err(err).
					Str(xglog.FieldEvent, "store.auto_reload_failed").
					Msg("automatic store reload failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).
				Str(xglog.FieldEvent, "store.watcher_error").
				Msg("store watcher error")
		}
	}
}

// Close stops the watcher, if any, and waits for it to exit.
func (h *Holder) Close() error {
	h.watchMu.Lock()
	stop, done := h.stop, h.done
	h.stop, h.done = nil, nil
	h.watchMu.Unlock()

	if stop == nil {
		return nil
	}
	stop()
	<-done
	return nil
}
