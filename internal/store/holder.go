// SPDX-License-Identifier: MIT

package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/romcfg/internal/cfgfile"
	xglog "github.com/ManuGH/romcfg/internal/log"
	"github.com/ManuGH/romcfg/internal/metrics"
)

// DefaultDebounce is the quiet period after a file event before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Holder owns the document of one logical store.
type Holder struct {
	name     string
	path     string
	debounce time.Duration
	logger   zerolog.Logger

	mu  sync.RWMutex
	doc *cfgfile.Document
	// hash of the bytes last written by Save, to ignore our own file events
	written [sha256.Size]byte

	reloads singleflight.Group

	listenMu  sync.RWMutex
	listeners []chan<- *cfgfile.Document

	watchMu sync.Mutex
	stop    context.CancelFunc
	done    chan struct{}
}

// Option configures a Holder.
type Option func(*Holder)

// WithDebounce sets the watcher debounce period.
func WithDebounce(d time.Duration) Option {
	return func(h *Holder) {
		if d > 0 {
			h.debounce = d
		}
	}
}

// Open loads the file at path into a new holder. A failed load is not an
// error: the holder starts with an empty document and callers use defaults,
// and the first Save creates the file.
func Open(name, path string, opts ...Option) *Holder {
	h := &Holder{
		name:     name,
		path:     path,
		debounce: DefaultDebounce,
		logger:   xglog.WithComponent("store").With().Str(xglog.FieldStore, name).Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}

	doc, err := cfgfile.LoadWithDiagnostics(path)
	var perr *cfgfile.ParseError
	switch {
	case err == nil:
	case errors.As(err, &perr):
		h.logger.Warn().
			Str(xglog.FieldEvent, "store.parse_truncated").
			Str(xglog.FieldPath, path).
			Int(xglog.FieldLine, perr.Line).
			Msg("store file parsed up to a malformed line")
	default:
		h.logger.Info().Err(err).
			Str(xglog.FieldEvent, "store.load_defaults").
			Str(xglog.FieldPath, path).
			Msg("store file not loaded, using defaults")
	}
	h.doc = doc
	return h
}

// Name returns the logical store name.
func (h *Holder) Name() string { return h.name }

// Path returns the backing file path.
func (h *Holder) Path() string { return h.path }

// View runs fn with the document under the read lock. fn must not retain
// or mutate the document.
func (h *Holder) View(fn func(doc *cfgfile.Document)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(h.doc)
}

// Update runs fn with the document under the write lock. Changes stay in
// memory until Save.
func (h *Holder) Update(fn func(doc *cfgfile.Document) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.doc)
}

// Snapshot returns an independent copy of the current document.
func (h *Holder) Snapshot() *cfgfile.Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.doc.Clone()
}

// Save writes the document to its file.
func (h *Holder) Save(ctx context.Context) error {
	logger := xglog.WithContext(ctx, h.logger)

	h.mu.Lock()
	defer h.mu.Unlock()

	var buf bytes.Buffer
	if _, err := h.doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("render %s store: %w", h.name, err)
	}
	if err := h.doc.SaveErr(); err != nil {
		logger.Warn().Err(err).
			Str(xglog.FieldEvent, "store.save_failed").
			Msg("store not saved, keeping in-memory state")
		return fmt.Errorf("save %s store: %w", h.name, err)
	}
	h.written = sha256.Sum256(buf.Bytes())
	return nil
}

// Reload replaces the document with a fresh parse of the file. Concurrent
// calls share one reload. When the file cannot be opened the previous
// document is kept and an error is returned.
func (h *Holder) Reload(ctx context.Context) error {
	_, err, _ := h.reloads.Do("reload", func() (any, error) {
		return nil, h.reload(ctx)
	})
	return err
}

func (h *Holder) reload(ctx context.Context) error {
	logger := xglog.WithContext(ctx, h.logger)
	logger.Debug().Str(xglog.FieldEvent, "store.reload_start").Msg("reloading store")

	doc, err := cfgfile.LoadWithDiagnostics(h.path)
	var perr *cfgfile.ParseError
	if err != nil && !errors.As(err, &perr) {
		metrics.IncReload(h.name, metrics.ResultFailure)
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "store.reload_failed").
			Msg("failed to reload store, keeping previous document")
		return fmt.Errorf("reload %s store: %w", h.name, err)
	}
	if perr != nil {
		logger.Warn().
			Str(xglog.FieldEvent, "store.parse_truncated").
			Int(xglog.FieldLine, perr.Line).
			Msg("reloaded store parsed up to a malformed line")
	}

	h.mu.Lock()
	h.doc = doc
	snapshot := doc.Clone()
	h.mu.Unlock()

	metrics.IncReload(h.name, metrics.ResultOK)
	h.notifyListeners(snapshot)

	logger.Info().
		Str(xglog.FieldEvent, "store.reload_success").
		Int(xglog.FieldCount, snapshot.Len()).
		Msg("store reloaded")
	return nil
}

// changedOnDisk reports whether the file differs from what Save last wrote.
func (h *Holder) changedOnDisk() bool {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sha256.Sum256(data) != h.written
}

// Subscribe registers a channel that receives a snapshot after every
// successful reload. Sends never block; a full channel misses the update.
// The snapshot is shared by all listeners and must be treated as read-only.
func (h *Holder) Subscribe(ch chan<- *cfgfile.Document) {
	h.listenMu.Lock()
	defer h.listenMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notifyListeners(doc *cfgfile.Document) {
	h.listenMu.RLock()
	defer h.listenMu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- doc:
		default:
			h.logger.Warn().
				Str(xglog.FieldEvent, "store.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}
