// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ManuGH/romcfg/internal/config"
	xglog "github.com/ManuGH/romcfg/internal/log"
)

// Logical store names.
const (
	Global          = "global"
	Game            = "game"
	Catalog         = "catalog"
	BuiltinProfiles = "profiles.builtin"
	CustomProfiles  = "profiles.custom"
)

// ErrUnknownStore is returned for names that were never opened.
var ErrUnknownStore = errors.New("unknown store")

// Registry owns one Holder per configured store file.
type Registry struct {
	order   []string
	holders map[string]*Holder
	watch   config.WatchConfig
}

// OpenRegistry opens every store named in cfg. Parent directories are
// created so that a first Save can succeed.
func OpenRegistry(cfg config.Config) (*Registry, error) {
	r := &Registry{
		holders: make(map[string]*Holder),
		watch:   cfg.Watch,
	}

	for _, s := range []struct{ name, path string }{
		{Global, cfg.Stores.Global},
		{Game, cfg.Stores.Game},
		{Catalog, cfg.Stores.Catalog},
		{BuiltinProfiles, cfg.Stores.BuiltinProfiles},
		{CustomProfiles, cfg.Stores.CustomProfiles},
	} {
		if s.path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
			return nil, fmt.Errorf("create directory for %s store: %w", s.name, err)
		}
		r.order = append(r.order, s.name)
		r.holders[s.name] = Open(s.name, s.path, WithDebounce(cfg.Watch.Debounce))
	}

	logger := xglog.WithComponent("store")
	logger.Info().
		Str(xglog.FieldEvent, "store.registry_opened").
		Strs("stores", r.order).
		Msg("config stores opened")
	return r, nil
}

// Get returns the named holder.
func (r *Registry) Get(name string) (*Holder, error) {
	h, ok := r.holders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, name)
	}
	return h, nil
}

// Names returns the opened store names in a stable order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Start begins watching every store when watching is enabled.
func (r *Registry) Start(ctx context.Context) error {
	if !r.watch.Enabled {
		return nil
	}
	for _, name := range r.order {
		h := r.holders[name]
		if err := h.Watch(xglog.ContextWithStore(ctx, name)); err != nil {
			_ = r.Close()
			return fmt.Errorf("watch %s store: %w", name, err)
		}
	}
	return nil
}

// SaveAll saves every writable store and returns the joined errors. The
// built-in profiles store is read-only and never written.
func (r *Registry) SaveAll(ctx context.Context) error {
	var errs []error
	for _, name := range r.order {
		if name == BuiltinProfiles {
			continue
		}
		if err := r.holders[name].Save(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops all watchers.
func (r *Registry) Close() error {
	var errs []error
	for _, name := range r.order {
		if err := r.holders[name].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
