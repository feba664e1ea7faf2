// SPDX-License-Identifier: MIT

// Package app wires the configuration, the config stores, the ROM catalog
// and the profile manager into one object with a start/stop lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/romcfg/internal/catalog"
	"github.com/ManuGH/romcfg/internal/cfgfile"
	"github.com/ManuGH/romcfg/internal/config"
	xglog "github.com/ManuGH/romcfg/internal/log"
	"github.com/ManuGH/romcfg/internal/profile"
	"github.com/ManuGH/romcfg/internal/store"
	"github.com/ManuGH/romcfg/internal/version"
)

// ErrNoScanRoots is returned by Scan when neither the caller nor the
// configuration names a directory.
var ErrNoScanRoots = errors.New("no scan roots")

// App owns the store registry for the lifetime of the process.
type App struct {
	cfg          config.Config
	logger       zerolog.Logger
	stores       *store.Registry
	describer    catalog.Describer
	reloadSignal os.Signal
}

// Option configures an App.
type Option func(*App)

// WithDescriber sets the describer used by Scan.
func WithDescriber(d catalog.Describer) Option {
	return func(a *App) {
		if d != nil {
			a.describer = d
		}
	}
}

// WithReloadSignal sets the signal that reloads every store while Run is
// active. Nil disables signal handling. The default is SIGHUP.
func WithReloadSignal(sig os.Signal) Option {
	return func(a *App) { a.reloadSignal = sig }
}

// Load reads the configuration at configPath (empty for environment and
// defaults only), reconfigures logging and opens the stores.
func Load(configPath string, opts ...Option) (*App, error) {
	cfg, err := config.NewLoader(configPath).Load()
	if err != nil {
		return nil, err
	}
	xglog.Reconfigure(xglog.Config{Level: cfg.Log.Level, Service: "romcfg"})
	return New(cfg, opts...)
}

// New opens the stores named in cfg.
func New(cfg config.Config, opts ...Option) (*App, error) {
	a := &App{
		cfg:          cfg,
		logger:       xglog.WithComponent("app"),
		describer:    catalog.FileNameDescriber{},
		reloadSignal: syscall.SIGHUP,
	}
	for _, opt := range opts {
		opt(a)
	}

	reg, err := store.OpenRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}
	a.stores = reg

	a.logger.Info().
		Str(xglog.FieldEvent, "app.opened").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("data_dir", cfg.DataDir).
		Strs("stores", reg.Names()).
		Msg("config stores ready")
	return a, nil
}

// Config returns the resolved configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Store returns the holder of the named store.
func (a *App) Store(name string) (*store.Holder, error) {
	return a.stores.Get(name)
}

// Catalog returns a read-only view of a catalog snapshot.
func (a *App) Catalog() (*catalog.Catalog, error) {
	h, err := a.stores.Get(store.Catalog)
	if err != nil {
		return nil, err
	}
	return catalog.New(h.Snapshot()), nil
}

// Scan rebuilds the catalog from roots, or from the configured roots when
// none are given.
func (a *App) Scan(ctx context.Context, clearFirst bool, roots ...string) (*catalog.ScanResult, error) {
	if len(roots) == 0 {
		roots = a.cfg.Scan.Roots
	}
	if len(roots) == 0 {
		return nil, ErrNoScanRoots
	}
	h, err := a.stores.Get(store.Catalog)
	if err != nil {
		return nil, err
	}
	opts := append(catalog.ScanOptions(a.cfg.Scan), catalog.WithDescriber(a.describer))
	return catalog.NewBuilder(h, opts...).Scan(ctx, roots, clearFirst)
}

// Profiles returns a manager over snapshots of both profile stores.
// Changes made through it are not saved; use UpdateProfiles for that.
func (a *App) Profiles() (*profile.Manager, error) {
	builtin, custom, err := a.profileStores()
	if err != nil {
		return nil, err
	}
	return profile.NewManager(builtin.Snapshot(), custom.Snapshot()), nil
}

// UpdateProfiles runs fn against the live custom profile store and saves it
// when fn succeeds. Built-in profiles are read from a snapshot.
func (a *App) UpdateProfiles(ctx context.Context, fn func(m *profile.Manager) error) error {
	builtin, custom, err := a.profileStores()
	if err != nil {
		return err
	}
	snap := builtin.Snapshot()
	if err := custom.Update(func(doc *cfgfile.Document) error {
		return fn(profile.NewManager(snap, doc))
	}); err != nil {
		return err
	}
	return custom.Save(ctx)
}

func (a *App) profileStores() (*store.Holder, *store.Holder, error) {
	builtin, err := a.stores.Get(store.BuiltinProfiles)
	if err != nil {
		return nil, nil, err
	}
	custom, err := a.stores.Get(store.CustomProfiles)
	if err != nil {
		return nil, nil, err
	}
	return builtin, custom, nil
}

// ReloadAll reloads every store from disk and returns the joined errors.
func (a *App) ReloadAll(ctx context.Context) error {
	var errs []error
	for _, name := range a.stores.Names() {
		h, _ := a.stores.Get(name)
		if err := h.Reload(xglog.ContextWithStore(ctx, name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run starts the store watchers and the reload signal handler and blocks
// until ctx is cancelled. Watchers are stopped before it returns.
func (a *App) Run(ctx context.Context) error {
	if err := a.stores.Start(ctx); err != nil {
		return fmt.Errorf("start store watchers: %w", err)
	}
	defer func() { _ = a.stores.Close() }()

	g, ctx := errgroup.WithContext(ctx)

	if a.reloadSignal != nil {
		g.Go(func() error {
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, a.reloadSignal)
			defer signal.Stop(sigs)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-sigs:
					a.logger.Info().
						Str(xglog.FieldEvent, "app.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading stores")
					if err := a.ReloadAll(context.WithoutCancel(ctx)); err != nil {
						a.logger.Warn().Err(err).
							Str(xglog.FieldEvent, "app.reload_failed").
							Msg("store reload failed")
					}
				}
			}
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	a.logger.Info().
		Str(xglog.FieldEvent, "app.running").
		Bool("watch", a.cfg.Watch.Enabled).
		Msg("app running")

	err := g.Wait()
	a.logger.Info().Str(xglog.FieldEvent, "app.stopped").Msg("app stopped")
	return err
}

// Save persists every store.
func (a *App) Save(ctx context.Context) error {
	return a.stores.SaveAll(ctx)
}

// Close stops any running watchers.
func (a *App) Close() error {
	return a.stores.Close()
}
