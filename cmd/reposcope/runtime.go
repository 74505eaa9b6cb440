package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/reposcope/internal/adapters/driven/auth"
	"github.com/custodia-labs/reposcope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reposcope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reposcope/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/cli"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/render"
	"github.com/custodia-labs/reposcope/internal/connectors/github"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
	"github.com/custodia-labs/reposcope/internal/core/services"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// memoryCacheBytes bounds the in-process cache used when the disk cache is off.
const memoryCacheBytes = 64 << 20

// newRuntime wires the services for one invocation.
func newRuntime(opts cli.RuntimeOptions) (*cli.Runtime, error) {
	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = file.DefaultDir(); err != nil {
			return nil, fmt.Errorf("locating config directory: %w", err)
		}
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(store)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	var closers []io.Closer
	connector := github.New(auth.NewTokenProvider(store), settings.GitHub.APIURL)
	closers = append(closers, connector)

	var (
		cache driven.BlobCache
		admin cli.CacheAdmin
	)
	if settings.Cache.Enabled {
		cacheDir := settings.Cache.Dir
		if cacheDir == "" {
			cacheDir = dir
		}
		db, err := sqlite.NewStore(cacheDir)
		if err != nil {
			logger.Warn("Disk cache unavailable, caching in memory: %v", err)
		} else {
			logger.Debug("Blob cache at %s", db.Path())
			cache, admin = db, db
			closers = append(closers, db)
		}
	}
	if cache == nil {
		cache = memory.NewBlobCache(memoryCacheBytes)
	}

	decoders := services.NewDecoderFactory()
	loader := services.NewContentLoader(
		services.NewCachingFetcher(connector, cache),
		decoders,
		settings.Viewer.MaxFileSize,
	)
	session := services.NewSessionService(loader)
	// The session waits for in-flight loads, so it closes before the loader.
	closers = append([]io.Closer{session, loader}, closers...)

	return &cli.Runtime{
		Session:    session,
		Explorer:   services.NewExplorerService(connector),
		Dispatcher: services.NewDispatcher(),
		Settings:   settingsService,
		Loader:     loader,
		NewOverrider: func() driving.Overrider {
			return services.NewOverrider(session, decoders)
		},
		Renderers: render.NewRegistry(),
		Cache:     admin,
		Watch: func(onChange func(*domain.AppSettings, error)) (io.Closer, error) {
			return file.NewWatcher(store, func() {
				onChange(settingsService.Get())
			})
		},
		Close: func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c.Close())
			}
			return errors.Join(errs...)
		},
	}, nil
}
