package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"idlepond/internal/catalog"
	"idlepond/internal/catch"
	"idlepond/internal/config"
	"idlepond/internal/game"
	"idlepond/internal/sampler"
	"idlepond/internal/shop"
	"idlepond/internal/storage"
	"idlepond/internal/telemetry"
)

type Options struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  game.Clock
	// Seed makes catches reproducible. Zero seeds from crypto/rand.
	Seed   int64
	Events telemetry.Repository
}

// App is every service the commands need, built once.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   storage.Store
	Catalog *catalog.Store
	Shop    *shop.Catalog
	Engine  *game.Engine
	Events  telemetry.Repository
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = telemetry.NewMemoryRepository()
	}
	logger := opts.Logger

	var (
		cat   *catalog.Store
		goods *shop.Catalog
	)
	if dir := strings.TrimSpace(cfg.Catalog.Dir); dir != "" {
		cat = catalog.LoadDir(dir, logger)
		goods = shop.LoadDir(dir, logger)
	} else {
		cat = catalog.Default(logger)
		goods = shop.Default(logger)
	}

	pond := cfg.Player.DefaultPond
	if !cat.HasPond(pond) {
		ponds := cat.Ponds()
		if len(ponds) == 0 {
			return nil, fmt.Errorf("catalog has no ponds")
		}
		logger.Warn("default pond not in catalog", "pond", pond, "using", ponds[0])
		pond = ponds[0]
	}

	s := sampler.New(nil)
	if opts.Seed != 0 {
		s = sampler.NewSeeded(opts.Seed)
	}
	dispatcher := catch.NewDispatcher(cat, s, cfg.Balance, logger)

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Error("storage unavailable, progress will not be saved",
			"driver", cfg.Storage.Driver, "err", err)
		store = storage.NewMemoryStore()
	}
	flusher := storage.NewFlusher(store, logger)

	engine, err := game.NewEngine(game.Deps{
		Catalog:     cat,
		Dispatcher:  dispatcher,
		Store:       store,
		Flusher:     flusher,
		Events:      opts.Events,
		Clock:       opts.Clock,
		Balance:     cfg.Balance,
		Logger:      logger,
		DefaultPond: pond,
		Admin:       cfg.Player.Admin,
	})
	if err != nil {
		_ = flusher.Close(ctx)
		_ = store.Close()
		return nil, err
	}
	if err := engine.LoadState(ctx); err != nil {
		logger.Error("starting from a fresh save", "err", err)
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Catalog: cat,
		Shop:    goods,
		Engine:  engine,
		Events:  opts.Events,
	}, nil
}

// Close drains pending saves and closes the store.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Engine.Close(ctx), a.Store.Close())
}

// NewLogger builds the process logger from the logging config.
func NewLogger(cfg config.Logging, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Format)
}
