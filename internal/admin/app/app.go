package app

import (
	"context"

	charmlog "github.com/charmbracelet/log"

	"github.com/notepid/roadwatch/internal/config"
	"github.com/notepid/roadwatch/internal/kv"
	"github.com/notepid/roadwatch/internal/logger"
	"github.com/notepid/roadwatch/internal/rewards"
	"github.com/notepid/roadwatch/internal/user"
)

type App struct {
	ConfigPath string
	Config     *config.Config
	Log        *charmlog.Logger

	Store *rewards.Store
}

// New loads configuration and opens the store for the admin UI. The TUI owns
// the terminal, so log output is discarded.
func New(configPath string) (*App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	log := logger.Discard()
	ctx := context.Background()

	backend, cleanup, err := kv.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, nil, err
	}

	store := rewards.NewStore(backend,
		rewards.WithHasher(user.NewBcryptHasher(cfg.Security.BcryptCost)),
		rewards.WithLogger(log),
	)
	if err := store.Init(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}

	a := &App{
		ConfigPath: configPath,
		Config:     cfg,
		Log:        log,
		Store:      store,
	}
	return a, cleanup, nil
}

// Context returns the context admin operations run under.
func (a *App) Context() context.Context {
	return context.Background()
}
