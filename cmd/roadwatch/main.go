package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/notepid/roadwatch/internal/api"
	"github.com/notepid/roadwatch/internal/config"
	"github.com/notepid/roadwatch/internal/drive"
	"github.com/notepid/roadwatch/internal/feed"
	"github.com/notepid/roadwatch/internal/kv"
	"github.com/notepid/roadwatch/internal/logger"
	"github.com/notepid/roadwatch/internal/rewards"
	"github.com/notepid/roadwatch/internal/session"
	"github.com/notepid/roadwatch/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, cleanup, err := kv.Open(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer cleanup()
	log.Info("storage opened", "backend", cfg.Storage.Backend)

	hazards := feed.NewBroker(log)

	store := rewards.NewStore(backend,
		rewards.WithHasher(user.NewBcryptHasher(cfg.Security.BcryptCost)),
		rewards.WithPublisher(hazards),
		rewards.WithLogger(log),
	)
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	drives := drive.NewManager(cfg.Drive.MaxDrives, drive.Settings{
		Interval:   cfg.Drive.Interval,
		StartSpeed: cfg.Drive.StartSpeed,
		MinSpeed:   cfg.Drive.MinSpeed,
		MaxSpeed:   cfg.Drive.MaxSpeed,
	}, store, log)
	defer drives.StopAll()

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(store, session.NewStore(backend), drives, hazards, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("roadwatch listening", "port", cfg.Server.HTTPPort, "max_drives", cfg.Drive.MaxDrives)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "active_drives", drives.Count(), "subscribers", hazards.Count())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		for _, d := range drives.ListInfo() {
			log.Info("stopping drive", "user_id", d.UserID, "username", d.Username,
				"samples", d.Samples, "speed", d.Speed, "since", d.StartedAt.Format(time.RFC3339))
		}
		drives.StopAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			// Open hazard streams hold connections past the deadline.
			log.Warn("graceful shutdown incomplete, closing connections", "err", err)
			return srv.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
