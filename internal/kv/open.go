package kv

import (
	"context"
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/notepid/roadwatch/internal/config"
	"github.com/notepid/roadwatch/internal/db"
)

const redisPingTimeout = 5 * time.Second

// Open builds the backend named by cfg.Backend. The returned cleanup closes
// any underlying connection.
func Open(ctx context.Context, cfg config.StorageConfig, log *charmlog.Logger) (Store, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("using in-memory storage; data is lost on exit")
		return NewMemory(), func() {}, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.Data, 0755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
		database, err := db.Open(cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database opened", "path", cfg.Database)
		return NewSQLite(database), func() { _ = database.Close() }, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("redis connected", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return NewRedis(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
