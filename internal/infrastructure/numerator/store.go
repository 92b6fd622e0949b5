// Package numerator wires counter store backends to configuration.
// This is the infrastructure layer: it selects and decorates an
// implementation of core/numerator.AtomicCounterStore.
package numerator

import (
	"context"
	"fmt"
	"io"

	corenumerator "stockbook/internal/core/numerator"
	"stockbook/internal/infrastructure/config"
	"stockbook/internal/infrastructure/storage/memory"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/redis"
	"stockbook/internal/infrastructure/storage/sqlite"
	"stockbook/pkg/logger"
)

// Store is a counter store that owns connections.
type Store interface {
	corenumerator.AtomicCounterStore
	io.Closer
}

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (Store, error) {
	log = log.WithComponent("storage").With("driver", cfg.Driver)

	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Postgres, log)

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		log.Infow("sqlite counter store opened", "path", cfg.SQLite.Path)
		return store, nil

	case config.DriverRedis:
		store, err := redis.New(ctx, redis.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		log.Warnw("redis counter store: numbers survive restarts only with appendonly yes and appendfsync always",
			"addr", cfg.Redis.Addr)
		return store, nil

	case config.DriverMemory:
		log.Warn("memory counter store is not durable; counters are lost on restart")
		return memory.NewCounterStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, log *logger.Logger) (Store, error) {
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DSN, log); err != nil {
			return nil, err
		}
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DSN)
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.StatementTimeout > 0 {
		poolCfg.StatementTimeout = cfg.StatementTimeout
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	postgres.LogPoolStats(logger.WithLogger(ctx, log), pool)
	return postgres.NewCounterStore(pool), nil
}
