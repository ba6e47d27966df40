// Package app assembles the runtime dependencies shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stockreceipt/internal/config"
	"stockreceipt/internal/domain/receiving"
	"stockreceipt/internal/infrastructure/notify"
	"stockreceipt/internal/infrastructure/storage/postgres"
	"stockreceipt/internal/infrastructure/storage/postgres/inventory_repo"
	"stockreceipt/pkg/logger"
)

// App holds open connections and the receiving service.
type App struct {
	Config    config.Config
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Redis     *redis.Client
	Service   *receiving.Service
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
}

// New connects to Postgres (and Redis when the notify mode needs it) and
// builds the receiving service.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	a := &App{
		Config:    cfg,
		Pool:      pool,
		TxManager: postgres.NewTxManager(pool),
	}

	if cfg.NotifyMode == config.NotifyRedis {
		if err := a.ConnectRedis(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	store := inventory_repo.NewStockRepo(a.TxManager, cfg.Receiving.DefaultWarehouseRef)
	a.Service = receiving.NewService(store, store, a.notifier(), cfg.Receiving)

	logger.Info(ctx, "receiving service ready",
		"notify_mode", cfg.NotifyMode,
		"concurrency", cfg.Receiving.Concurrency,
		"default_warehouse", cfg.Receiving.DefaultWarehouseRef,
	)
	return a, nil
}

// ConnectRedis opens the Redis client if it is not open yet.
func (a *App) ConnectRedis(ctx context.Context) error {
	if a.Redis != nil {
		return nil
	}
	client, err := notify.NewRedisClient(ctx, a.RedisConfig())
	if err != nil {
		return err
	}
	a.Redis = client
	return nil
}

// RedisConfig returns the Redis settings from configuration.
func (a *App) RedisConfig() notify.RedisConfig {
	return notify.RedisConfig{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
		Channel:  a.Config.RedisChannel,
	}
}

func (a *App) notifier() receiving.Notifier {
	switch a.Config.NotifyMode {
	case config.NotifyOutbox:
		return notify.NewOutboxNotifier(a.TxManager)
	case config.NotifyRedis:
		return notify.NewRedisNotifier(a.Redis, a.Config.RedisChannel)
	default:
		return nil
	}
}

// ReadinessChecks returns the dependency probes for /health/ready.
func (a *App) ReadinessChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{
		"database": a.Pool.Ready,
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Close releases connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	a.Pool.Close()
}
