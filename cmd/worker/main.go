// Package main is the entry point for the outbox relay worker. It forwards
// InventoryChanged events from sys_outbox to the Redis channel.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stockreceipt/internal/app"
	"stockreceipt/internal/config"
	"stockreceipt/internal/infrastructure/notify"
	"stockreceipt/internal/infrastructure/storage/postgres"
	"stockreceipt/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := app.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting outbox relay worker")

	deps, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize dependencies", "error", err)
	}
	defer deps.Close()

	if err := deps.ConnectRedis(ctx); err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}

	handler := notify.NewRedisNotifier(deps.Redis, cfg.RedisChannel)
	relay := postgres.NewOutboxRelay(deps.TxManager, cfg.OutboxBatchSize, handler)
	worker := NewOutboxWorker(relay, log, cfg.OutboxPollInterval)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Relay is the part of postgres.OutboxRelay the worker drives.
type Relay interface {
	ProcessBatch(ctx context.Context) (int, error)
	PurgePublished(ctx context.Context, retention time.Duration) (int64, error)
}

// OutboxWorker polls the outbox and purges published messages.
type OutboxWorker struct {
	relay           Relay
	log             *logger.Logger
	pollInterval    time.Duration
	cleanupInterval time.Duration
	retention       time.Duration
}

// NewOutboxWorker creates a worker. A non-positive interval means 500ms.
func NewOutboxWorker(relay Relay, log *logger.Logger, pollInterval time.Duration) *OutboxWorker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &OutboxWorker{
		relay:           relay,
		log:             log.WithComponent("outbox-worker"),
		pollInterval:    pollInterval,
		cleanupInterval: time.Hour,
		retention:       7 * 24 * time.Hour,
	}
}

// Run blocks until ctx is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(w.cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

// drain keeps processing while full batches come back.
func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n > 0 {
			w.log.Debugw("processed outbox batch", "count", n)
		}
		if n == 0 {
			return
		}
	}
}

func (w *OutboxWorker) cleanup(ctx context.Context) {
	n, err := w.relay.PurgePublished(ctx, w.retention)
	if err != nil {
		w.log.Errorw("outbox cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("purged published outbox messages", "count", n)
	}
}
