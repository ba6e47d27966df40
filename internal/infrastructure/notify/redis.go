package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stockreceipt/internal/core/id"
	"stockreceipt/internal/domain/receiving"
	"stockreceipt/internal/infrastructure/storage/postgres"
	"stockreceipt/pkg/logger"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "inventory.changed"

// Publisher is the subset of the Redis client used here. *redis.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// NewRedisClient creates a client and checks that the server answers.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

var _ receiving.Notifier = (*RedisNotifier)(nil)

// RedisNotifier publishes inventory changes straight to a Redis channel.
type RedisNotifier struct {
	client  Publisher
	channel string
	now     func() time.Time
}

// NewRedisNotifier creates a notifier publishing to channel.
func NewRedisNotifier(client Publisher, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{client: client, channel: channel, now: time.Now}
}

// NotifyInventoryChanged publishes the receipt summary.
func (n *RedisNotifier) NotifyInventoryChanged(ctx context.Context, summary receiving.ReceiptSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal receipt summary: %w", err)
	}
	return n.publish(ctx, Envelope{
		EventType:  EventInventoryChanged,
		ReceiptID:  id.New(),
		OccurredAt: n.now().UTC(),
		Payload:    payload,
	})
}

// Handle relays an outbox message. It implements postgres.OutboxHandler.
func (n *RedisNotifier) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	return n.publish(ctx, Envelope{
		EventType:  msg.EventType,
		ReceiptID:  msg.AggregateID,
		OccurredAt: msg.CreatedAt.UTC(),
		Payload:    msg.Payload,
	})
}

func (n *RedisNotifier) publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	receivers, err := n.client.Publish(ctx, n.channel, data).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", n.channel, err)
	}

	logger.Debug(ctx, "inventory change published",
		"channel", n.channel,
		"receipt_id", env.ReceiptID,
		"receivers", receivers,
	)
	return nil
}
