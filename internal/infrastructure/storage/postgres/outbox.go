package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockreceipt/internal/core/id"
	"stockreceipt/pkg/logger"
)

const outboxTable = "sys_outbox"

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxMessage is one row of the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"`
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"`
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// DomainEvent is an event to be published via the outbox.
type DomainEvent struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// OutboxPublisher writes events to the outbox table.
type OutboxPublisher struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Publish writes an event to the outbox. It must run inside a transaction.
func (p *OutboxPublisher) Publish(ctx context.Context, event DomainEvent) error {
	tx := p.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	sql, args, err := p.insertQuery(event, time.Now().UTC())
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

func (p *OutboxPublisher) insertQuery(event DomainEvent, now time.Time) (string, []any, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return "", nil, fmt.Errorf("marshal event payload: %w", err)
	}

	sql, args, err := p.builder.Insert(outboxTable).
		Columns("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at").
		Values(id.New(), event.AggregateType, event.AggregateID, event.EventType, payload, OutboxStatusPending, now).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build outbox insert: %w", err)
	}
	return sql, args, nil
}

// OutboxHandler delivers one outbox message to its destination.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxHandlerFunc adapts a function to OutboxHandler.
type OutboxHandlerFunc func(ctx context.Context, msg *OutboxMessage) error

func (f OutboxHandlerFunc) Handle(ctx context.Context, msg *OutboxMessage) error {
	return f(ctx, msg)
}

// OutboxRelay reads pending messages and hands them to a handler.
type OutboxRelay struct {
	txManager  *TxManager
	builder    squirrel.StatementBuilderType
	batchSize  int
	maxRetries int
	handler    OutboxHandler
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager, batchSize int, handler OutboxHandler) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		batchSize:  batchSize,
		maxRetries: 5,
		handler:    handler,
	}
}

// ProcessBatch delivers one batch of pending messages and returns how many
// were published. Rows stay locked for the duration so parallel relays skip them.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	processed := 0
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := r.pendingQuery()
		if err != nil {
			return err
		}

		var messages []*OutboxMessage
		if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &messages, sql, args...); err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		for _, msg := range messages {
			if err := r.processMessage(ctx, msg); err != nil {
				logger.Warn(ctx, "outbox message delivery failed",
					"message_id", msg.ID,
					"event_type", msg.EventType,
					"retry_count", msg.RetryCount,
					"error", err,
				)
				continue
			}
			processed++
		}
		return nil
	})
	return processed, err
}

func (r *OutboxRelay) pendingQuery() (string, []any, error) {
	sql, args, err := r.builder.
		Select("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status",
			"retry_count", "last_error", "next_retry_at", "created_at", "published_at").
		From(outboxTable).
		Where(squirrel.Eq{"status": OutboxStatusPending}).
		Where("(next_retry_at IS NULL OR next_retry_at <= NOW())").
		OrderBy("created_at").
		Limit(uint64(r.batchSize)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build outbox select: %w", err)
	}
	return sql, args, nil
}

func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) error {
	q := r.txManager.GetQuerier(ctx)

	if err := r.handler.Handle(ctx, msg); err != nil {
		status := OutboxStatusPending
		if msg.RetryCount+1 >= r.maxRetries {
			status = OutboxStatusFailed
		}
		nextRetry := time.Now().UTC().Add(time.Duration(msg.RetryCount+1) * time.Minute)

		sql, args, buildErr := r.builder.Update(outboxTable).
			Set("retry_count", squirrel.Expr("retry_count + 1")).
			Set("last_error", err.Error()).
			Set("next_retry_at", nextRetry).
			Set("status", status).
			Where(squirrel.Eq{"id": msg.ID}).
			ToSql()
		if buildErr != nil {
			return fmt.Errorf("build retry update: %w", buildErr)
		}
		if _, updateErr := q.Exec(ctx, sql, args...); updateErr != nil {
			return fmt.Errorf("update failed message: %w", updateErr)
		}
		return err
	}

	sql, args, err := r.builder.Update(outboxTable).
		Set("status", OutboxStatusPublished).
		Set("published_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": msg.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build publish update: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark message published: %w", err)
	}
	return nil
}

// PurgePublished deletes published messages older than retention.
func (r *OutboxRelay) PurgePublished(ctx context.Context, retention time.Duration) (int64, error) {
	sql, args, err := r.builder.Delete(outboxTable).
		Where(squirrel.Eq{"status": OutboxStatusPublished}).
		Where(squirrel.Lt{"published_at": time.Now().UTC().Add(-retention)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	return tag.RowsAffected(), nil
}
