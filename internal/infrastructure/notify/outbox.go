package notify

import (
	"context"
	"fmt"

	"stockreceipt/internal/core/id"
	"stockreceipt/internal/domain/receiving"
	"stockreceipt/internal/infrastructure/storage/postgres"
)

var _ receiving.Notifier = (*OutboxNotifier)(nil)

// OutboxNotifier records inventory changes in the transactional outbox.
// cmd/worker relays them to the broker.
type OutboxNotifier struct {
	txManager *postgres.TxManager
	publisher *postgres.OutboxPublisher
}

// NewOutboxNotifier creates an outbox-backed notifier.
func NewOutboxNotifier(txManager *postgres.TxManager) *OutboxNotifier {
	return &OutboxNotifier{
		txManager: txManager,
		publisher: postgres.NewOutboxPublisher(txManager),
	}
}

// NotifyInventoryChanged writes one InventoryChanged event.
func (n *OutboxNotifier) NotifyInventoryChanged(ctx context.Context, summary receiving.ReceiptSummary) error {
	err := n.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return n.publisher.Publish(ctx, postgres.DomainEvent{
			AggregateType: AggregateReceipt,
			AggregateID:   id.New(),
			EventType:     EventInventoryChanged,
			Payload:       summary,
		})
	})
	if err != nil {
		return fmt.Errorf("enqueue inventory change: %w", err)
	}
	return nil
}
