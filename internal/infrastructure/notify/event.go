// Package notify delivers inventory-change notifications to downstream systems.
package notify

import (
	"encoding/json"
	"time"

	"stockreceipt/internal/core/id"
)

const (
	// AggregateReceipt is the outbox aggregate type for applied receipts.
	AggregateReceipt = "Receipt"

	// EventInventoryChanged is published once per fully applied receipt.
	EventInventoryChanged = "InventoryChanged"
)

// Envelope is the message put on the pub/sub channel.
type Envelope struct {
	EventType  string          `json:"eventType"`
	ReceiptID  id.ID           `json:"receiptId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}
