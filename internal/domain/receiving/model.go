// Package receiving reconciles operator-entered goods-received batches
// against the remote inventory store.
package receiving

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockreceipt/internal/core/id"
	"stockreceipt/internal/core/types"
)

// PaymentStatus of the supplier delivery.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// ParsePaymentStatus maps free-form input to a PaymentStatus. Empty input means pending.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	if strings.TrimSpace(s) == "" {
		return PaymentPending, true
	}
	ps := PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	return ps, ps.Valid()
}

// ReceivedLine is one row of a receipt as entered by the operator.
type ReceivedLine struct {
	// RowID is generated locally and lives for the editing session only.
	RowID id.ID `json:"rowId"`

	ProductRef   string `json:"productRef,omitempty"`
	VariantRef   string `json:"variantRef,omitempty"`
	WarehouseRef string `json:"warehouseRef,omitempty"`

	ProductName string `json:"productName,omitempty"`
	VariantName string `json:"variantName,omitempty"`

	// CurrentQuantity is the stock level known when the variant was picked.
	CurrentQuantity decimal.Decimal `json:"currentQuantity"`

	// ExpectedQuantity is informational only.
	ExpectedQuantity types.Amount `json:"expectedQuantity"`
	ReceivedQuantity types.Amount `json:"receivedQuantity"`
	UnitCostPrice    types.Amount `json:"unitCostPrice"`

	IsModified       bool     `json:"isModified"`
	ValidationErrors []string `json:"validationErrors,omitempty"`
}

// NewEmptyLine returns a fresh placeholder row.
func NewEmptyLine() ReceivedLine {
	return ReceivedLine{RowID: id.New()}
}

// HasItem reports whether a product and variant were chosen.
func (l ReceivedLine) HasItem() bool {
	return l.ProductRef != "" && l.VariantRef != ""
}

// IsEligible reports whether the line may be executed.
func (l ReceivedLine) IsEligible() bool {
	return l.HasItem() &&
		l.WarehouseRef != "" &&
		l.ReceivedQuantity.IsPositive() &&
		len(l.ValidationErrors) == 0
}

// DisplayName is used in failure reports.
func (l ReceivedLine) DisplayName() string {
	name := l.ProductName
	if name == "" {
		name = l.ProductRef
	}
	if l.VariantName != "" {
		return name + " (" + l.VariantName + ")"
	}
	return name
}

// Value is received quantity times unit cost.
func (l ReceivedLine) Value() decimal.Decimal {
	return l.ReceivedQuantity.Decimal().Mul(l.UnitCostPrice.Decimal())
}

// TargetQuantity is the stock level to write: snapshot plus received.
func (l ReceivedLine) TargetQuantity() decimal.Decimal {
	return l.CurrentQuantity.Add(l.ReceivedQuantity.Decimal())
}

// Metadata describes the delivery as a whole.
type Metadata struct {
	SupplierRef   string        `json:"supplierRef"`
	DeliveryDate  time.Time     `json:"deliveryDate"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Notes         string        `json:"notes,omitempty"`
}

// ReceiptBatch is the executable form of a receipt. Totals are always derived from Lines.
type ReceiptBatch struct {
	Metadata Metadata       `json:"metadata"`
	Lines    []ReceivedLine `json:"lines"`
}

// ItemCount returns the number of lines.
func (b ReceiptBatch) ItemCount() int {
	return len(b.Lines)
}

// TotalQuantity sums received quantities.
func (b ReceiptBatch) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Lines {
		total = total.Add(l.ReceivedQuantity.Decimal())
	}
	return total
}

// TotalValue sums quantity times cost.
func (b ReceiptBatch) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Lines {
		total = total.Add(l.Value())
	}
	return total
}

// Summary builds the downstream notification payload.
func (b ReceiptBatch) Summary() ReceiptSummary {
	s := ReceiptSummary{
		SupplierRef:   b.Metadata.SupplierRef,
		DeliveryDate:  b.Metadata.DeliveryDate,
		PaymentStatus: b.Metadata.PaymentStatus,
		ItemCount:     b.ItemCount(),
		TotalQuantity: b.TotalQuantity(),
		TotalValue:    b.TotalValue(),
		Items:         make([]SummaryItem, 0, len(b.Lines)),
	}
	for _, l := range b.Lines {
		s.Items = append(s.Items, SummaryItem{
			VariantRef:   l.VariantRef,
			WarehouseRef: l.WarehouseRef,
			Received:     l.ReceivedQuantity.Decimal(),
			NewQuantity:  l.TargetQuantity(),
		})
	}
	return s
}

// ReceiptSummary is what downstream systems learn about an applied receipt.
type ReceiptSummary struct {
	SupplierRef   string          `json:"supplierRef"`
	DeliveryDate  time.Time       `json:"deliveryDate"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	ItemCount     int             `json:"itemCount"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	Items         []SummaryItem   `json:"items"`
}

// SummaryItem is one stock change inside a ReceiptSummary.
type SummaryItem struct {
	VariantRef   string          `json:"variantRef"`
	WarehouseRef string          `json:"warehouseRef"`
	Received     decimal.Decimal `json:"received"`
	NewQuantity  decimal.Decimal `json:"newQuantity"`
}
