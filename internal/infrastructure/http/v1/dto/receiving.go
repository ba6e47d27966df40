// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockreceipt/internal/core/apperror"
	"stockreceipt/internal/core/id"
	"stockreceipt/internal/core/types"
	"stockreceipt/internal/domain/receiving"
)

// --- Request DTOs ---

// LineRequest is one entered row. Quantities accept numbers or numeric strings.
type LineRequest struct {
	RowID            string          `json:"rowId,omitempty"`
	ProductRef       string          `json:"productRef,omitempty"`
	VariantRef       string          `json:"variantRef,omitempty"`
	WarehouseRef     string          `json:"warehouseRef,omitempty"`
	ProductName      string          `json:"productName,omitempty"`
	VariantName      string          `json:"variantName,omitempty"`
	CurrentQuantity  decimal.Decimal `json:"currentQuantity"`
	ExpectedQuantity types.Amount    `json:"expectedQuantity"`
	ReceivedQuantity types.Amount    `json:"receivedQuantity"`
	UnitCostPrice    types.Amount    `json:"unitCostPrice"`
}

// ToLine converts the request to a domain line. A missing row id gets a fresh one.
func (r LineRequest) ToLine() (receiving.ReceivedLine, error) {
	rowID, err := id.ParseOrNew(strings.TrimSpace(r.RowID))
	if err != nil {
		return receiving.ReceivedLine{}, apperror.NewInvalidInput("invalid row id").WithDetail("rowId", r.RowID)
	}
	return receiving.ReceivedLine{
		RowID:            rowID,
		ProductRef:       strings.TrimSpace(r.ProductRef),
		VariantRef:       strings.TrimSpace(r.VariantRef),
		WarehouseRef:     strings.TrimSpace(r.WarehouseRef),
		ProductName:      r.ProductName,
		VariantName:      r.VariantName,
		CurrentQuantity:  r.CurrentQuantity,
		ExpectedQuantity: r.ExpectedQuantity,
		ReceivedQuantity: r.ReceivedQuantity,
		UnitCostPrice:    r.UnitCostPrice,
		IsModified:       true,
	}, nil
}

// MetadataRequest describes the delivery.
type MetadataRequest struct {
	SupplierRef   string     `json:"supplierRef"`
	DeliveryDate  *time.Time `json:"deliveryDate,omitempty"`
	PaymentStatus string     `json:"paymentStatus,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// ToMetadata converts the request. Delivery date defaults to now.
func (r MetadataRequest) ToMetadata(now time.Time) receiving.Metadata {
	meta := receiving.Metadata{
		SupplierRef:   r.SupplierRef,
		DeliveryDate:  now,
		PaymentStatus: receiving.PaymentStatus(strings.ToLower(strings.TrimSpace(r.PaymentStatus))),
		Notes:         r.Notes,
	}
	if r.DeliveryDate != nil {
		meta.DeliveryDate = *r.DeliveryDate
	}
	return meta
}

// BatchRequest is the full receipt form.
type BatchRequest struct {
	Metadata MetadataRequest `json:"metadata"`
	Lines    []LineRequest   `json:"lines"`
}

// ToDomain converts the request into rows and metadata.
func (r BatchRequest) ToDomain(now time.Time) ([]receiving.ReceivedLine, receiving.Metadata, error) {
	rows := make([]receiving.ReceivedLine, len(r.Lines))
	for i, l := range r.Lines {
		line, err := l.ToLine()
		if err != nil {
			return nil, receiving.Metadata{}, err
		}
		rows[i] = line
	}
	return rows, r.Metadata.ToMetadata(now), nil
}

// ValidateLineRequest checks a single quantity and cost pair.
type ValidateLineRequest struct {
	ReceivedQuantity types.Amount `json:"receivedQuantity"`
	UnitCostPrice    types.Amount `json:"unitCostPrice"`
}

// --- Response DTOs ---

// ValidateLineResponse lists violations. Empty means valid.
type ValidateLineResponse struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

// NewValidateLineResponse wraps violations.
func NewValidateLineResponse(violations []string) ValidateLineResponse {
	if violations == nil {
		violations = []string{}
	}
	return ValidateLineResponse{Valid: len(violations) == 0, Violations: violations}
}

// LineResponse is a line with its derived values.
type LineResponse struct {
	receiving.ReceivedLine
	DisplayName    string          `json:"displayName"`
	Value          decimal.Decimal `json:"value"`
	TargetQuantity decimal.Decimal `json:"targetQuantity"`
}

// FromLine builds a LineResponse.
func FromLine(l receiving.ReceivedLine) LineResponse {
	return LineResponse{
		ReceivedLine:   l,
		DisplayName:    l.DisplayName(),
		Value:          l.Value(),
		TargetQuantity: l.TargetQuantity(),
	}
}

// FromLines builds LineResponses.
func FromLines(lines []receiving.ReceivedLine) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, l := range lines {
		out[i] = FromLine(l)
	}
	return out
}

// BatchResponse is an assembled batch with its totals.
type BatchResponse struct {
	Metadata      receiving.Metadata `json:"metadata"`
	Lines         []LineResponse     `json:"lines"`
	ItemCount     int                `json:"itemCount"`
	TotalQuantity decimal.Decimal    `json:"totalQuantity"`
	TotalValue    decimal.Decimal    `json:"totalValue"`
}

// FromBatch builds a BatchResponse.
func FromBatch(b receiving.ReceiptBatch) BatchResponse {
	return BatchResponse{
		Metadata:      b.Metadata,
		Lines:         FromLines(b.Lines),
		ItemCount:     b.ItemCount(),
		TotalQuantity: b.TotalQuantity(),
		TotalValue:    b.TotalValue(),
	}
}

// ExecuteResponse is the outcome of executing a batch.
type ExecuteResponse struct {
	Report     receiving.BatchReport `json:"report"`
	Reset      bool                  `json:"reset"`
	NextLines  []LineResponse        `json:"nextLines"`
	Warning    string                `json:"warning,omitempty"`
	RetryBatch *BatchResponse        `json:"retryBatch,omitempty"`
}

// NewExecuteResponse builds an ExecuteResponse.
func NewExecuteResponse(report receiving.BatchReport, fin receiving.Finalization) ExecuteResponse {
	resp := ExecuteResponse{
		Report:    report,
		Reset:     fin.Reset,
		NextLines: FromLines(fin.NextLines),
		Warning:   fin.Warning,
	}
	if retry := fin.RetryBatch(); retry != nil {
		b := FromBatch(*retry)
		resp.RetryBatch = &b
	}
	return resp
}

// ProgressEvent is streamed after every finished line.
type ProgressEvent struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}
