package receiving

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// StockKey addresses one stock record in the inventory store.
type StockKey struct {
	VariantRef   string
	WarehouseRef string
}

// StockResult is what the store answered when the call itself went through.
// A non-empty DomainErrors means the store refused the change.
type StockResult struct {
	DomainErrors []string
}

// OK reports whether the store accepted the change.
func (r StockResult) OK() bool {
	return len(r.DomainErrors) == 0
}

// Message joins the domain errors for display.
func (r StockResult) Message() string {
	return strings.Join(r.DomainErrors, "; ")
}

// InventoryStore is the remote stock mutation API.
// A returned error means the call failed at the transport level.
type InventoryStore interface {
	// UpdateStock sets the quantity of an existing stock record.
	UpdateStock(ctx context.Context, key StockKey, quantity decimal.Decimal) (StockResult, error)

	// CreateStock establishes a new stock record.
	CreateStock(ctx context.Context, key StockKey, quantity decimal.Decimal) (StockResult, error)
}

// Notifier tells downstream systems that stock changed. Best effort.
type Notifier interface {
	NotifyInventoryChanged(ctx context.Context, summary ReceiptSummary) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, summary ReceiptSummary) error

func (f NotifierFunc) NotifyInventoryChanged(ctx context.Context, summary ReceiptSummary) error {
	return f(ctx, summary)
}

// VariantSnapshot is what the catalog knows about a variant when it is picked.
type VariantSnapshot struct {
	ProductRef      string          `db:"product_ref"`
	ProductName     string          `db:"product_name"`
	VariantRef      string          `db:"variant_ref"`
	VariantName     string          `db:"variant_name"`
	WarehouseRef    string          `db:"warehouse_ref"`
	CurrentQuantity decimal.Decimal `db:"current_quantity"`
}

// VariantLookup resolves a variant chosen in the search box.
type VariantLookup interface {
	LookupVariant(ctx context.Context, variantRef string) (VariantSnapshot, error)
}
