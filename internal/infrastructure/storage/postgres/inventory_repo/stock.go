// Package inventory_repo provides the PostgreSQL inventory store used by receiving.
package inventory_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"stockreceipt/internal/core/apperror"
	"stockreceipt/internal/domain/receiving"
	"stockreceipt/internal/infrastructure/storage/postgres"
)

const (
	stockLevelsTable = "inv_stock_levels"
	variantsTable    = "cat_variants"
	productsTable    = "cat_products"
)

var (
	_ receiving.InventoryStore = (*StockRepo)(nil)
	_ receiving.VariantLookup  = (*StockRepo)(nil)
)

// StockRepo implements receiving.InventoryStore and receiving.VariantLookup.
type StockRepo struct {
	txManager        *postgres.TxManager
	builder          squirrel.StatementBuilderType
	defaultWarehouse string
}

// NewStockRepo creates a stock repository. defaultWarehouse is used to read
// the snapshot quantity of variants that have no warehouse of their own.
func NewStockRepo(txManager *postgres.TxManager, defaultWarehouse string) *StockRepo {
	return &StockRepo{
		txManager:        txManager,
		builder:          squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		defaultWarehouse: defaultWarehouse,
	}
}

// UpdateStock sets the quantity of an existing stock record.
// A missing record is a domain refusal so the caller can fall back to create.
func (r *StockRepo) UpdateStock(ctx context.Context, key receiving.StockKey, quantity decimal.Decimal) (receiving.StockResult, error) {
	sql, args, err := r.updateQuery(key, quantity)
	if err != nil {
		return receiving.StockResult{}, err
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return classify(err, "update stock")
	}
	if tag.RowsAffected() == 0 {
		return refused(fmt.Sprintf("no stock record for variant %s in warehouse %s", key.VariantRef, key.WarehouseRef)), nil
	}
	return receiving.StockResult{}, nil
}

// CreateStock inserts a new stock record. An existing record is a domain refusal.
func (r *StockRepo) CreateStock(ctx context.Context, key receiving.StockKey, quantity decimal.Decimal) (receiving.StockResult, error) {
	sql, args, err := r.insertQuery(key, quantity)
	if err != nil {
		return receiving.StockResult{}, err
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return classify(err, "create stock")
	}
	if tag.RowsAffected() == 0 {
		return refused(fmt.Sprintf("stock record for variant %s in warehouse %s already exists", key.VariantRef, key.WarehouseRef)), nil
	}
	return receiving.StockResult{}, nil
}

// LookupVariant returns catalog data and the current stock snapshot for a variant.
func (r *StockRepo) LookupVariant(ctx context.Context, variantRef string) (receiving.VariantSnapshot, error) {
	var snap receiving.VariantSnapshot

	sql, args, err := r.lookupQuery(variantRef)
	if err != nil {
		return snap, err
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &snap, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return snap, apperror.NewNotFound("variant", variantRef)
		}
		return snap, fmt.Errorf("get variant: %w", err)
	}
	return snap, nil
}

func (r *StockRepo) updateQuery(key receiving.StockKey, quantity decimal.Decimal) (string, []any, error) {
	sql, args, err := r.builder.Update(stockLevelsTable).
		Set("quantity", quantity).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"variant_ref": key.VariantRef}).
		Where(squirrel.Eq{"warehouse_ref": key.WarehouseRef}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build update: %w", err)
	}
	return sql, args, nil
}

func (r *StockRepo) insertQuery(key receiving.StockKey, quantity decimal.Decimal) (string, []any, error) {
	sql, args, err := r.builder.Insert(stockLevelsTable).
		Columns("variant_ref", "warehouse_ref", "quantity").
		Values(key.VariantRef, key.WarehouseRef, quantity).
		Suffix("ON CONFLICT (variant_ref, warehouse_ref) DO NOTHING").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return sql, args, nil
}

func (r *StockRepo) lookupQuery(variantRef string) (string, []any, error) {
	sql, args, err := r.builder.Select(
		"v.variant_ref",
		"v.product_ref",
		"p.name AS product_name",
		"v.name AS variant_name",
		"COALESCE(v.warehouse_ref, '') AS warehouse_ref",
		"COALESCE(s.quantity, 0) AS current_quantity",
	).From(variantsTable+" v").
		Join(productsTable+" p ON p.product_ref = v.product_ref").
		LeftJoin(stockLevelsTable+" s ON s.variant_ref = v.variant_ref AND s.warehouse_ref = COALESCE(NULLIF(v.warehouse_ref, ''), ?)", r.defaultWarehouse).
		Where(squirrel.Eq{"v.variant_ref": variantRef}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build lookup: %w", err)
	}
	return sql, args, nil
}

func refused(msg string) receiving.StockResult {
	return receiving.StockResult{DomainErrors: []string{msg}}
}

// classify turns integrity constraint violations into domain refusals.
// Everything else is a transport failure.
func classify(err error, op string) (receiving.StockResult, error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == "23" {
		return refused(pgErr.Message), nil
	}
	return receiving.StockResult{}, fmt.Errorf("%s: %w", op, err)
}
