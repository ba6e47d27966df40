package receiving

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"stockreceipt/pkg/logger"
)

var tracer = otel.Tracer("stockreceipt/receiving")

// DefaultConcurrency is used when the caller passes a cap below 1.
const DefaultConcurrency = 5

// ExecutorOptions tunes the upsert protocol.
type ExecutorOptions struct {
	// DisableCreateFallback makes a refused update final (FailureDomainUpdate)
	// instead of falling back to CreateStock.
	DisableCreateFallback bool
}

// Executor applies batch lines to the inventory store under a concurrency cap.
//
// New quantities are computed from the snapshot taken when each variant was
// picked (CurrentQuantity + ReceivedQuantity) and written as absolute values.
// Concurrent external changes to the same stock record are overwritten.
type Executor struct {
	store InventoryStore
	opts  ExecutorOptions
}

// NewExecutor creates an executor over the given store.
func NewExecutor(store InventoryStore, opts ExecutorOptions) *Executor {
	return &Executor{store: store, opts: opts}
}

// Execute applies every line of the batch and aggregates the outcomes.
// It always returns a report, even when every line fails.
func (e *Executor) Execute(ctx context.Context, batch ReceiptBatch, concurrencyCap int, onProgress ProgressFunc) BatchReport {
	start := time.Now()
	report := Aggregate(e.Run(ctx, batch.Lines, concurrencyCap, onProgress))

	logger.Info(ctx, "receipt batch executed",
		"supplier_ref", batch.Metadata.SupplierRef,
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report
}

// Run applies lines and returns one outcome per line, index-aligned with lines.
//
// Cancelling ctx stops lines that have not started yet; they come back as
// FailureCancelled. Calls already in flight are not aborted.
func (e *Executor) Run(ctx context.Context, lines []ReceivedLine, concurrencyCap int, onProgress ProgressFunc) []LineOutcome {
	if concurrencyCap < 1 {
		concurrencyCap = DefaultConcurrency
	}

	outcomes := make([]LineOutcome, len(lines))
	progress := newTally(len(lines), onProgress)
	callCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(concurrencyCap)

	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			var o LineOutcome
			if ctx.Err() != nil {
				o = failed(line, FailureCancelled, "batch cancelled before the line was applied")
			} else {
				o = e.apply(callCtx, line)
			}
			outcomes[i] = o
			progress.record()
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// apply runs the update-then-create protocol for one line.
func (e *Executor) apply(ctx context.Context, line ReceivedLine) LineOutcome {
	ctx, span := tracer.Start(ctx, "receiving.apply_line",
		trace.WithAttributes(
			attribute.String("row_id", line.RowID.String()),
			attribute.String("variant_ref", line.VariantRef),
			attribute.String("warehouse_ref", line.WarehouseRef),
		))
	defer span.End()

	if line.WarehouseRef == "" {
		return e.fail(ctx, span, line, FailureMissingWarehouse,
			fmt.Sprintf("No warehouse ID for %s", productLabel(line)))
	}

	key := StockKey{VariantRef: line.VariantRef, WarehouseRef: line.WarehouseRef}
	quantity := line.TargetQuantity()

	res, err := e.store.UpdateStock(ctx, key, quantity)
	if err != nil {
		return e.fail(ctx, span, line, FailureTransport, err.Error())
	}
	if res.OK() {
		return succeeded(line)
	}

	if e.opts.DisableCreateFallback {
		return e.fail(ctx, span, line, FailureDomainUpdate, res.Message())
	}

	logger.Debug(ctx, "stock update refused, creating record",
		"row_id", line.RowID,
		"variant_ref", key.VariantRef,
		"warehouse_ref", key.WarehouseRef,
		"reason", res.Message(),
	)

	res, err = e.store.CreateStock(ctx, key, quantity)
	if err != nil {
		return e.fail(ctx, span, line, FailureTransport, err.Error())
	}
	if !res.OK() {
		return e.fail(ctx, span, line, FailureDomainCreate, res.Message())
	}

	return succeeded(line)
}

func (e *Executor) fail(ctx context.Context, span trace.Span, line ReceivedLine, kind FailureKind, msg string) LineOutcome {
	span.SetStatus(codes.Error, msg)
	span.SetAttributes(attribute.String("failure_kind", string(kind)))

	logger.Warn(ctx, "receipt line failed",
		"row_id", line.RowID,
		"product", line.DisplayName(),
		"kind", kind,
		"error", msg,
	)
	return failed(line, kind, msg)
}

func productLabel(line ReceivedLine) string {
	if line.ProductName != "" {
		return line.ProductName
	}
	return line.ProductRef
}
