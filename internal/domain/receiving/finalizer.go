package receiving

import (
	"context"
	"time"

	"stockreceipt/pkg/logger"
)

// FinalizerOptions configures the post-execution step.
type FinalizerOptions struct {
	// NotifyTimeout bounds the downstream notification. Zero means no extra bound.
	NotifyTimeout time.Duration
}

// Finalization tells the caller what to do with its editing state.
type Finalization struct {
	// Reset is true when every line was applied and the form should start over.
	Reset bool `json:"reset"`

	// NextLines is the editing state to show next: a single empty line after
	// a reset, otherwise the failed lines annotated with their errors.
	NextLines []ReceivedLine `json:"nextLines"`

	// Warning is set when the downstream notification failed.
	// Stock changes stay applied.
	Warning string `json:"warning,omitempty"`

	retry *ReceiptBatch
}

// RetryBatch returns a fresh batch holding exactly the failed lines, or nil
// when there is nothing to retry. Succeeded lines are never included.
func (f Finalization) RetryBatch() *ReceiptBatch {
	return f.retry
}

// Finalizer resets state on success and notifies downstream systems.
type Finalizer struct {
	notifier Notifier
	opts     FinalizerOptions
}

// NewFinalizer creates a finalizer. notifier may be nil.
func NewFinalizer(notifier Notifier, opts FinalizerOptions) *Finalizer {
	return &Finalizer{notifier: notifier, opts: opts}
}

// Finalize decides the next editing state from the report.
func (f *Finalizer) Finalize(ctx context.Context, batch ReceiptBatch, report BatchReport) Finalization {
	if report.FullySucceeded() {
		fin := Finalization{
			Reset:     true,
			NextLines: []ReceivedLine{NewEmptyLine()},
		}
		if err := f.notify(ctx, batch.Summary()); err != nil {
			fin.Warning = "stock updated but downstream notification failed: " + err.Error()
			logger.Warn(ctx, "inventory change notification failed",
				"supplier_ref", batch.Metadata.SupplierRef,
				"error", err,
			)
		}
		return fin
	}

	failedAt := report.FailedPositions()
	retryLines := make([]ReceivedLine, 0, len(failedAt))
	for pos, line := range batch.Lines {
		item, ok := failedAt[pos]
		if !ok {
			continue
		}
		line.ValidationErrors = []string{item.Error}
		retryLines = append(retryLines, line)
	}

	retry := &ReceiptBatch{
		Metadata: batch.Metadata,
		Lines:    make([]ReceivedLine, len(retryLines)),
	}
	for i, l := range retryLines {
		l.ValidationErrors = nil
		retry.Lines[i] = l
	}

	return Finalization{
		Reset:     false,
		NextLines: retryLines,
		retry:     retry,
	}
}

func (f *Finalizer) notify(ctx context.Context, summary ReceiptSummary) error {
	if f.notifier == nil {
		return nil
	}
	if f.opts.NotifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.NotifyTimeout)
		defer cancel()
	}
	return f.notifier.NotifyInventoryChanged(ctx, summary)
}
