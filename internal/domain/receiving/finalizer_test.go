package receiving

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockreceipt/internal/core/id"
)

type recordingNotifier struct {
	summaries []ReceiptSummary
	err       error
}

func (n *recordingNotifier) NotifyInventoryChanged(_ context.Context, s ReceiptSummary) error {
	n.summaries = append(n.summaries, s)
	return n.err
}

func TestFinalize_FullSuccessResetsAndNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	fin := NewFinalizer(notifier, FinalizerOptions{})
	batch := batchOf(line("v1", 4, "2", "3"), line("v2", 0, "1", "10"))

	out := fin.Finalize(context.Background(), batch, BatchReport{Total: 2, Succeeded: 2})

	assert.True(t, out.Reset)
	require.Len(t, out.NextLines, 1)
	assert.False(t, out.NextLines[0].HasItem())
	assert.False(t, id.IsNil(out.NextLines[0].RowID))
	assert.Empty(t, out.Warning)
	assert.Nil(t, out.RetryBatch())

	require.Len(t, notifier.summaries, 1)
	s := notifier.summaries[0]
	assert.Equal(t, "sup-1", s.SupplierRef)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, "3", s.TotalQuantity.String())
	assert.Equal(t, "16", s.TotalValue.String())
	assert.Equal(t, "6", s.Items[0].NewQuantity.String())
}

func TestFinalize_NotificationFailureIsOnlyAWarning(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("broker down")}
	fin := NewFinalizer(notifier, FinalizerOptions{NotifyTimeout: time.Second})

	out := fin.Finalize(context.Background(), batchOf(line("v1", 0, "1", "1")), BatchReport{Total: 1, Succeeded: 1})

	assert.True(t, out.Reset)
	assert.Contains(t, out.Warning, "broker down")
}

func TestFinalize_NilNotifier(t *testing.T) {
	fin := NewFinalizer(nil, FinalizerOptions{})

	out := fin.Finalize(context.Background(), batchOf(line("v1", 0, "1", "1")), BatchReport{Total: 1, Succeeded: 1})

	assert.True(t, out.Reset)
	assert.Empty(t, out.Warning)
}

func TestFinalize_FailuresKeepStateAndOfferRetry(t *testing.T) {
	notifier := &recordingNotifier{}
	fin := NewFinalizer(notifier, FinalizerOptions{})
	ok := line("v1", 0, "1", "1")
	bad := line("v2", 0, "1", "1")
	batch := batchOf(ok, bad)
	report := BatchReport{
		Total: 2, Succeeded: 1, Failed: 1,
		FailedItems: []FailedItem{{Position: 1, RowID: bad.RowID, Kind: FailureTransport, Error: "timeout"}},
	}

	out := fin.Finalize(context.Background(), batch, report)

	assert.False(t, out.Reset)
	assert.Empty(t, notifier.summaries)
	require.Len(t, out.NextLines, 1)
	assert.Equal(t, bad.RowID, out.NextLines[0].RowID)
	assert.Equal(t, []string{"timeout"}, out.NextLines[0].ValidationErrors)

	retry := out.RetryBatch()
	require.NotNil(t, retry)
	require.Len(t, retry.Lines, 1)
	assert.Equal(t, bad.RowID, retry.Lines[0].RowID)
	assert.Empty(t, retry.Lines[0].ValidationErrors)
	assert.Equal(t, batch.Metadata, retry.Metadata)
}

func TestFinalize_SharedRowIDRetriesOnlyFailedLine(t *testing.T) {
	store := newStubStore()
	store.updates["v-bad"] = stubResponse{err: errors.New("connection reset")}

	good := line("v-good", 2, "3", "1")
	bad := line("v-bad", 0, "1", "1")
	bad.RowID = good.RowID
	batch := batchOf(good, bad)

	report := NewExecutor(store, ExecutorOptions{}).Execute(context.Background(), batch, 2, nil)
	require.Equal(t, 1, report.Succeeded)
	require.Equal(t, 1, report.Failed)

	out := NewFinalizer(nil, FinalizerOptions{}).Finalize(context.Background(), batch, report)

	require.Len(t, out.NextLines, 1)
	assert.Equal(t, "v-bad", out.NextLines[0].VariantRef)
	assert.Equal(t, []string{"connection reset"}, out.NextLines[0].ValidationErrors)

	retry := out.RetryBatch()
	require.NotNil(t, retry)
	require.Len(t, retry.Lines, 1)
	assert.Equal(t, "v-bad", retry.Lines[0].VariantRef)
}
