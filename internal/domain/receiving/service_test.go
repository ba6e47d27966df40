package receiving

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockreceipt/internal/core/apperror"
	"stockreceipt/internal/core/types"
)

type mapLookup map[string]VariantSnapshot

func (m mapLookup) LookupVariant(_ context.Context, ref string) (VariantSnapshot, error) {
	snap, ok := m[ref]
	if !ok {
		return VariantSnapshot{}, apperror.NewNotFound("variant", ref)
	}
	return snap, nil
}

func newTestService(store InventoryStore, notifier Notifier) *Service {
	cfg := DefaultConfig()
	cfg.DefaultWarehouseRef = "wh-default"
	lookup := mapLookup{
		"var-red": {ProductRef: "p-1", ProductName: "T-Shirt", VariantRef: "var-red", VariantName: "Red", WarehouseRef: "wh-north", CurrentQuantity: decimal.NewFromInt(8)},
		"var-blue": {ProductRef: "p-1", ProductName: "T-Shirt", VariantRef: "var-blue", VariantName: "Blue", CurrentQuantity: decimal.NewFromInt(2)},
	}
	return NewService(store, lookup, notifier, cfg)
}

func TestService_ResolveVariant(t *testing.T) {
	svc := newTestService(newStubStore(), nil)

	row, err := svc.ResolveVariant(context.Background(), ReceivedLine{}, "var-red")
	require.NoError(t, err)
	assert.Equal(t, "p-1", row.ProductRef)
	assert.Equal(t, "wh-north", row.WarehouseRef)
	assert.Equal(t, "8", row.CurrentQuantity.String())
	assert.True(t, row.IsModified)

	row, err = svc.ResolveVariant(context.Background(), row, "var-blue")
	require.NoError(t, err)
	assert.Equal(t, "wh-default", row.WarehouseRef)
}

func TestService_ResolveVariant_Errors(t *testing.T) {
	svc := newTestService(newStubStore(), nil)

	_, err := svc.ResolveVariant(context.Background(), ReceivedLine{}, " ")
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.ResolveVariant(context.Background(), ReceivedLine{}, "var-none")
	assert.True(t, apperror.IsNotFound(err))
}

// Scenario A end to end: three valid lines, all accepted, state resets.
func TestService_Receive_AllSucceed(t *testing.T) {
	store := newStubStore()
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)

	rows := []ReceivedLine{line("v1", 0, "1", "2"), line("v2", 0, "3", "2"), line("v3", 0, "5", "2"), NewEmptyLine()}
	res, err := svc.Receive(context.Background(), rows, testMeta(), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, res.Report.Total)
	assert.Equal(t, 3, res.Report.Succeeded)
	assert.Zero(t, res.Report.Failed)
	assert.True(t, res.Finalization.Reset)
	assert.Len(t, notifier.summaries, 1)
}

// Scenario C end to end: nothing reaches the store.
func TestService_Receive_RejectsBeforeExecution(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil)

	rows := []ReceivedLine{line("v1", 0, "1", "2"), line("v2", 0, "-1", "2")}
	res, err := svc.Receive(context.Background(), rows, testMeta(), nil)

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Zero(t, store.callCount())

	var rej *AssemblyRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, []string{MsgQuantityMin}, rej.Rows[1].ValidationErrors)
}

func TestService_Receive_PartialFailureKeepsFailedLines(t *testing.T) {
	store := newStubStore()
	store.updates["v2"] = stubResponse{err: errConnReset}
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)

	rows := []ReceivedLine{line("v1", 0, "1", "2"), line("v2", 0, "1", "2")}
	res, err := svc.Receive(context.Background(), rows, testMeta(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Report.Failed)
	assert.False(t, res.Finalization.Reset)
	assert.Empty(t, notifier.summaries)
	require.Len(t, res.Finalization.NextLines, 1)
	assert.Equal(t, rows[1].RowID, res.Finalization.NextLines[0].RowID)
}

func TestService_ValidateLine(t *testing.T) {
	svc := newTestService(newStubStore(), nil)

	assert.Empty(t, svc.ValidateLine("2", types.MustAmount("3")))
	assert.Len(t, svc.ValidateLine(0, 0), 2)
}

func TestNewService_DefaultsConcurrency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Concurrency = -3
	svc := NewService(newStubStore(), nil, nil, cfg)

	assert.Equal(t, DefaultConcurrency, svc.Concurrency())
}
