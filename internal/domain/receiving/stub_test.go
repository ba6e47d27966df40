package receiving

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"stockreceipt/internal/core/id"
	"stockreceipt/internal/core/types"
)

// stockCall is one recorded call against stubStore.
type stockCall struct {
	op       string
	key      StockKey
	quantity decimal.Decimal
}

// stubResponse scripts the store's answer for a variant.
type stubResponse struct {
	result StockResult
	err    error
}

// stubStore is an instrumented InventoryStore. By default every update succeeds.
type stubStore struct {
	mu      sync.Mutex
	calls   []stockCall
	updates map[string]stubResponse
	creates map[string]stubResponse

	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func newStubStore() *stubStore {
	return &stubStore{
		updates: make(map[string]stubResponse),
		creates: make(map[string]stubResponse),
	}
}

func (s *stubStore) enter() {
	n := s.inFlight.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

func (s *stubStore) leave() { s.inFlight.Add(-1) }

func (s *stubStore) record(op string, key StockKey, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stockCall{op: op, key: key, quantity: qty})
}

func (s *stubStore) UpdateStock(_ context.Context, key StockKey, qty decimal.Decimal) (StockResult, error) {
	s.enter()
	defer s.leave()
	s.record("update", key, qty)

	s.mu.Lock()
	resp, ok := s.updates[key.VariantRef]
	s.mu.Unlock()
	if !ok {
		return StockResult{}, nil
	}
	return resp.result, resp.err
}

func (s *stubStore) CreateStock(_ context.Context, key StockKey, qty decimal.Decimal) (StockResult, error) {
	s.enter()
	defer s.leave()
	s.record("create", key, qty)

	s.mu.Lock()
	resp, ok := s.creates[key.VariantRef]
	s.mu.Unlock()
	if !ok {
		return StockResult{}, nil
	}
	return resp.result, resp.err
}

func (s *stubStore) callsFor(variantRef string) []stockCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []stockCall
	for _, c := range s.calls {
		if c.key.VariantRef == variantRef {
			out = append(out, c)
		}
	}
	return out
}

func (s *stubStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

var errConnReset = errors.New("connection reset by peer")

// line builds a filled-in row.
func line(variant string, current int64, qty, cost string) ReceivedLine {
	return ReceivedLine{
		RowID:            id.New(),
		ProductRef:       "prod-" + variant,
		ProductName:      "Product " + variant,
		VariantRef:       variant,
		VariantName:      "Default",
		WarehouseRef:     "wh-main",
		CurrentQuantity:  decimal.NewFromInt(current),
		ReceivedQuantity: types.ParseAmount(qty),
		UnitCostPrice:    types.ParseAmount(cost),
		IsModified:       true,
	}
}

func testMeta() Metadata {
	return Metadata{
		SupplierRef:   "sup-1",
		DeliveryDate:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		PaymentStatus: PaymentPending,
	}
}

func testRules() Rules {
	return DefaultRules("USD")
}
