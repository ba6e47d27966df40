package receiving

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockreceipt/internal/core/apperror"
	"stockreceipt/internal/core/id"
	"stockreceipt/pkg/logger"
)

// Config holds engine settings.
type Config struct {
	Rules Rules

	// Concurrency caps in-flight line upserts per batch.
	Concurrency int

	// DefaultWarehouseRef is used for variants that carry no warehouse.
	DefaultWarehouseRef string

	NotifyTimeout         time.Duration
	DisableCreateFallback bool
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Rules:         DefaultRules("USD"),
		Concurrency:   DefaultConcurrency,
		NotifyTimeout: 5 * time.Second,
	}
}

// Result is the outcome of a full receive: the executed batch, its report,
// and the next editing state.
type Result struct {
	Batch        *ReceiptBatch `json:"batch"`
	Report       BatchReport   `json:"report"`
	Finalization Finalization  `json:"finalization"`
}

// Service wires the validator, assembler, executor, and finalizer together.
type Service struct {
	cfg       Config
	lookup    VariantLookup
	executor  *Executor
	finalizer *Finalizer
}

// NewService creates a receiving service. lookup and notifier may be nil.
func NewService(store InventoryStore, lookup VariantLookup, notifier Notifier, cfg Config) *Service {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Service{
		cfg:       cfg,
		lookup:    lookup,
		executor:  NewExecutor(store, ExecutorOptions{DisableCreateFallback: cfg.DisableCreateFallback}),
		finalizer: NewFinalizer(notifier, FinalizerOptions{NotifyTimeout: cfg.NotifyTimeout}),
	}
}

// Rules returns the active line rules.
func (s *Service) Rules() Rules {
	return s.cfg.Rules
}

// Concurrency returns the configured cap.
func (s *Service) Concurrency() int {
	return s.cfg.Concurrency
}

// ValidateLine checks a quantity and cost pair.
func (s *Service) ValidateLine(quantity, cost any) []string {
	return ValidateValues(quantity, cost, s.cfg.Rules)
}

// ResolveVariant fills row with the variant's catalog data and stock snapshot.
// The variant's own warehouse wins over the configured default.
func (s *Service) ResolveVariant(ctx context.Context, row ReceivedLine, variantRef string) (ReceivedLine, error) {
	variantRef = strings.TrimSpace(variantRef)
	if variantRef == "" {
		return row, apperror.NewValidation("variant is required").WithDetail("field", "variantRef")
	}
	if s.lookup == nil {
		return row, apperror.NewInternal(fmt.Errorf("variant lookup is not configured"))
	}

	snap, err := s.lookup.LookupVariant(ctx, variantRef)
	if err != nil {
		return row, fmt.Errorf("lookup variant %s: %w", variantRef, err)
	}

	if id.IsNil(row.RowID) {
		row.RowID = id.New()
	}
	row.ProductRef = snap.ProductRef
	row.ProductName = snap.ProductName
	row.VariantRef = snap.VariantRef
	row.VariantName = snap.VariantName
	row.CurrentQuantity = snap.CurrentQuantity
	row.WarehouseRef = snap.WarehouseRef
	if row.WarehouseRef == "" {
		row.WarehouseRef = s.cfg.DefaultWarehouseRef
	}
	row.IsModified = true
	row.ValidationErrors = nil

	return row, nil
}

// Assemble builds an executable batch from the entered rows.
func (s *Service) Assemble(rows []ReceivedLine, meta Metadata) (*ReceiptBatch, error) {
	return AssembleBatch(rows, meta, s.cfg.Rules)
}

// Execute applies an assembled batch with the configured cap.
func (s *Service) Execute(ctx context.Context, batch ReceiptBatch, onProgress ProgressFunc) BatchReport {
	return s.executor.Execute(ctx, batch, s.cfg.Concurrency, onProgress)
}

// Finalize decides the next editing state.
func (s *Service) Finalize(ctx context.Context, batch ReceiptBatch, report BatchReport) Finalization {
	return s.finalizer.Finalize(ctx, batch, report)
}

// Receive assembles, executes, and finalizes in one go.
// The error is non-nil only when assembly rejected the rows.
func (s *Service) Receive(ctx context.Context, rows []ReceivedLine, meta Metadata, onProgress ProgressFunc) (*Result, error) {
	batch, err := s.Assemble(rows, meta)
	if err != nil {
		logger.Info(ctx, "receipt rejected", "error", err)
		return nil, err
	}

	logger.Info(ctx, "receipt batch assembled",
		"supplier_ref", batch.Metadata.SupplierRef,
		"items", batch.ItemCount(),
		"total_quantity", batch.TotalQuantity().String(),
		"total_value", batch.TotalValue().String(),
	)

	report := s.Execute(ctx, *batch, onProgress)
	return &Result{
		Batch:        batch,
		Report:       report,
		Finalization: s.Finalize(ctx, *batch, report),
	}, nil
}
