// Package importer reads receipt batches from YAML and XLSX files.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockreceipt/internal/core/types"
	"stockreceipt/internal/domain/receiving"
)

// Batch is an imported receipt: the entered rows and the delivery metadata.
// Rows are not validated here; the assembler does that.
type Batch struct {
	Rows     []receiving.ReceivedLine
	Metadata receiving.Metadata
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "02.01.2006"}

// ReadFile picks a reader by file extension.
func ReadFile(path string, now time.Time) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ReadYAML(f, now)
	case ".xlsx":
		return ReadXLSX(f, now)
	default:
		return nil, fmt.Errorf("unsupported batch file type %q", ext)
	}
}

// parseDate accepts RFC 3339, ISO dates, and day.month.year. Blank means now.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid delivery date %q", s)
}

func metadata(supplier, date, payment, notes string, now time.Time) (receiving.Metadata, error) {
	deliveryDate, err := parseDate(date, now)
	if err != nil {
		return receiving.Metadata{}, err
	}
	return receiving.Metadata{
		SupplierRef:   strings.TrimSpace(supplier),
		DeliveryDate:  deliveryDate,
		PaymentStatus: receiving.PaymentStatus(strings.ToLower(strings.TrimSpace(payment))),
		Notes:         notes,
	}, nil
}

// snapshotQuantity parses a stock snapshot. Blank means zero; other
// non-numeric text is an error.
func snapshotQuantity(a types.Amount) (decimal.Decimal, error) {
	if a.IsSet() && !a.IsNumeric() {
		return decimal.Zero, fmt.Errorf("currentQuantity %q is not a number", a.Raw())
	}
	return a.Decimal(), nil
}
