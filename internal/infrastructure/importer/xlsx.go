package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"stockreceipt/internal/core/types"
	"stockreceipt/internal/domain/receiving"
)

// Workbook layout. The metadata sheet holds key/value pairs in columns A and B.
// The lines sheet has a header row; columns are matched by header name.
const (
	SheetMetadata = "Receipt"
	SheetLines    = "Lines"
)

// Line sheet headers.
const (
	ColProduct          = "product"
	ColVariant          = "variant"
	ColWarehouse        = "warehouse"
	ColProductName      = "product name"
	ColVariantName      = "variant name"
	ColCurrentQuantity  = "current quantity"
	ColExpectedQuantity = "expected quantity"
	ColReceivedQuantity = "received quantity"
	ColUnitCost         = "unit cost"
)

// ReadXLSX reads a receipt workbook.
func ReadXLSX(r io.Reader, now time.Time) (*Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	meta, err := readMetadataSheet(f, now)
	if err != nil {
		return nil, err
	}

	rows, err := readLinesSheet(f)
	if err != nil {
		return nil, err
	}

	return &Batch{Rows: rows, Metadata: meta}, nil
}

func readMetadataSheet(f *excelize.File, now time.Time) (receiving.Metadata, error) {
	values := map[string]string{}
	if idx, _ := f.GetSheetIndex(SheetMetadata); idx >= 0 {
		rows, err := f.GetRows(SheetMetadata)
		if err != nil {
			return receiving.Metadata{}, fmt.Errorf("read sheet %s: %w", SheetMetadata, err)
		}
		for _, row := range rows {
			if len(row) < 2 {
				continue
			}
			values[normalizeHeader(row[0])] = row[1]
		}
	}
	return metadata(values["supplier"], values["delivery date"], values["payment status"], values["notes"], now)
}

func readLinesSheet(f *excelize.File) ([]receiving.ReceivedLine, error) {
	sheet := SheetLines
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("workbook has no %q sheet", SheetLines)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		columns[normalizeHeader(h)] = i
	}
	for _, required := range []string{ColVariant, ColReceivedQuantity} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("sheet %s is missing column %q", sheet, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	lines := make([]receiving.ReceivedLine, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		current, err := snapshotQuantity(types.ParseAmount(cell(row, ColCurrentQuantity)))
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", sheet, i+2, err)
		}

		line := receiving.NewEmptyLine()
		line.ProductRef = cell(row, ColProduct)
		line.VariantRef = cell(row, ColVariant)
		line.WarehouseRef = cell(row, ColWarehouse)
		line.ProductName = cell(row, ColProductName)
		line.VariantName = cell(row, ColVariantName)
		line.CurrentQuantity = current
		line.ExpectedQuantity = types.ParseAmount(cell(row, ColExpectedQuantity))
		line.ReceivedQuantity = types.ParseAmount(cell(row, ColReceivedQuantity))
		line.UnitCostPrice = types.ParseAmount(cell(row, ColUnitCost))
		line.IsModified = true
		lines = append(lines, line)
	}
	return lines, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, "_", " ")
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
