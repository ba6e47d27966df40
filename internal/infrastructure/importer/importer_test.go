package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockreceipt/internal/domain/receiving"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

const sampleYAML = `
supplier: sup-42
deliveryDate: 2026-03-10
paymentStatus: Paid
notes: pallet 3 damaged
lines:
  - product: p-1
    variant: v-1
    warehouse: wh-1
    productName: Widget
    variantName: Red
    currentQuantity: 4
    receivedQuantity: 1.10
    unitCostPrice: 2.50
  - product: p-2
    variant: v-2
    receivedQuantity: abc
`

func TestReadYAML(t *testing.T) {
	batch, err := ReadYAML(strings.NewReader(sampleYAML), testNow)
	require.NoError(t, err)

	assert.Equal(t, "sup-42", batch.Metadata.SupplierRef)
	assert.Equal(t, receiving.PaymentPaid, batch.Metadata.PaymentStatus)
	assert.Equal(t, "pallet 3 damaged", batch.Metadata.Notes)
	assert.True(t, batch.Metadata.DeliveryDate.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))

	require.Len(t, batch.Rows, 2)
	first := batch.Rows[0]
	assert.Equal(t, "v-1", first.VariantRef)
	assert.Equal(t, "wh-1", first.WarehouseRef)
	assert.Equal(t, "1.10", first.ReceivedQuantity.Raw())
	assert.Equal(t, "5.1", first.TargetQuantity().String())
	assert.Equal(t, "2.5", first.UnitCostPrice.String())
	assert.False(t, first.ExpectedQuantity.IsSet())
	assert.True(t, first.IsModified)

	second := batch.Rows[1]
	assert.True(t, second.ReceivedQuantity.IsSet())
	assert.False(t, second.ReceivedQuantity.IsNumeric())
	assert.NotEqual(t, first.RowID, second.RowID)
}

func TestReadYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty batch document"},
		{"unknown field", "supplier: s\nwarehouse: x\n", "decode batch yaml"},
		{"bad date", "supplier: s\ndeliveryDate: tomorrow\n", "invalid delivery date"},
		{"nested quantity", "lines:\n  - variant: v\n    receivedQuantity: [1]\n", "expected a number"},
		{
			"non-numeric current quantity",
			"lines:\n  - variant: v-1\n    receivedQuantity: 5\n  - variant: v-2\n    currentQuantity: \"12O\"\n    receivedQuantity: 5\n",
			`line 2: currentQuantity "12O" is not a number`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadYAML(strings.NewReader(tt.doc), testNow)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadYAML_DefaultsDeliveryDate(t *testing.T) {
	batch, err := ReadYAML(strings.NewReader("supplier: s\nlines: []\n"), testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, batch.Metadata.DeliveryDate)
	assert.Empty(t, batch.Rows)
}

func buildWorkbook(t *testing.T, lines [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", SheetMetadata))
	meta := [][]any{
		{"Supplier", "sup-7"},
		{"Delivery date", "14.03.2026"},
		{"Payment status", "partial"},
	}
	for i, row := range meta {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(SheetMetadata, cell, &row))
	}

	if lines != nil {
		_, err := f.NewSheet(SheetLines)
		require.NoError(t, err)
		for i, row := range lines {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(SheetLines, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadXLSX(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Product", "Variant", "Warehouse", "Received_Quantity", "Unit Cost", "Current Quantity"},
		{"p-1", "v-1", "wh-1", "3", "1.25", "7"},
		{"", "", "", "", "", ""},
		{"p-2", "v-2", "", "-1"},
	})

	batch, err := ReadXLSX(buf, testNow)
	require.NoError(t, err)

	assert.Equal(t, "sup-7", batch.Metadata.SupplierRef)
	assert.Equal(t, receiving.PaymentPartial, batch.Metadata.PaymentStatus)
	assert.True(t, batch.Metadata.DeliveryDate.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)))

	require.Len(t, batch.Rows, 2)
	assert.Equal(t, "wh-1", batch.Rows[0].WarehouseRef)
	assert.Equal(t, "10", batch.Rows[0].TargetQuantity().String())
	assert.Equal(t, "1.25", batch.Rows[0].UnitCostPrice.String())

	assert.Empty(t, batch.Rows[1].WarehouseRef)
	assert.Equal(t, "-1", batch.Rows[1].ReceivedQuantity.String())
	assert.False(t, batch.Rows[1].UnitCostPrice.IsSet())
}

func TestReadXLSX_MissingSheetOrColumn(t *testing.T) {
	_, err := ReadXLSX(buildWorkbook(t, nil), testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no \"Lines\" sheet")

	_, err = ReadXLSX(buildWorkbook(t, [][]any{{"Product", "Variant"}}), testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestReadXLSX_NonNumericCurrentQuantity(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Variant", "Received Quantity", "Current Quantity"},
		{"v-1", "5", "3"},
		{"v-2", "5", "12O"},
	})

	_, err := ReadXLSX(buf, testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet Lines row 3: currentQuantity "12O" is not a number`)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "batch.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o600))
	batch, err := ReadFile(yamlPath, testNow)
	require.NoError(t, err)
	assert.Len(t, batch.Rows, 2)

	xlsxPath := filepath.Join(dir, "batch.XLSX")
	buf := buildWorkbook(t, [][]any{{"Variant", "Received Quantity"}, {"v-1", "2"}})
	require.NoError(t, os.WriteFile(xlsxPath, buf.Bytes(), 0o600))
	batch, err = ReadFile(xlsxPath, testNow)
	require.NoError(t, err)
	assert.Len(t, batch.Rows, 1)

	csvPath := filepath.Join(dir, "batch.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("x"), 0o600))
	_, err = ReadFile(csvPath, testNow)
	assert.ErrorContains(t, err, "unsupported batch file type")

	_, err = ReadFile(filepath.Join(dir, "missing.yaml"), testNow)
	assert.Error(t, err)
}
