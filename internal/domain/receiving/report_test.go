package receiving

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	a := line("v1", 0, "1", "1")
	b := line("v2", 0, "1", "1")
	c := line("v3", 0, "1", "1")

	report := Aggregate([]LineOutcome{
		failed(c, FailureDomainCreate, "duplicate"),
		succeeded(a),
		failed(b, FailureMissingWarehouse, "No warehouse ID for Product v2"),
	})

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.True(t, report.Consistent())
	assert.False(t, report.FullySucceeded())

	assert.Equal(t, c.RowID, report.FailedItems[0].RowID)
	assert.Equal(t, "duplicate", report.FailedItems[0].Error)
	assert.Equal(t, FailureMissingWarehouse, report.FailedItems[1].Kind)

	assert.Equal(t, 0, report.FailedItems[0].Position)
	assert.Equal(t, 2, report.FailedItems[1].Position)

	positions := report.FailedPositions()
	assert.Contains(t, positions, 2)
	assert.NotContains(t, positions, 1)
}

func TestAggregate_Empty(t *testing.T) {
	report := Aggregate(nil)

	assert.Zero(t, report.Total)
	assert.True(t, report.Consistent())
	assert.True(t, report.FullySucceeded())
	assert.NotNil(t, report.FailedItems)
}

func TestReceivedLine_DisplayName(t *testing.T) {
	l := ReceivedLine{ProductRef: "p-9"}
	assert.Equal(t, "p-9", l.DisplayName())

	l.ProductName = "Mug"
	l.VariantName = "Large"
	assert.Equal(t, "Mug (Large)", l.DisplayName())
}

func TestParsePaymentStatus(t *testing.T) {
	ps, ok := ParsePaymentStatus("")
	assert.True(t, ok)
	assert.Equal(t, PaymentPending, ps)

	ps, ok = ParsePaymentStatus(" PAID ")
	assert.True(t, ok)
	assert.Equal(t, PaymentPaid, ps)

	_, ok = ParsePaymentStatus("refunded")
	assert.False(t, ok)
}
