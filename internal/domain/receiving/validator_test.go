package receiving

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockreceipt/internal/core/types"
)

func TestValidateValues(t *testing.T) {
	rules := testRules()
	costMsg := "Cost price must be at least 1 USD"

	tests := []struct {
		name string
		qty  any
		cost any
		want []string
	}{
		{"valid numbers", 3, 10, nil},
		{"valid strings", "3", "10.50", nil},
		{"quantity zero", 0, 10, []string{MsgQuantityMin}},
		{"quantity negative", -1, 10, []string{MsgQuantityMin}},
		{"quantity fractional below one", "0.5", 10, []string{MsgQuantityMin}},
		{"cost below one", 2, "0.99", []string{costMsg}},
		{"both invalid", 0, 0, []string{MsgQuantityMin, costMsg}},
		{"quantity not numeric", "lots", 5, []string{MsgQuantityNotNumeric}},
		{"cost not numeric", 5, "cheap", []string{MsgCostNotNumeric}},
		{"both missing", nil, nil, []string{MsgQuantityMin, costMsg}},
		{"boundary", 1, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateValues(tt.qty, tt.cost, rules))
		})
	}
}

func TestValidate_Line(t *testing.T) {
	l := line("v1", 0, "-1", "5")
	assert.Equal(t, []string{MsgQuantityMin}, Validate(l, testRules()))

	l.ReceivedQuantity = types.AmountFromInt(4)
	assert.Empty(t, Validate(l, testRules()))
}

func TestRules_CostMessageWithoutUnit(t *testing.T) {
	rules := DefaultRules("")
	assert.Equal(t, []string{"Cost price must be at least 1"}, ValidateValues(2, 0, rules))
}
