package receiving

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stockreceipt/internal/core/types"
)

// Violation messages. They are shown to operators verbatim.
const (
	MsgQuantityMin        = "Quantity must be at least 1"
	MsgQuantityNotNumeric = "Quantity must be a number"
	MsgCostNotNumeric     = "Cost price must be a number"
)

// Rules holds the line constraints.
type Rules struct {
	MinQuantity  decimal.Decimal
	MinUnitCost  decimal.Decimal
	CurrencyUnit string
}

// DefaultRules returns the standard constraints: quantity and cost of at least 1.
func DefaultRules(currencyUnit string) Rules {
	return Rules{
		MinQuantity:  decimal.NewFromInt(1),
		MinUnitCost:  decimal.NewFromInt(1),
		CurrencyUnit: currencyUnit,
	}
}

func (r Rules) costMessage() string {
	if r.CurrencyUnit == "" {
		return fmt.Sprintf("Cost price must be at least %s", r.MinUnitCost)
	}
	return fmt.Sprintf("Cost price must be at least %s %s", r.MinUnitCost, r.CurrencyUnit)
}

// ValidateValues checks a quantity and a unit cost given in any loosely typed form.
// Numeric-looking strings are coerced first. The result is empty when both are valid;
// quantity violations come before cost violations.
func ValidateValues(quantity, cost any, rules Rules) []string {
	return validateAmounts(types.CoerceAmount(quantity), types.CoerceAmount(cost), rules)
}

// Validate checks a single line.
func Validate(line ReceivedLine, rules Rules) []string {
	return validateAmounts(line.ReceivedQuantity, line.UnitCostPrice, rules)
}

func validateAmounts(qty, cost types.Amount, rules Rules) []string {
	var violations []string

	switch {
	case qty.IsSet() && !qty.IsNumeric():
		violations = append(violations, MsgQuantityNotNumeric)
	case !qty.IsNumeric() || qty.LessThan(rules.MinQuantity):
		violations = append(violations, MsgQuantityMin)
	}

	switch {
	case cost.IsSet() && !cost.IsNumeric():
		violations = append(violations, MsgCostNotNumeric)
	case !cost.IsNumeric() || cost.LessThan(rules.MinUnitCost):
		violations = append(violations, rules.costMessage())
	}

	return violations
}
