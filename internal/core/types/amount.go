// Package types provides value types shared across layers.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type amountState uint8

const (
	amountEmpty amountState = iota
	amountNumeric
	amountInvalid
)

// Amount is an operator-entered numeric value (quantity or price).
//
// It keeps the raw input next to the coerced decimal so a value that failed
// coercion can still be shown back on its row with a violation.
// The zero value is an empty (unset) amount.
type Amount struct {
	raw   string
	value decimal.Decimal
	state amountState
}

// NewAmount wraps an already numeric value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{raw: d.String(), value: d, state: amountNumeric}
}

// AmountFromInt is a shorthand for whole quantities.
func AmountFromInt(n int64) Amount {
	return NewAmount(decimal.NewFromInt(n))
}

// MustAmount parses s and panics when it is not numeric.
// Use only for constants and tests.
func MustAmount(s string) Amount {
	a := ParseAmount(s)
	if !a.IsNumeric() {
		panic(fmt.Sprintf("types: %q is not numeric", s))
	}
	return a
}

// ParseAmount coerces text input. Blank input yields an empty amount,
// numeric-looking input a numeric one, anything else an invalid one.
func ParseAmount(s string) Amount {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Amount{}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{raw: s, state: amountInvalid}
	}
	return Amount{raw: trimmed, value: d, state: amountNumeric}
}

// CoerceAmount converts loosely typed input (decoded JSON, spreadsheet cells) to an Amount.
func CoerceAmount(v any) Amount {
	switch x := v.(type) {
	case nil:
		return Amount{}
	case Amount:
		return x
	case decimal.Decimal:
		return NewAmount(x)
	case int:
		return AmountFromInt(int64(x))
	case int32:
		return AmountFromInt(int64(x))
	case int64:
		return AmountFromInt(x)
	case float32:
		return NewAmount(decimal.NewFromFloat32(x))
	case float64:
		return NewAmount(decimal.NewFromFloat(x))
	case json.Number:
		return ParseAmount(x.String())
	case string:
		return ParseAmount(x)
	default:
		return Amount{raw: fmt.Sprint(v), state: amountInvalid}
	}
}

// IsSet reports whether anything was entered.
func (a Amount) IsSet() bool { return a.state != amountEmpty }

// IsNumeric reports whether the input coerced to a number.
func (a Amount) IsNumeric() bool { return a.state == amountNumeric }

// Decimal returns the coerced value, or zero when the amount is empty or invalid.
func (a Amount) Decimal() decimal.Decimal {
	if a.state != amountNumeric {
		return decimal.Zero
	}
	return a.value
}

// Raw returns the input as entered.
func (a Amount) Raw() string { return a.raw }

// IsZero reports whether the amount is numeric and equal to zero.
func (a Amount) IsZero() bool { return a.IsNumeric() && a.value.IsZero() }

// IsPositive reports whether the amount is numeric and greater than zero.
func (a Amount) IsPositive() bool { return a.IsNumeric() && a.value.IsPositive() }

// LessThan compares numeric amounts; non-numeric amounts are never less than anything.
func (a Amount) LessThan(d decimal.Decimal) bool {
	return a.IsNumeric() && a.value.LessThan(d)
}

func (a Amount) String() string {
	if a.state == amountNumeric {
		return a.value.String()
	}
	return a.raw
}

// MarshalJSON encodes numeric amounts as JSON numbers, empty as null,
// and invalid input as the original string.
func (a Amount) MarshalJSON() ([]byte, error) {
	switch a.state {
	case amountNumeric:
		return []byte(a.value.String()), nil
	case amountInvalid:
		return json.Marshal(a.raw)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON number, a string, or null. Strings that are
// not numeric decode to an invalid amount rather than failing the whole body.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}

	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}
		*a = ParseAmount(s)
		return nil
	}

	parsed := ParseAmount(string(data))
	if !parsed.IsNumeric() {
		return fmt.Errorf("decode amount: unexpected token %s", data)
	}
	*a = parsed
	return nil
}
