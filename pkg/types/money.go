package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (pence/cents). It travels over
// JSON as a decimal number with two places so clients keep working in major units.
type Money int64

var hundred = decimal.NewFromInt(100)

// MoneyFromDecimal converts a major-unit decimal to minor units, rounding half away from zero.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Mul(hundred).Round(0).IntPart())
}

// ParseMoney parses a major-unit string such as "12.5" or "0". Blank input is zero.
func ParseMoney(raw string) (Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", raw, err)
	}
	return MoneyFromDecimal(d), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Mul scales the amount by an integer quantity.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// Percent returns pct percent of the amount, rounded to the minor unit.
func (m Money) Percent(pct decimal.Decimal) Money {
	return MoneyFromDecimal(m.Decimal().Mul(pct).Div(hundred))
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = 0
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid money value: %w", err)
	}
	*m = MoneyFromDecimal(d)
	return nil
}
