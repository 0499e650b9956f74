package model

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// KnownCurrency reports whether code is an ISO 4217 currency code.
func KnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// FormatAmount renders value with the currency's symbol and grouping, e.g. "$1,234.50".
// Unknown codes fall back to "CODE value".
func FormatAmount(value decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return code + " " + value.StringFixed(2)
	}
	minor := value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
