package ynab

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountRe = regexp.MustCompile(`^([^0-9]*)([0-9,.]+)\)?$`)

// ParseAmount parses a currency cell such as "$1,234.50", "-$12.00" or "(€3.10)".
// An empty cell is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, fmt.Errorf("invalid value with no amount: %q", s)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if strings.ContainsAny(m[1], "-(") {
		d = d.Neg()
	}
	return d, nil
}
