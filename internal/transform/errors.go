package transform

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError describes a canonical-model rule a row or leg violates.
type ValidationError struct {
	Rule        string
	Subject     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.Subject, e.Description)
}

// ConfigError reports data the configuration cannot account for.
type ConfigError struct {
	Subject     string
	Description string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("config [%s]: %s", e.Subject, e.Description)
}

// ConsistencyError reports a memo amount that disagrees with the fallback conversion.
type ConsistencyError struct {
	Subject  string
	Currency string
	Memo     decimal.Decimal
	Fallback decimal.Decimal
}

func (e ConsistencyError) Error() string {
	return fmt.Sprintf("consistency [%s]: memo amount %s %s differs from fallback %s %s by more than %s%%",
		e.Subject, e.Currency, e.Memo, e.Currency, e.Fallback.StringFixed(2), maxDeviation.Shift(2))
}
