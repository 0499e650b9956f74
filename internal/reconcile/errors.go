package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ynabmigrate/ynabmigrate/internal/cache"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// BalanceMismatchError means an account's remote balance at a month end
// differs from the export's running balance.
type BalanceMismatchError struct {
	Account  string
	Month    time.Time
	Currency string
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *BalanceMismatchError) Error() string {
	return fmt.Sprintf("running balance for %s at end of %s does not match: YNAB says %s, Firefly III says %s",
		e.Account, e.Month.Format("January 2006"),
		model.FormatAmount(e.Expected, e.Currency), model.FormatAmount(e.Actual, e.Currency))
}

// MissingReferenceError means a leg or entity refers to something that was never synced.
type MissingReferenceError struct {
	Kind cache.Kind
	Key  string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("no %s named %q in Firefly III", e.Kind, e.Key)
}
