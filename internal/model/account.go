package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountRole classifies asset accounts.
type AccountRole string

const (
	RoleDefault    AccountRole = "default"
	RoleCreditCard AccountRole = "credit_card"
	RoleSavings    AccountRole = "savings"
	RoleCash       AccountRole = "cash"
)

// Valid reports whether r is a known role. The empty role counts as default.
func (r AccountRole) Valid() bool {
	switch r {
	case "", RoleDefault, RoleCreditCard, RoleSavings, RoleCash:
		return true
	}
	return false
}

// FireflyRole returns the account_role value Firefly III expects.
func (r AccountRole) FireflyRole() string {
	switch r {
	case RoleCreditCard:
		return "ccAsset"
	case RoleSavings:
		return "savingAsset"
	case RoleCash:
		return "cashWalletAsset"
	default:
		return "defaultAsset"
	}
}

// Account is an asset account to create in the destination ledger.
type Account struct {
	Name           string
	OpeningDate    time.Time
	OpeningBalance decimal.Decimal // signed
	Currency       string
	Role           AccountRole
	// MonthlyPaymentDate is only set for credit cards.
	MonthlyPaymentDate time.Time
	Inactive           bool
}

// Budget is a named spending envelope.
type Budget struct {
	Name   string
	Active bool
}

// BudgetLimit allocates an amount to a budget for one calendar month.
type BudgetLimit struct {
	Budget string
	Amount decimal.Decimal
	Start  time.Time
	End    time.Time
}

// Key returns the natural key used to match a limit against the remote ledger.
func (l BudgetLimit) Key() string {
	return BudgetLimitKey(l.Budget, l.Start, l.End)
}

// BudgetLimitKey builds "name|2006-01-02|2006-01-31".
func BudgetLimitKey(budget string, start, end time.Time) string {
	return budget + "|" + start.Format(DateFormat) + "|" + end.Format(DateFormat)
}

// DateFormat is the calendar date layout used on the wire and in keys.
const DateFormat = "2006-01-02"
