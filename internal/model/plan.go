package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Plan is the canonical model produced from one export, ready to be synced.
type Plan struct {
	AssetAccounts   []Account
	RevenueAccounts []string
	ExpenseAccounts []string
	Categories      []string
	Budgets         []Budget
	BudgetLimits    []BudgetLimit
	Groups          []TransactionGroup
	Balances        Balances
}

// Account returns the asset account with the given name.
func (p *Plan) Account(name string) (Account, bool) {
	for _, a := range p.AssetAccounts {
		if a.Name == name {
			return a, true
		}
	}
	return Account{}, false
}

// Balances maps a month start to each account's running balance at the end of that month.
type Balances map[time.Time]map[string]decimal.Decimal

// Set records the balance of account as of the month containing date.
func (b Balances) Set(date time.Time, account string, balance decimal.Decimal) {
	month := MonthStart(date)
	if b[month] == nil {
		b[month] = make(map[string]decimal.Decimal)
	}
	b[month][account] = balance
}

// Month returns the month-end balances of every account active in month.
func (b Balances) Month(month time.Time) map[string]decimal.Decimal {
	return b[MonthStart(month)]
}

// Months returns the recorded months in ascending order.
func (b Balances) Months() []time.Time {
	months := make([]time.Time, 0, len(b))
	for m := range b {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
