package transform

import (
	"github.com/shopspring/decimal"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// InvalidBalance replaces the running balance of a rewritten transfer row.
var InvalidBalance = decimal.NewFromInt(-1)

// CorrectTransfer rewrites a transfer row so that Account is the side money
// leaves and Payee is the receiving account.
func CorrectTransfer(row model.RegisterRow) model.RegisterRow {
	counter := row.TransferAccount()
	if row.Outflow.IsPositive() {
		row.Payee = counter
		return row
	}

	row.Payee = row.Account
	row.Account = counter
	row.Outflow, row.Inflow = row.Inflow, row.Outflow
	row.RunningBalance = InvalidBalance
	return row
}

type transferKey struct {
	first, second string
	date          string
	amount        string
}

// newTransferKey builds the pairing key of a corrected transfer row.
func newTransferKey(row model.RegisterRow) transferKey {
	a, b := row.Account, row.Payee
	if b < a {
		a, b = b, a
	}
	return transferKey{
		first:  a,
		second: b,
		date:   row.Date.Format(model.DateFormat),
		amount: row.Net().Abs().String(),
	}
}

// transferPairs tracks how often each transfer key has been seen. YNAB logs
// every transfer once per account, so sightings alternate keep and discard.
// Three or more real transfers with one key on one day cannot be told apart.
type transferPairs struct {
	seen map[transferKey]int
}

func newTransferPairs() *transferPairs {
	return &transferPairs{seen: make(map[transferKey]int)}
}

// keep records a sighting of the corrected row and reports whether it is the
// first half of a pair.
func (p *transferPairs) keep(row model.RegisterRow) bool {
	key := newTransferKey(row)
	n := p.seen[key]
	p.seen[key] = n + 1
	return n%2 == 0
}
