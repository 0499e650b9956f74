package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LegKind names the variant of a Leg.
type LegKind string

const (
	KindWithdrawal LegKind = "withdrawal"
	KindDeposit    LegKind = "deposit"
	KindTransfer   LegKind = "transfer"
)

// Leg is one side of a double-entry transaction. It is implemented only by
// Withdrawal, Deposit and Transfer; callers switch on the concrete type.
type Leg interface {
	Kind() LegKind
	Meta() LegMeta
	isLeg()
}

// LegMeta holds the fields shared by every leg variant.
type LegMeta struct {
	Date        time.Time
	Amount      decimal.Decimal // always positive
	Description string
	Notes       string
	Tags        []string
	Reconciled  bool
	// ExternalID is the source running balance. Same-day rows of equal amount
	// in different accounts would otherwise hash to the same remote transaction.
	ExternalID string
}

// Meta returns the shared leg fields.
func (m LegMeta) Meta() LegMeta { return m }

// Withdrawal moves money from an asset account to a payee.
type Withdrawal struct {
	LegMeta
	Account  string
	Payee    string
	Budget   string
	Category string
}

// Deposit moves money from a payee into an asset account.
type Deposit struct {
	LegMeta
	Account  string
	Payee    string
	Budget   string
	Category string
}

// Transfer moves money between two asset accounts.
type Transfer struct {
	LegMeta
	From string
	To   string
	// ForeignAmount is valid when exactly one side is a foreign-currency account.
	ForeignAmount decimal.NullDecimal
}

func (Withdrawal) Kind() LegKind { return KindWithdrawal }
func (Deposit) Kind() LegKind    { return KindDeposit }
func (Transfer) Kind() LegKind   { return KindTransfer }

func (Withdrawal) isLeg() {}
func (Deposit) isLeg()    {}
func (Transfer) isLeg()   {}

// TransactionGroup is a set of legs submitted to the remote ledger together.
type TransactionGroup struct {
	Title string
	Legs  []Leg
	// Net is outflow minus inflow summed over the source rows.
	Net decimal.Decimal
}

// Date returns the date of the first leg.
func (g TransactionGroup) Date() time.Time {
	if len(g.Legs) == 0 {
		return time.Time{}
	}
	return g.Legs[0].Meta().Date
}
