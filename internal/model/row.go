package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryField names one of the YNAB category columns.
type CategoryField string

const (
	FieldCategory       CategoryField = "Category"
	FieldMasterCategory CategoryField = "Master Category"
	FieldSubCategory    CategoryField = "Sub Category"
)

// Valid reports whether f names a known category column.
func (f CategoryField) Valid() bool {
	switch f {
	case FieldCategory, FieldMasterCategory, FieldSubCategory:
		return true
	}
	return false
}

// HiddenMasterCategory is the master category YNAB assigns to hidden categories.
const HiddenMasterCategory = "Hidden Categories"

const (
	transferMarker    = "Transfer : "
	compositeTransfer = " / Transfer : "
	splitMarker       = "(Split "
	startingBalance   = "Starting Balance"
	preYNABPrefix     = "Pre-YNAB Debt"
)

// CategoryFields holds the three category columns shared by register and budget rows.
type CategoryFields struct {
	Category       string // "Master:Sub"
	MasterCategory string
	SubCategory    string
}

// Field returns the value of the named column.
func (c CategoryFields) Field(f CategoryField) string {
	switch f {
	case FieldCategory:
		return c.Category
	case FieldMasterCategory:
		return c.MasterCategory
	case FieldSubCategory:
		return c.SubCategory
	}
	return ""
}

// IsHidden reports whether the row belongs to a hidden category.
func (c CategoryFields) IsHidden() bool {
	return c.MasterCategory == HiddenMasterCategory
}

// RegisterRow is one row of the YNAB register export.
type RegisterRow struct {
	Account string
	Flag    string
	Date    time.Time
	Payee   string
	CategoryFields
	Memo           string
	Outflow        decimal.Decimal
	Inflow         decimal.Decimal
	Cleared        string
	RunningBalance decimal.Decimal
}

// IsTransfer reports whether the payee marks a transfer between two accounts.
func (r RegisterRow) IsTransfer() bool {
	return strings.Contains(r.Payee, transferMarker)
}

// TransferAccount extracts the counter-account from "Transfer : X" or "Y / Transfer : X".
func (r RegisterRow) TransferAccount() string {
	payee := r.Payee
	if i := strings.Index(payee, compositeTransfer); i >= 0 {
		return payee[i+len(compositeTransfer):]
	}
	if i := strings.Index(payee, transferMarker); i >= 0 {
		return payee[i+len(transferMarker):]
	}
	return ""
}

// IsSplit reports whether the row is one category line of a split transaction.
func (r RegisterRow) IsSplit() bool {
	return strings.Contains(r.Memo, splitMarker)
}

// IsStartingBalance reports whether the row carries an account's opening balance.
func (r RegisterRow) IsStartingBalance() bool {
	return r.Payee == startingBalance
}

// IsEmpty reports whether neither outflow nor inflow is set.
func (r RegisterRow) IsEmpty() bool {
	return r.Outflow.IsZero() && r.Inflow.IsZero()
}

// Net returns outflow minus inflow. Same-day rows sort by it, largest inflow first.
func (r RegisterRow) Net() decimal.Decimal {
	return r.Outflow.Sub(r.Inflow)
}

// Amount returns whichever of outflow or inflow is set.
func (r RegisterRow) Amount() decimal.Decimal {
	if !r.Outflow.IsZero() {
		return r.Outflow
	}
	return r.Inflow
}

// BudgetRow is one row of the YNAB budget export.
type BudgetRow struct {
	Month time.Time // first day of the month
	CategoryFields
	Budgeted        decimal.Decimal
	Outflows        decimal.Decimal
	CategoryBalance decimal.Decimal
}

// IsPreYNAB reports whether the row tracks debt from before YNAB. These never become budgets.
func (b BudgetRow) IsPreYNAB() bool {
	return strings.HasPrefix(b.Category, preYNABPrefix)
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}
