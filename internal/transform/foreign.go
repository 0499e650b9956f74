package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ynabmigrate/ynabmigrate/internal/config"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// MemoFormat documents how foreign amounts are written in memos.
const MemoFormat = "[CURRENCY CODE] [AMOUNT][K][;note], e.g. \"INR 1,250;lunch\""

var (
	memoRe       = regexp.MustCompile(`^.*([A-Z]{3})\s+([0-9,.]+)(K)?(;.*)?$`)
	thousand     = decimal.NewFromInt(1000)
	maxDeviation = decimal.RequireFromString("0.20")
)

// memoAmount is a foreign amount written in a memo.
type memoAmount struct {
	Code   string
	Amount decimal.Decimal
	Note   string
}

// parseMemo extracts "<CODE> <amount>[K][;note]" from a memo.
func parseMemo(memo string) (memoAmount, bool) {
	m := memoRe.FindStringSubmatch(strings.TrimSpace(memo))
	if m == nil {
		return memoAmount{}, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return memoAmount{}, false
	}
	if m[3] == "K" {
		amount = amount.Mul(thousand)
	}
	return memoAmount{
		Code:   m[1],
		Amount: amount,
		Note:   strings.TrimSpace(strings.TrimPrefix(m[4], ";")),
	}, true
}

// foreignResolver derives true amounts for rows in foreign-currency accounts.
type foreignResolver struct {
	cfg *config.Config
}

// amount returns the row's amount in its account's currency. For foreign
// accounts the memo wins over the fallback rate; inflows come back negative.
func (f foreignResolver) amount(row model.RegisterRow) (decimal.Decimal, error) {
	base := row.Amount()
	if !f.cfg.IsForeign(row.Account) {
		return base, nil
	}

	code := f.cfg.AccountCurrency(row.Account)
	if m, ok := parseMemo(row.Memo); ok && m.Code == code {
		if row.Inflow.IsPositive() {
			return m.Amount.Neg(), nil
		}
		return m.Amount, nil
	}

	rate, ok := f.cfg.Fallback(code)
	if !ok {
		return decimal.Zero, missingForeignAmount(row, code)
	}
	return base.Mul(rate), nil
}

// note returns the memo's trailing note when the memo carries the account's
// foreign amount.
func (f foreignResolver) note(row model.RegisterRow) (string, bool) {
	if !f.cfg.IsForeign(row.Account) {
		return "", false
	}
	m, ok := parseMemo(row.Memo)
	if !ok || m.Code != f.cfg.AccountCurrency(row.Account) || m.Note == "" {
		return "", false
	}
	return m.Note, true
}

// transferAmounts resolves a corrected transfer row into the amount in the
// source account's currency and, when exactly one side is foreign, the
// amount in the destination account's currency.
func (f foreignResolver) transferAmounts(row model.RegisterRow) (decimal.Decimal, decimal.NullDecimal, error) {
	from, to := row.Account, row.Payee
	base := row.Amount()
	fromForeign, toForeign := f.cfg.IsForeign(from), f.cfg.IsForeign(to)

	switch {
	case fromForeign && toForeign:
		fromCur, toCur := f.cfg.AccountCurrency(from), f.cfg.AccountCurrency(to)
		if fromCur != toCur {
			return decimal.Zero, decimal.NullDecimal{}, ValidationError{
				Rule:        "cross-currency-transfer",
				Subject:     describeRow(row),
				Description: fmt.Sprintf("cannot transfer between %s account %q and %s account %q", fromCur, from, toCur, to),
			}
		}
		amount, err := f.resolveStrict(row, fromCur)
		return amount, decimal.NullDecimal{}, err

	case fromForeign:
		amount, err := f.resolveStrict(row, f.cfg.AccountCurrency(from))
		if err != nil {
			return decimal.Zero, decimal.NullDecimal{}, err
		}
		return amount, decimal.NewNullDecimal(base), nil

	case toForeign:
		foreign, err := f.resolveStrict(row, f.cfg.AccountCurrency(to))
		if err != nil {
			return decimal.Zero, decimal.NullDecimal{}, err
		}
		return base, decimal.NewNullDecimal(foreign), nil
	}
	return base, decimal.NullDecimal{}, nil
}

// resolveStrict converts the row's default-currency amount into code using
// the memo or the fallback rate. When both are known they must agree within
// maxDeviation.
func (f foreignResolver) resolveStrict(row model.RegisterRow, code string) (decimal.Decimal, error) {
	base := row.Amount()
	rate, hasRate := f.cfg.Fallback(code)
	m, hasMemo := parseMemo(row.Memo)
	hasMemo = hasMemo && m.Code == code

	switch {
	case hasMemo && hasRate:
		fallback := base.Mul(rate)
		if m.Amount.Sub(fallback).Abs().Div(fallback).GreaterThan(maxDeviation) {
			return decimal.Zero, ConsistencyError{
				Subject:  describeRow(row),
				Currency: code,
				Memo:     m.Amount,
				Fallback: fallback,
			}
		}
		return m.Amount, nil
	case hasMemo:
		return m.Amount, nil
	case hasRate:
		return base.Mul(rate), nil
	}
	return decimal.Zero, missingForeignAmount(row, code)
}

func missingForeignAmount(row model.RegisterRow, code string) error {
	return ConfigError{
		Subject: describeRow(row),
		Description: fmt.Sprintf("unable to determine %s amount: memo must be of form %s, or set currency_conv_fallback.%s",
			code, MemoFormat, code),
	}
}

func describeRow(row model.RegisterRow) string {
	return fmt.Sprintf("%s %s %q %s", row.Account, row.Date.Format(model.DateFormat), row.Payee, row.Amount())
}
