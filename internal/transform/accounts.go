package transform

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// UnknownPayee names the counterparty of rows with a blank payee.
const UnknownPayee = "(unknown payee)"

// defaultPaymentDate is used for credit cards with no configured or inferable date; only the day matters.
var defaultPaymentDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// buildAccounts creates one asset account per account name in the register.
func (b *Builder) buildAccounts(rows []model.RegisterRow) ([]model.Account, error) {
	names := make(map[string]bool)
	opening := make(map[string]model.RegisterRow)
	for _, row := range rows {
		names[row.Account] = true
		if row.IsStartingBalance() {
			if _, ok := opening[row.Account]; !ok {
				opening[row.Account] = row
			}
		}
	}

	var configured []string
	for name := range b.cfg.Accounts {
		configured = append(configured, name)
	}
	sort.Strings(configured)
	for _, name := range configured {
		if !names[name] {
			return nil, ConfigError{
				Subject:     name,
				Description: "unknown account with no transactions in config",
			}
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	accounts := make([]model.Account, 0, len(sorted))
	for _, name := range sorted {
		acc, err := b.buildAccount(name, opening, rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (b *Builder) buildAccount(name string, opening map[string]model.RegisterRow, rows []model.RegisterRow) (model.Account, error) {
	ac := b.cfg.Account(name)
	acc := model.Account{
		Name:     name,
		Currency: b.cfg.AccountCurrency(name),
		Role:     ac.Role,
		Inactive: ac.Inactive,
	}
	if acc.Role == "" {
		acc.Role = model.RoleDefault
	}

	if start, ok := opening[name]; ok {
		acc.OpeningDate = start.Date
		acc.OpeningBalance = start.Inflow.Sub(start.Outflow)
	} else {
		acc.OpeningDate = firstDate(name, rows)
		acc.OpeningBalance = decimal.Zero
		b.log.Warn().Str("account", name).Msg("no starting balance row, opening with zero")
	}

	if acc.Role != model.RoleCreditCard {
		return acc, nil
	}
	date, err := b.paymentDate(name, ac.MonthlyPaymentDate, rows)
	if err != nil {
		return model.Account{}, err
	}
	acc.MonthlyPaymentDate = date
	return acc, nil
}

// paymentDate resolves a credit card's monthly payment date from config, else
// from the first transfer into the card.
func (b *Builder) paymentDate(name, configured string, rows []model.RegisterRow) (time.Time, error) {
	if configured != "" {
		for _, layout := range []string{model.DateFormat, b.cfg.DateFormat} {
			if d, err := time.Parse(layout, configured); err == nil {
				return d, nil
			}
		}
		return time.Time{}, ConfigError{
			Subject:     name,
			Description: fmt.Sprintf("unable to parse monthly_payment_date %q", configured),
		}
	}
	for _, row := range rows {
		if row.IsTransfer() && row.TransferAccount() == name {
			return row.Date, nil
		}
	}
	b.log.Warn().Str("account", name).Msg("could not infer monthly payment date, defaulting to the 1st")
	return defaultPaymentDate, nil
}

func firstDate(account string, rows []model.RegisterRow) time.Time {
	for _, row := range rows {
		if row.Account == account {
			return row.Date
		}
	}
	return time.Time{}
}

// payee returns the mapped, trimmed payee of a non-transfer row.
func (b *Builder) payee(row model.RegisterRow) string {
	p := strings.TrimSpace(row.Payee)
	if mapped, ok := b.cfg.PayeeMapping[p]; ok {
		p = mapped
	}
	if p == "" {
		return UnknownPayee
	}
	return p
}

// payeeAccounts collects revenue (inflow) and expense (outflow) counterparties.
func (b *Builder) payeeAccounts(rows []model.RegisterRow) (revenue, expense []string) {
	rev := make(map[string]bool)
	exp := make(map[string]bool)
	for _, row := range rows {
		if row.IsTransfer() || row.IsStartingBalance() {
			continue
		}
		if row.Inflow.IsPositive() {
			rev[b.payee(row)] = true
		}
		if row.Outflow.IsPositive() {
			exp[b.payee(row)] = true
		}
	}
	return sortedKeys(rev), sortedKeys(exp)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// monthEndBalances records each account's last running balance per month.
// rows must be in register display order.
func monthEndBalances(rows []model.RegisterRow) model.Balances {
	balances := model.Balances{}
	for _, row := range rows {
		balances.Set(row.Date, row.Account, row.RunningBalance)
	}
	return balances
}
