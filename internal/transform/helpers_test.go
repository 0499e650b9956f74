package transform

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ynabmigrate/ynabmigrate/internal/config"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

const testTag = "import-2021-03-01T10-00"

func day(d int) time.Time {
	return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func outflow(account string, date time.Time, payee, amount, balance string) model.RegisterRow {
	return model.RegisterRow{
		Account:        account,
		Date:           date,
		Payee:          payee,
		Outflow:        dec(amount),
		Inflow:         decimal.Zero,
		RunningBalance: dec(balance),
	}
}

func inflow(account string, date time.Time, payee, amount, balance string) model.RegisterRow {
	return model.RegisterRow{
		Account:        account,
		Date:           date,
		Payee:          payee,
		Outflow:        decimal.Zero,
		Inflow:         dec(amount),
		RunningBalance: dec(balance),
	}
}

func withCategory(row model.RegisterRow, master, sub string) model.RegisterRow {
	row.CategoryFields = model.CategoryFields{
		Category:       master + ":" + sub,
		MasterCategory: master,
		SubCategory:    sub,
	}
	return row
}

func budgetRow(month time.Time, master, sub, budgeted string) model.BudgetRow {
	return model.BudgetRow{
		Month: model.MonthStart(month),
		CategoryFields: model.CategoryFields{
			Category:       master + ":" + sub,
			MasterCategory: master,
			SubCategory:    sub,
		},
		Budgeted: dec(budgeted),
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Accounts = map[string]config.AccountConfig{}
	cfg.CurrencyConvFallback = map[string]decimal.Decimal{}
	return cfg
}

func newTestBuilder(cfg *config.Config) *Builder {
	return NewBuilder(cfg, testTag, zerolog.Nop())
}
