package ynab

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// MonthFormat is the layout of the budget export's Month column.
const MonthFormat = "January 2006"

const (
	budgetNumFields          = 7
	colBudgetMonth           = 0
	colBudgetCategory        = 1
	colBudgetMaster          = 2
	colBudgetSub             = 3
	colBudgetBudgeted        = 4
	colBudgetOutflows        = 5
	colBudgetCategoryBalance = 6
)

// ReadBudget parses a YNAB4 budget export.
func ReadBudget(r io.Reader) ([]model.BudgetRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = budgetNumFields
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading budget CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([]model.BudgetRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseBudgetRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseBudgetRow(rec []string) (model.BudgetRow, error) {
	month, err := time.Parse(MonthFormat, rec[colBudgetMonth])
	if err != nil {
		return model.BudgetRow{}, fmt.Errorf("parsing month %q: %w", rec[colBudgetMonth], err)
	}

	budgeted, err := ParseAmount(rec[colBudgetBudgeted])
	if err != nil {
		return model.BudgetRow{}, fmt.Errorf("budgeted: %w", err)
	}
	outflows, err := ParseAmount(rec[colBudgetOutflows])
	if err != nil {
		return model.BudgetRow{}, fmt.Errorf("outflows: %w", err)
	}
	balance, err := ParseAmount(rec[colBudgetCategoryBalance])
	if err != nil {
		return model.BudgetRow{}, fmt.Errorf("category balance: %w", err)
	}

	return model.BudgetRow{
		Month: month,
		CategoryFields: model.CategoryFields{
			Category:       rec[colBudgetCategory],
			MasterCategory: rec[colBudgetMaster],
			SubCategory:    rec[colBudgetSub],
		},
		Budgeted:        budgeted,
		Outflows:        outflows,
		CategoryBalance: balance,
	}, nil
}
