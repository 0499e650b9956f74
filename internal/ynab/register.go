package ynab

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

const (
	registerNumFields = 13
	colAccount        = 0
	colFlag           = 1
	colCheckNumber    = 2 // ignored
	colDate           = 3
	colPayee          = 4
	colCategory       = 5
	colMasterCategory = 6
	colSubCategory    = 7
	colMemo           = 8
	colOutflow        = 9
	colInflow         = 10
	colCleared        = 11
	colRunningBalance = 12
)

// ReadRegister parses a YNAB4 register export. dateFormat is a Go time layout.
// Rows are returned in display order: by date, then largest inflow first.
func ReadRegister(r io.Reader, dateFormat string) ([]model.RegisterRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = registerNumFields
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading register CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([]model.RegisterRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseRegisterRow(rec, dateFormat)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	SortRegister(rows)
	return rows, nil
}

// SortRegister orders rows as the YNAB register displays them.
func SortRegister(rows []model.RegisterRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Net().LessThan(rows[j].Net())
	})
}

func parseRegisterRow(rec []string, dateFormat string) (model.RegisterRow, error) {
	date, err := time.Parse(dateFormat, rec[colDate])
	if err != nil {
		return model.RegisterRow{}, fmt.Errorf("parsing date %q: %w", rec[colDate], err)
	}

	outflow, err := ParseAmount(rec[colOutflow])
	if err != nil {
		return model.RegisterRow{}, fmt.Errorf("outflow: %w", err)
	}
	inflow, err := ParseAmount(rec[colInflow])
	if err != nil {
		return model.RegisterRow{}, fmt.Errorf("inflow: %w", err)
	}
	balance, err := ParseAmount(rec[colRunningBalance])
	if err != nil {
		return model.RegisterRow{}, fmt.Errorf("running balance: %w", err)
	}

	return model.RegisterRow{
		Account: rec[colAccount],
		Flag:    rec[colFlag],
		Date:    date,
		Payee:   rec[colPayee],
		CategoryFields: model.CategoryFields{
			Category:       rec[colCategory],
			MasterCategory: rec[colMasterCategory],
			SubCategory:    rec[colSubCategory],
		},
		Memo:           rec[colMemo],
		Outflow:        outflow,
		Inflow:         inflow,
		Cleared:        rec[colCleared],
		RunningBalance: balance,
	}, nil
}
