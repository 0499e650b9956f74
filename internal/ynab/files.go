package ynab

import (
	"fmt"
	"os"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// Export is a parsed pair of register and budget files.
type Export struct {
	Register []model.RegisterRow
	Budget   []model.BudgetRow
}

// Load reads the register and budget exports from disk.
func Load(registerPath, budgetPath, dateFormat string) (*Export, error) {
	rf, err := os.Open(registerPath)
	if err != nil {
		return nil, fmt.Errorf("opening register: %w", err)
	}
	defer rf.Close()

	register, err := ReadRegister(rf, dateFormat)
	if err != nil {
		return nil, fmt.Errorf("reading register %s: %w", registerPath, err)
	}

	bf, err := os.Open(budgetPath)
	if err != nil {
		return nil, fmt.Errorf("opening budget: %w", err)
	}
	defer bf.Close()

	budget, err := ReadBudget(bf)
	if err != nil {
		return nil, fmt.Errorf("reading budget %s: %w", budgetPath, err)
	}

	return &Export{Register: register, Budget: budget}, nil
}
