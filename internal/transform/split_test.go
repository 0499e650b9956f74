package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

func split(row model.RegisterRow, memo string) model.RegisterRow {
	row.Memo = memo
	return row
}

func TestGroupRows_SplitsFirst(t *testing.T) {
	rows := []model.RegisterRow{
		outflow("A", day(1), "Shop", "5", "995"),
		split(outflow("A", day(2), "Costco", "30", "915"), "(Split 1/2) food"),
		outflow("B", day(2), "Cafe", "3", "97"),
		split(outflow("A", day(2), "Costco", "50", "915"), "(Split 2/2) soap"),
	}

	groups := groupRows(rows)
	require.Len(t, groups, 3)
	require.Len(t, groups[0], 2)
	assert.Equal(t, "Costco", groups[0][0].Payee)
	assert.Equal(t, "Shop", groups[1][0].Payee)
	assert.Equal(t, "Cafe", groups[2][0].Payee)
}

func TestGroupRows_SeparatesByBalance(t *testing.T) {
	rows := []model.RegisterRow{
		split(outflow("A", day(2), "X", "1", "10"), "(Split 1/2)"),
		split(outflow("A", day(2), "Y", "1", "20"), "(Split 1/2)"),
		split(outflow("B", day(2), "Z", "1", "10"), "(Split 1/2)"),
	}
	assert.Len(t, groupRows(rows), 3)
}

func TestBuild_SplitGroup(t *testing.T) {
	cfg := testConfig()
	budgets := []model.BudgetRow{
		budgetRow(day(1), "Everyday", "Groceries", "100"),
		budgetRow(day(1), "Everyday", "Household", "0"),
	}
	rows := []model.RegisterRow{
		split(withCategory(outflow("A", day(2), "Costco", "30", "920"), "Everyday", "Groceries"), "(Split 1/2) food"),
		split(withCategory(outflow("A", day(2), "Costco", "50", "920"), "Everyday", "Household"), "(Split 2/2) soap"),
	}

	plan, err := newTestBuilder(cfg).Build(rows, budgets)
	require.NoError(t, err)
	require.Len(t, plan.Groups, 1)

	g := plan.Groups[0]
	require.Len(t, g.Legs, 2)
	w0 := g.Legs[0].(model.Withdrawal)
	w1 := g.Legs[1].(model.Withdrawal)
	assert.Equal(t, "food", w0.Description)
	assert.Equal(t, "Groceries", w0.Category)
	assert.Equal(t, "soap", w1.Description)
	assert.Equal(t, "Household", w1.Budget)
	assert.Equal(t, "920.00", w0.ExternalID)
	assert.True(t, g.Net.Equal(dec("80")))
}

func TestBuild_SplitTransferWinsOverDuplicate(t *testing.T) {
	cfg := testConfig()
	budgets := []model.BudgetRow{budgetRow(day(1), "Everyday", "Groceries", "100")}
	rows := []model.RegisterRow{
		// B's unsplit view of the transfer part of A's split.
		inflow("B", day(2), "Transfer : A", "20", "120"),
		split(withCategory(outflow("A", day(2), "Store", "30", "950"), "Everyday", "Groceries"), "(Split 1/2)"),
		split(outflow("A", day(2), "Transfer : B", "20", "950"), "(Split 2/2)"),
	}

	plan, err := newTestBuilder(cfg).Build(rows, budgets)
	require.NoError(t, err)
	require.Len(t, plan.Groups, 1)
	require.Len(t, plan.Groups[0].Legs, 2)
	tr, ok := plan.Groups[0].Legs[1].(model.Transfer)
	require.True(t, ok)
	assert.Equal(t, "A", tr.From)
	assert.Equal(t, "950.00", tr.ExternalID)
}
