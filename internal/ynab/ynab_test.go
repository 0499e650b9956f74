package ynab

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registerHeader = `"Account","Flag","Check Number","Date","Payee","Category","Master Category","Sub Category","Memo","Outflow","Inflow","Cleared","Running Balance"` + "\n"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$1,234.50", "1234.5"},
		{"€0.00", "0"},
		{"-$12.00", "-12"},
		{"($3.10)", "-3.1"},
		{"", "0"},
		{"42", "42"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		require.NoError(t, err, "ParseAmount(%q)", tt.in)
		assert.Equal(t, tt.want, got.String(), "ParseAmount(%q)", tt.in)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	_, err := ParseAmount("n/a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no amount")
}

func TestReadRegister_Testdata(t *testing.T) {
	f, err := os.Open("../../testdata/register.csv")
	require.NoError(t, err)
	defer f.Close()

	rows, err := ReadRegister(f, "01/02/2006")
	require.NoError(t, err)
	require.Len(t, rows, 16)

	// Same-day rows: largest inflow first.
	assert.Equal(t, "Checking", rows[0].Account)
	assert.Equal(t, "1000", rows[0].Inflow.String())
	assert.True(t, rows[0].IsStartingBalance())

	var visa []string
	for _, r := range rows {
		if r.Account == "Visa" {
			visa = append(visa, r.RunningBalance.String())
		}
	}
	assert.Equal(t, []string{"0", "-200", "0"}, visa)

	last := rows[len(rows)-1]
	assert.Equal(t, 2021, last.Date.Year())
	assert.Equal(t, 2, int(last.Date.Month()))
	assert.Equal(t, 3, last.Date.Day())
}

func TestReadRegister_SameDayOrder(t *testing.T) {
	csv := registerHeader +
		`"A","","","03/01/2021","Shop","","","","","$5.00","$0.00","","$95.00"` + "\n" +
		`"A","","","03/01/2021","Boss","","","","","$0.00","$50.00","","$100.00"` + "\n"

	rows, err := ReadRegister(strings.NewReader(csv), "01/02/2006")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Boss", rows[0].Payee)
	assert.Equal(t, "Shop", rows[1].Payee)
}

func TestReadRegister_EmptyFile(t *testing.T) {
	rows, err := ReadRegister(strings.NewReader(registerHeader), "01/02/2006")
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestReadRegister_BadDate(t *testing.T) {
	csv := registerHeader + `"A","","","2021-03-01","Shop","","","","","$5.00","$0.00","","$95.00"` + "\n"
	_, err := ReadRegister(strings.NewReader(csv), "01/02/2006")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadRegister_BadAmount(t *testing.T) {
	csv := registerHeader + `"A","","","03/01/2021","Shop","","","","","five","$0.00","","$95.00"` + "\n"
	_, err := ReadRegister(strings.NewReader(csv), "01/02/2006")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outflow")
}

func TestReadBudget_Testdata(t *testing.T) {
	f, err := os.Open("../../testdata/budget.csv")
	require.NoError(t, err)
	defer f.Close()

	rows, err := ReadBudget(f)
	require.NoError(t, err)
	require.Len(t, rows, 8)

	assert.Equal(t, 1, rows[0].Month.Day())
	assert.Equal(t, "Groceries", rows[0].SubCategory)
	assert.Equal(t, "200", rows[0].Budgeted.String())
	assert.Equal(t, "-80", rows[0].Outflows.String())
	assert.True(t, rows[3].IsHidden())
	assert.True(t, rows[4].IsPreYNAB())
	assert.Equal(t, "February", rows[5].Month.Month().String())
}

func TestReadBudget_BadMonth(t *testing.T) {
	csv := "Month,Category,Master Category,Sub Category,Budgeted,Outflows,Category Balance\n" +
		"2021-01,A:B,A,B,$1.00,$0.00,$1.00\n"
	_, err := ReadBudget(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing month")
}

func TestLoad(t *testing.T) {
	export, err := Load("../../testdata/register.csv", "../../testdata/budget.csv", "01/02/2006")
	require.NoError(t, err)
	assert.Len(t, export.Register, 16)
	assert.Len(t, export.Budget, 8)

	_, err = Load("../../testdata/missing.csv", "../../testdata/budget.csv", "01/02/2006")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening register")
}
