package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

func validPlan() *model.Plan {
	return &model.Plan{
		AssetAccounts:   []model.Account{{Name: "A"}, {Name: "B"}},
		RevenueAccounts: []string{"Boss"},
		ExpenseAccounts: []string{"Shop"},
		Groups: []model.TransactionGroup{{
			Legs: []model.Leg{
				model.Withdrawal{LegMeta: model.LegMeta{Date: day(2), Amount: dec("5")}, Account: "A", Payee: "Shop"},
				model.Deposit{LegMeta: model.LegMeta{Date: day(2), Amount: dec("7")}, Account: "B", Payee: "Boss"},
				model.Transfer{LegMeta: model.LegMeta{Date: day(2), Amount: dec("1")}, From: "A", To: "B"},
			},
		}},
	}
}

func rules(errs []ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Rule)
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, Validate(validPlan()))
}

func TestValidate_EmptyGroup(t *testing.T) {
	p := validPlan()
	p.Groups = append(p.Groups, model.TransactionGroup{})
	assert.Equal(t, []string{"non-empty-group"}, rules(Validate(p)))
}

func TestValidate_NonPositiveAmount(t *testing.T) {
	p := validPlan()
	p.Groups[0].Legs[0] = model.Withdrawal{LegMeta: model.LegMeta{Amount: decimal.Zero}, Account: "A", Payee: "Shop"}
	assert.Equal(t, []string{"positive-amount"}, rules(Validate(p)))
}

func TestValidate_UnknownAccounts(t *testing.T) {
	p := validPlan()
	p.Groups[0].Legs[0] = model.Withdrawal{LegMeta: model.LegMeta{Amount: dec("1")}, Account: "Z", Payee: "Boss"}
	errs := Validate(p)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Description, `"Z"`)
	assert.Contains(t, errs[1].Description, `expense account "Boss"`)
}

func TestValidate_SelfTransfer(t *testing.T) {
	p := validPlan()
	p.Groups[0].Legs[2] = model.Transfer{
		LegMeta:       model.LegMeta{Amount: dec("1")},
		From:          "A",
		To:            "A",
		ForeignAmount: decimal.NewNullDecimal(decimal.Zero),
	}
	assert.Equal(t, []string{"distinct-transfer-accounts", "positive-amount"}, rules(Validate(p)))
}
