package transform

import (
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

type splitKey struct {
	account string
	date    string
	balance string
}

// groupRows clusters split rows by (account, date, running balance) and
// returns those clusters, in first-seen order, ahead of one group per
// remaining row. Split transfers therefore win over their unsplit twin.
func groupRows(rows []model.RegisterRow) [][]model.RegisterRow {
	var order []splitKey
	splits := make(map[splitKey][]model.RegisterRow)
	var singles [][]model.RegisterRow

	for _, row := range rows {
		if !row.IsSplit() {
			singles = append(singles, []model.RegisterRow{row})
			continue
		}
		key := splitKey{
			account: row.Account,
			date:    row.Date.Format(model.DateFormat),
			balance: row.RunningBalance.String(),
		}
		if _, ok := splits[key]; !ok {
			order = append(order, key)
		}
		splits[key] = append(splits[key], row)
	}

	groups := make([][]model.RegisterRow, 0, len(order)+len(singles))
	for _, key := range order {
		groups = append(groups, splits[key])
	}
	return append(groups, singles...)
}
