package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ynabmigrate/ynabmigrate/internal/config"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// Income in YNAB4 lands in one of these; they exist as both budgets and categories.
const (
	AvailableThisMonth = "Available this month"
	AvailableNextMonth = "Available next month"
)

const hiddenSuffix = " (hidden)"

// categoryResolver maps raw category text onto the known budgets and categories.
type categoryResolver struct {
	cfg        *config.Config
	categories map[string]bool
	budgets    map[string]model.Budget
}

// newCategoryResolver derives the known categories and budgets from the budget export.
func newCategoryResolver(cfg *config.Config, rows []model.BudgetRow) *categoryResolver {
	r := &categoryResolver{
		cfg:        cfg,
		categories: make(map[string]bool),
		budgets:    make(map[string]model.Budget),
	}
	for _, row := range rows {
		if c := r.category(row.CategoryFields); c != "" && !row.IsHidden() {
			r.categories[c] = true
		}
		if row.IsPreYNAB() {
			continue
		}
		if b := r.budget(row.CategoryFields); b != "" {
			r.budgets[b] = model.Budget{Name: b, Active: !row.IsHidden()}
		}
	}
	for _, name := range []string{AvailableThisMonth, AvailableNextMonth} {
		r.categories[name] = true
		r.budgets[name] = model.Budget{Name: name, Active: true}
	}
	return r
}

func (r *categoryResolver) category(c model.CategoryFields) string {
	return strings.TrimSpace(c.Field(r.cfg.CategoryField))
}

// budget returns the budget name for the category columns. Hidden
// categories look like "Master ` Name ` 12" and become "Name (hidden)".
func (r *categoryResolver) budget(c model.CategoryFields) string {
	name := c.Field(r.cfg.BudgetField)
	if c.IsHidden() {
		if parts := strings.Split(name, "`"); len(parts) > 1 {
			name = parts[1]
		}
		name = strings.TrimSpace(name) + hiddenSuffix
	}
	name = strings.TrimSpace(name)
	if mapped, ok := r.cfg.BudgetMapping[c.Category]; ok {
		return mapped
	}
	return name
}

// resolve returns the validated budget and category of a register row.
// Rows in hidden budgets carry no category.
func (r *categoryResolver) resolve(row model.RegisterRow) (budget, category string, err error) {
	budget = r.budget(row.CategoryFields)
	if budget == "" {
		return "", "", nil
	}
	b, ok := r.budgets[budget]
	if !ok {
		return "", "", ValidationError{
			Rule:        "known-budget",
			Subject:     describeRow(row),
			Description: fmt.Sprintf("unable to process transaction with unknown budget %q", budget),
		}
	}
	if !b.Active {
		return budget, "", nil
	}
	category = r.category(row.CategoryFields)
	if category != "" && !r.categories[category] {
		return "", "", ValidationError{
			Rule:        "known-category",
			Subject:     describeRow(row),
			Description: fmt.Sprintf("unable to process transaction with unknown category %q", category),
		}
	}
	return budget, category, nil
}

// Categories returns the known categories, sorted.
func (r *categoryResolver) Categories() []string {
	out := make([]string, 0, len(r.categories))
	for c := range r.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Budgets returns the known budgets, sorted by name.
func (r *categoryResolver) Budgets() []model.Budget {
	out := make([]model.Budget, 0, len(r.budgets))
	for _, b := range r.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// limits returns one monthly limit per budget and month. Categories mapped
// onto the same budget add up.
func (r *categoryResolver) limits(rows []model.BudgetRow) []model.BudgetLimit {
	var out []model.BudgetLimit
	index := make(map[string]int)
	for _, row := range rows {
		if row.IsPreYNAB() || row.Budgeted.IsZero() {
			continue
		}
		name := r.budget(row.CategoryFields)
		if name == "" {
			continue
		}
		start := model.MonthStart(row.Month)
		limit := model.BudgetLimit{
			Budget: name,
			Amount: row.Budgeted,
			Start:  start,
			End:    model.MonthEnd(start),
		}
		if i, ok := index[limit.Key()]; ok {
			out[i].Amount = out[i].Amount.Add(limit.Amount)
			continue
		}
		index[limit.Key()] = len(out)
		out = append(out, limit)
	}
	return out
}
