package reconcile

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/ynabmigrate/ynabmigrate/internal/cache"
	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

func (e *Engine) syncCategories(ctx context.Context, plan *model.Plan) error {
	if err := e.populate(ctx, cache.KindCategories, "/api/v1/categories", nil, byName); err != nil {
		return err
	}
	for _, name := range plan.Categories {
		ent := entity{key: name, attrs: Attributes{"name": name}}
		if err := e.upsert(ctx, cache.KindCategories, ent, "/api/v1/categories", resourcePath("/api/v1/categories")); err != nil {
			return err
		}
	}
	e.logStats(cache.KindCategories)
	return e.persist()
}

// syncBudgets tolerates HTTP 500 on create and update: Firefly III has been
// seen to store the budget and still fail the request. Budgets are listed
// again afterwards to pick up whatever it did store.
func (e *Engine) syncBudgets(ctx context.Context, plan *model.Plan) error {
	if err := e.populate(ctx, cache.KindBudgets, "/api/v1/budgets", nil, byName); err != nil {
		return err
	}
	relist := false
	for _, b := range plan.Budgets {
		ent := entity{key: b.Name, attrs: Attributes{"name": b.Name, "active": b.Active}}
		err := e.upsert(ctx, cache.KindBudgets, ent, "/api/v1/budgets", resourcePath("/api/v1/budgets"))
		if firefly.IsStatus(err, http.StatusInternalServerError) {
			e.log.Warn().Err(err).Str("budget", b.Name).Msg("ignoring server error on budget")
			relist = true
			continue
		}
		if err != nil {
			return err
		}
	}
	if relist {
		e.snap.Reset(cache.KindBudgets)
		if err := e.populate(ctx, cache.KindBudgets, "/api/v1/budgets", nil, byName); err != nil {
			return err
		}
	}
	e.logStats(cache.KindBudgets)
	return e.persist()
}

func (e *Engine) syncBudgetLimits(ctx context.Context, plan *model.Plan) error {
	if e.cfg.SkipBudgetLimits {
		e.log.Info().Msg("skipping budget limits as configured")
		return nil
	}

	if !e.snap.Populated(cache.KindBudgetLimits) {
		entries := make(map[string]firefly.Resource)
		for _, name := range e.snap.Keys(cache.KindBudgets) {
			budgetID, err := e.id(cache.KindBudgets, name)
			if err != nil {
				return err
			}
			limits, err := e.remote.List(ctx, "/api/v1/budgets/"+budgetID+"/limits", nil)
			if err != nil {
				return fmt.Errorf("listing limits of budget %q: %w", name, err)
			}
			for _, l := range limits {
				entries[remoteLimitKey(name, l)] = l
			}
		}
		e.snap.Fill(cache.KindBudgetLimits, entries)
	}

	for _, l := range plan.BudgetLimits {
		budgetID, err := e.id(cache.KindBudgets, l.Budget)
		if err != nil {
			return err
		}
		ent := entity{
			key: l.Key(),
			attrs: Attributes{
				"budget_id": budgetID,
				"start":     firefly.Date(l.Start),
				"end":       firefly.Date(l.End),
				"amount":    l.Amount,
			},
		}
		createPath := "/api/v1/budgets/" + budgetID + "/limits"
		updatePath := func(r firefly.Resource) string { return createPath + "/" + r.ID }
		if err := e.upsert(ctx, cache.KindBudgetLimits, ent, createPath, updatePath); err != nil {
			return err
		}
	}
	e.logStats(cache.KindBudgetLimits)
	return e.persist()
}

// remoteLimitKey rebuilds a limit's natural key from its remote dates.
func remoteLimitKey(budget string, r firefly.Resource) string {
	return budget + "|" + dayOf(r.Text("start")) + "|" + dayOf(r.Text("end"))
}

func dayOf(s string) string {
	if len(s) > len(model.DateFormat) {
		return s[:len(model.DateFormat)]
	}
	return s
}

func (e *Engine) syncAvailableBudgets(context.Context, *model.Plan) error {
	e.log.Info().Msg("skipped available budgets, they depend on carried-over inflows")
	return nil
}

func (e *Engine) syncAssetAccounts(ctx context.Context, plan *model.Plan) error {
	if err := e.populate(ctx, cache.KindAssetAccounts, "/api/v1/accounts", url.Values{"type": {"asset"}}, byName); err != nil {
		return err
	}
	for _, acc := range plan.AssetAccounts {
		attrs, err := e.assetAttributes(acc)
		if err != nil {
			return err
		}
		ent := entity{key: acc.Name, attrs: attrs}
		if err := e.upsert(ctx, cache.KindAssetAccounts, ent, "/api/v1/accounts", resourcePath("/api/v1/accounts")); err != nil {
			return err
		}
	}
	e.logStats(cache.KindAssetAccounts)
	return e.persist()
}

func (e *Engine) assetAttributes(acc model.Account) (Attributes, error) {
	currencyID, err := e.id(cache.KindCurrencies, acc.Currency)
	if err != nil {
		return nil, err
	}
	attrs := Attributes{
		"name":              acc.Name,
		"active":            true,
		"type":              "asset",
		"account_role":      acc.Role.FireflyRole(),
		"currency_id":       currencyID,
		"include_net_worth": true,
	}
	// Firefly III ignores the opening date unless the balance is non-zero.
	if !acc.OpeningBalance.IsZero() {
		attrs["opening_balance"] = acc.OpeningBalance
		attrs["opening_balance_date"] = firefly.Date(acc.OpeningDate)
	}
	if acc.Role == model.RoleCreditCard {
		attrs["credit_card_type"] = "monthlyFull"
		attrs["monthly_payment_date"] = firefly.Date(acc.MonthlyPaymentDate)
	}
	return attrs, nil
}

func (e *Engine) syncRevenueAccounts(ctx context.Context, plan *model.Plan) error {
	return e.syncPayeeAccounts(ctx, cache.KindRevenueAccounts, "revenue", plan.RevenueAccounts)
}

func (e *Engine) syncExpenseAccounts(ctx context.Context, plan *model.Plan) error {
	return e.syncPayeeAccounts(ctx, cache.KindExpenseAccounts, "expense", plan.ExpenseAccounts)
}

func (e *Engine) syncPayeeAccounts(ctx context.Context, kind cache.Kind, accountType string, names []string) error {
	if err := e.populate(ctx, kind, "/api/v1/accounts", url.Values{"type": {accountType}}, byName); err != nil {
		return err
	}
	for _, name := range names {
		ent := entity{key: name, attrs: Attributes{
			"name":              name,
			"active":            true,
			"type":              accountType,
			"include_net_worth": true,
		}}
		if err := e.upsert(ctx, kind, ent, "/api/v1/accounts", resourcePath("/api/v1/accounts")); err != nil {
			return err
		}
	}
	e.logStats(kind)
	return e.persist()
}

// deactivateAccounts marks accounts configured inactive as such once their
// transactions are in.
func (e *Engine) deactivateAccounts(ctx context.Context, plan *model.Plan) error {
	var names []string
	for _, acc := range plan.AssetAccounts {
		if acc.Inactive {
			names = append(names, acc.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	for _, name := range names {
		res, ok := e.snap.Get(cache.KindAssetAccounts, name)
		if !ok {
			return &MissingReferenceError{Kind: cache.KindAssetAccounts, Key: name}
		}
		if _, known := res.Attributes["active"]; known && !res.Bool("active") {
			continue
		}
		attrs := Attributes{"name": name, "active": false}
		if _, err := e.remote.Update(ctx, "/api/v1/accounts/"+res.ID, attrs); err != nil {
			return fmt.Errorf("deactivating %q: %w", name, err)
		}
		if res.Attributes == nil {
			res.Attributes = make(map[string]any)
		}
		res.Attributes["active"] = false
		e.snap.Put(cache.KindAssetAccounts, name, res)
		e.log.Info().Str("account", name).Msg("deactivated account")
	}
	return e.persist()
}

func resourcePath(base string) func(firefly.Resource) string {
	return func(r firefly.Resource) string { return base + "/" + r.ID }
}
