package reconcile

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynabmigrate/ynabmigrate/internal/cache"
	"github.com/ynabmigrate/ynabmigrate/internal/config"
	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// startedEngine returns an engine ready to run single passes.
func startedEngine(remote Remote, cfg *config.Config) *Engine {
	e := newTestEngine(remote, &cache.MemoryStore{}, cfg, Options{})
	e.snap = cache.NewSnapshot()
	e.report = Report{Entities: make(map[cache.Kind]Stats)}
	return e
}

func budgetPlan(active bool) *model.Plan {
	return &model.Plan{Budgets: []model.Budget{{Name: "Groceries", Active: active}}}
}

func TestSyncBudgets_IdenticalIssuesNoUpdate(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("/api/v1/budgets", map[string]any{"name": "Groceries", "active": true})

	e := startedEngine(remote, config.Default())
	require.NoError(t, e.syncBudgets(context.Background(), budgetPlan(true)))

	assert.Empty(t, remote.writes())
	assert.Equal(t, Stats{Unchanged: 1}, e.report.Entities[cache.KindBudgets])
}

func TestSyncBudgets_ChangedIssuesOneUpdate(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("/api/v1/budgets", map[string]any{"name": "Groceries", "active": true})

	e := startedEngine(remote, config.Default())
	require.NoError(t, e.syncBudgets(context.Background(), budgetPlan(false)))

	writes := remote.writes()
	require.Len(t, writes, 1)
	assert.Equal(t, http.MethodPut, writes[0].method)
	assert.Equal(t, "/api/v1/budgets/101", writes[0].path)
	assert.Equal(t, false, writes[0].body["active"])

	res, _ := e.snap.Get(cache.KindBudgets, "Groceries")
	assert.False(t, res.Bool("active"))
}

func TestSyncBudgets_ServerErrorTolerated(t *testing.T) {
	remote := newFakeRemote()
	remote.errs["/api/v1/budgets"] = &firefly.HTTPError{Method: http.MethodPost, Path: "/api/v1/budgets", StatusCode: http.StatusInternalServerError}

	e := startedEngine(remote, config.Default())
	require.NoError(t, e.syncBudgets(context.Background(), budgetPlan(true)))

	// Listed once up front and once after the failure.
	assert.Equal(t, []string{"/api/v1/budgets", "/api/v1/budgets"}, remote.lists)
	assert.True(t, e.snap.Populated(cache.KindBudgets))
}

func TestSyncBudgets_OtherErrorsFatal(t *testing.T) {
	remote := newFakeRemote()
	remote.errs["/api/v1/budgets"] = &firefly.HTTPError{Method: http.MethodPost, Path: "/api/v1/budgets", StatusCode: http.StatusBadRequest}

	e := startedEngine(remote, config.Default())
	err := e.syncBudgets(context.Background(), budgetPlan(true))
	assert.True(t, firefly.IsStatus(err, http.StatusBadRequest))
}

func TestPopulate_CachedKindSkipsListing(t *testing.T) {
	remote := newFakeRemote()
	e := startedEngine(remote, config.Default())
	e.snap.Put(cache.KindCategories, "Dining", firefly.Resource{ID: "9", Attributes: map[string]any{"name": "Dining"}})

	plan := &model.Plan{Categories: []string{"Dining", "Groceries"}}
	require.NoError(t, e.syncCategories(context.Background(), plan))

	assert.Empty(t, remote.lists)
	writes := remote.writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "Groceries", writes[0].body["name"])
	assert.Equal(t, Stats{Created: 1, Unchanged: 1}, e.report.Entities[cache.KindCategories])
}

func TestSyncBudgetLimits_Skipped(t *testing.T) {
	remote := newFakeRemote()
	cfg := config.Default()
	cfg.SkipBudgetLimits = true

	e := startedEngine(remote, cfg)
	plan := &model.Plan{BudgetLimits: []model.BudgetLimit{{Budget: "Groceries"}}}
	require.NoError(t, e.syncBudgetLimits(context.Background(), plan))
	assert.Empty(t, remote.calls)
	assert.Empty(t, remote.lists)
}

func TestSyncBudgetLimits_MatchesRemoteDates(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("/api/v1/budgets", map[string]any{"name": "Groceries", "active": true})
	remote.seed("/api/v1/budgets/101/limits", map[string]any{
		"budget_id": "101",
		"start":     "2021-01-01T00:00:00+00:00",
		"end":       "2021-01-31T23:59:59+00:00",
		"amount":    "200.000000000000",
	})

	e := startedEngine(remote, config.Default())
	require.NoError(t, e.syncBudgets(context.Background(), budgetPlan(true)))

	plan := &model.Plan{BudgetLimits: []model.BudgetLimit{
		{Budget: "Groceries", Amount: decimalOf("200"), Start: jan(1), End: jan(31)},
		{Budget: "Groceries", Amount: decimalOf("250"), Start: feb(1), End: feb(28)},
	}}
	require.NoError(t, e.syncBudgetLimits(context.Background(), plan))

	writes := remote.writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "/api/v1/budgets/101/limits", writes[0].path)
	assert.Equal(t, "2021-02-01", writes[0].body["start"])
	assert.Equal(t, "250", writes[0].body["amount"])
}

func TestSyncBudgetLimits_UnknownBudget(t *testing.T) {
	e := startedEngine(newFakeRemote(), config.Default())
	e.snap.Fill(cache.KindBudgetLimits, nil)
	plan := &model.Plan{BudgetLimits: []model.BudgetLimit{{Budget: "Travel", Start: jan(1), End: jan(31)}}}

	err := e.syncBudgetLimits(context.Background(), plan)
	var missing *MissingReferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Travel", missing.Key)
}

func TestSyncCurrencies_MissingAccountCurrency(t *testing.T) {
	remote := newFakeRemote()
	remote.seed("/api/v1/currencies", map[string]any{"code": "USD", "enabled": true, "default": true})
	cfg := config.Default()
	cfg.KeepCurrencies = nil

	e := startedEngine(remote, cfg)
	plan := &model.Plan{AssetAccounts: []model.Account{{Name: "Rupees", Currency: "INR"}}}
	err := e.syncCurrencies(context.Background(), plan)

	var missing *MissingReferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "INR", missing.Key)
}
