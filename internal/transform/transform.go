// Package transform turns YNAB4 register and budget rows into the canonical
// double-entry model: transfers are corrected and de-duplicated, splits are
// regrouped, foreign amounts resolved and categories validated.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ynabmigrate/ynabmigrate/internal/config"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// ImportTag returns the tag attached to every leg of a run started at now.
func ImportTag(now time.Time) string {
	return "import-" + now.Format("2006-01-02T15-04")
}

// Builder produces a Plan from one export.
type Builder struct {
	cfg     *config.Config
	tag     string
	log     zerolog.Logger
	foreign foreignResolver
}

// NewBuilder creates a Builder tagging legs with importTag.
func NewBuilder(cfg *config.Config, importTag string, log zerolog.Logger) *Builder {
	return &Builder{
		cfg:     cfg,
		tag:     importTag,
		log:     log,
		foreign: foreignResolver{cfg: cfg},
	}
}

// legCounts tallies emitted legs by kind.
type legCounts map[model.LegKind]int

// Build canonicalizes the export. register must be in display order (see ynab.SortRegister).
func (b *Builder) Build(register []model.RegisterRow, budgets []model.BudgetRow) (*model.Plan, error) {
	resolver := newCategoryResolver(b.cfg, budgets)

	accounts, err := b.buildAccounts(register)
	if err != nil {
		return nil, err
	}
	revenue, expense := b.payeeAccounts(register)

	plan := &model.Plan{
		AssetAccounts:   accounts,
		RevenueAccounts: revenue,
		ExpenseAccounts: expense,
		Categories:      resolver.Categories(),
		Budgets:         resolver.Budgets(),
		BudgetLimits:    resolver.limits(budgets),
		Balances:        monthEndBalances(register),
	}

	var rows []model.RegisterRow
	for _, row := range register {
		if row.IsEmpty() || row.IsStartingBalance() {
			continue
		}
		rows = append(rows, row)
	}

	pairs := newTransferPairs()
	counts := legCounts{}
	for _, cluster := range groupRows(rows) {
		group, err := b.buildGroup(cluster, resolver, pairs, counts)
		if err != nil {
			return nil, err
		}
		// A group whose only row was the second half of a transfer is dropped.
		if len(group.Legs) > 0 {
			plan.Groups = append(plan.Groups, group)
		}
	}
	sortGroups(plan.Groups)

	if verrs := Validate(plan); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			errs[i] = ve
		}
		return nil, fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}

	b.log.Info().
		Int("asset_accounts", len(plan.AssetAccounts)).
		Int("revenue_accounts", len(plan.RevenueAccounts)).
		Int("expense_accounts", len(plan.ExpenseAccounts)).
		Int("budgets", len(plan.Budgets)).
		Int("budget_limits", len(plan.BudgetLimits)).
		Int("deposits", counts[model.KindDeposit]).
		Int("withdrawals", counts[model.KindWithdrawal]).
		Int("transfers", counts[model.KindTransfer]).
		Int("groups", len(plan.Groups)).
		Str("tag", b.tag).
		Msg("built import plan")
	return plan, nil
}

// sortGroups orders groups by date, then by largest inflow first.
func sortGroups(groups []model.TransactionGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		di, dj := groups[i].Date(), groups[j].Date()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return groups[i].Net.LessThan(groups[j].Net)
	})
}

func (b *Builder) buildGroup(cluster []model.RegisterRow, resolver *categoryResolver, pairs *transferPairs, counts legCounts) (model.TransactionGroup, error) {
	group := model.TransactionGroup{Title: b.cfg.EmptyDescription, Net: decimal.Zero}

	for _, row := range cluster {
		group.Net = group.Net.Add(row.Net())

		budget, category, err := resolver.resolve(row)
		if err != nil {
			return model.TransactionGroup{}, err
		}

		// Taken before correction: a rewritten row loses its balance.
		externalID := row.RunningBalance.StringFixed(2)

		leg, err := b.buildLeg(row, budget, category, externalID, pairs)
		if err != nil {
			return model.TransactionGroup{}, err
		}
		if leg == nil {
			continue
		}
		counts[leg.Kind()]++
		group.Legs = append(group.Legs, leg)
	}
	return group, nil
}

// buildLeg returns nil for the discarded half of a transfer pair.
func (b *Builder) buildLeg(row model.RegisterRow, budget, category, externalID string, pairs *transferPairs) (model.Leg, error) {
	if row.IsTransfer() {
		row = CorrectTransfer(row)
		if !pairs.keep(row) {
			return nil, nil
		}
		amount, foreign, err := b.foreign.transferAmounts(row)
		if err != nil {
			return nil, err
		}
		return model.Transfer{
			LegMeta:       b.meta(row, amount, externalID),
			From:          row.Account,
			To:            row.Payee,
			ForeignAmount: foreign,
		}, nil
	}

	amount, err := b.foreign.amount(row)
	if err != nil {
		return nil, err
	}
	meta := b.meta(row, amount, externalID)

	switch {
	case row.Outflow.IsPositive():
		return model.Withdrawal{
			LegMeta:  meta,
			Account:  row.Account,
			Payee:    b.payee(row),
			Budget:   budget,
			Category: category,
		}, nil
	case row.Inflow.IsPositive():
		return model.Deposit{
			LegMeta:  meta,
			Account:  row.Account,
			Payee:    b.payee(row),
			Budget:   budget,
			Category: category,
		}, nil
	}
	return nil, ValidationError{
		Rule:        "leg-kind",
		Subject:     describeRow(row),
		Description: "row has neither a positive outflow nor a positive inflow",
	}
}

func (b *Builder) meta(row model.RegisterRow, amount decimal.Decimal, externalID string) model.LegMeta {
	tags := []string{b.tag}
	if row.Flag != "" {
		tags = append(tags, row.Flag)
	}
	return model.LegMeta{
		Date:        row.Date,
		Amount:      amount.Abs(),
		Description: b.description(row),
		Notes:       b.notes(row),
		Tags:        tags,
		Reconciled:  row.Cleared == "R",
		ExternalID:  externalID,
	}
}

func (b *Builder) description(row model.RegisterRow) string {
	if !b.cfg.MemoToDescription {
		return b.cfg.EmptyDescription
	}
	memo := strings.TrimSpace(row.Memo)
	if row.IsSplit() {
		if _, rest, ok := strings.Cut(memo, ")"); ok {
			memo = strings.TrimSpace(rest)
		}
	}
	if note, ok := b.foreign.note(row); ok {
		memo = note
	}
	if memo == "" {
		return b.cfg.EmptyDescription
	}
	return memo
}

func (b *Builder) notes(row model.RegisterRow) string {
	if b.cfg.MemoToDescription {
		return ""
	}
	return strings.TrimSpace(row.Memo)
}
