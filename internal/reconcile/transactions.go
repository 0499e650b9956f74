package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ynabmigrate/ynabmigrate/internal/cache"
	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
	"github.com/ynabmigrate/ynabmigrate/internal/id"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
	"github.com/ynabmigrate/ynabmigrate/internal/runlog"
)

// syncTransactions submits groups in order. Before the first group of a new
// month the previous month is checkpointed, unless some of its groups were
// filtered out by date.
func (e *Engine) syncTransactions(ctx context.Context, plan *model.Plan) error {
	seq := id.NewSequencer()
	filtered := make(map[time.Time]bool)
	var current time.Time

	for _, g := range plan.Groups {
		groupID := seq.Next(g.Date())
		month := model.MonthStart(g.Date())
		if !current.IsZero() && !month.Equal(current) {
			if err := e.checkpoint(ctx, plan, current, filtered[current]); err != nil {
				return err
			}
		}
		current = month

		if e.outOfRange(g.Date()) {
			filtered[month] = true
			e.report.Skipped++
			e.record(groupID, g, runlog.OutcomeSkipped, "", "outside date filter")
			continue
		}
		if err := e.submit(ctx, groupID, g); err != nil {
			return err
		}
	}

	if !current.IsZero() {
		if err := e.checkpoint(ctx, plan, current, filtered[current]); err != nil {
			return err
		}
	}
	e.log.Info().
		Int("imported", e.report.Imported).
		Int("created", e.report.Created).
		Int("duplicates", e.report.Duplicates).
		Int("skipped", e.report.Skipped).
		Msg("synced transactions")
	return nil
}

func (e *Engine) outOfRange(d time.Time) bool {
	if !e.opts.MinDate.IsZero() && d.Before(e.opts.MinDate) {
		return true
	}
	return !e.opts.MaxDate.IsZero() && d.After(e.opts.MaxDate)
}

// submit creates one group. Legs the remote reports as duplicates of earlier
// imports count as imported; any other rejection is fatal.
func (e *Engine) submit(ctx context.Context, groupID string, g model.TransactionGroup) error {
	req := firefly.TransactionGroupRequest{
		ErrorIfDuplicateHash: true,
		GroupTitle:           g.Title,
	}
	for i, leg := range g.Legs {
		split, err := e.split(leg)
		if err != nil {
			return fmt.Errorf("group %s leg %d: %w", groupID, i, err)
		}
		req.Transactions = append(req.Transactions, split)
	}

	res, err := e.remote.CreateTransactionGroup(ctx, req)
	if err == nil {
		e.report.Created++
		e.report.Imported++
		e.record(groupID, g, runlog.OutcomeCreated, res.ID, "")
		e.log.Debug().Str("group", groupID).Str("id", res.ID).Msg("created transaction group")
		return nil
	}

	v, ok := firefly.AsValidationErrors(err)
	if !ok {
		e.record(groupID, g, runlog.OutcomeFailed, "", err.Error())
		return fmt.Errorf("group %s: %w", groupID, err)
	}
	c := firefly.ClassifyTransactionErrors(v)
	if c.Fatal() {
		e.record(groupID, g, runlog.OutcomeFailed, "", err.Error())
		return fmt.Errorf("group %s rejected: %w", groupID, err)
	}

	var dups []string
	for _, leg := range c.DuplicateLegs() {
		dups = append(dups, strconv.FormatInt(c.Duplicates[leg], 10))
	}
	if len(dups) < len(g.Legs) {
		var fresh []string
		for i := range g.Legs {
			if _, ok := c.Duplicates[i]; !ok {
				fresh = append(fresh, id.FormatLegID(groupID, i))
			}
		}
		e.log.Warn().Str("group", groupID).Strs("not_duplicate", fresh).
			Msg("only some legs reported as duplicates")
	}
	e.report.Duplicates++
	e.report.Imported++
	e.record(groupID, g, runlog.OutcomeDuplicate, strings.Join(dups, " "), "")
	e.log.Info().Str("group", groupID).Strs("duplicate_of", dups).Msg("ignoring already imported transaction group")
	return nil
}

// split converts one leg into its request form.
func (e *Engine) split(leg model.Leg) (firefly.TransactionSplit, error) {
	m := leg.Meta()
	s := firefly.TransactionSplit{
		Type:        string(leg.Kind()),
		Date:        firefly.Date(m.Date),
		Amount:      m.Amount,
		Description: m.Description,
		Tags:        m.Tags,
		Notes:       m.Notes,
		Reconciled:  m.Reconciled,
		ExternalID:  m.ExternalID,
	}

	var err error
	switch l := leg.(type) {
	case model.Withdrawal:
		if s.SourceID, err = e.id(cache.KindAssetAccounts, l.Account); err != nil {
			return s, err
		}
		if s.DestinationID, err = e.id(cache.KindExpenseAccounts, l.Payee); err != nil {
			return s, err
		}
		err = e.classify(&s, l.Budget, l.Category)
	case model.Deposit:
		if s.SourceID, err = e.id(cache.KindRevenueAccounts, l.Payee); err != nil {
			return s, err
		}
		if s.DestinationID, err = e.id(cache.KindAssetAccounts, l.Account); err != nil {
			return s, err
		}
		err = e.classify(&s, l.Budget, l.Category)
	case model.Transfer:
		if s.SourceID, err = e.id(cache.KindAssetAccounts, l.From); err != nil {
			return s, err
		}
		if s.DestinationID, err = e.id(cache.KindAssetAccounts, l.To); err != nil {
			return s, err
		}
		if l.ForeignAmount.Valid {
			amount := l.ForeignAmount.Decimal
			s.ForeignAmount = &amount
			s.ForeignCurrencyCode = e.cfg.AccountCurrency(l.To)
		}
	default:
		err = fmt.Errorf("unsupported leg %T", leg)
	}
	return s, err
}

func (e *Engine) classify(s *firefly.TransactionSplit, budget, category string) error {
	var err error
	if budget != "" {
		if s.BudgetID, err = e.id(cache.KindBudgets, budget); err != nil {
			return err
		}
	}
	if category != "" {
		if s.CategoryID, err = e.id(cache.KindCategories, category); err != nil {
			return err
		}
	}
	return nil
}

// checkpoint compares every default-currency account's balance at the end
// of month with the export's running balance.
func (e *Engine) checkpoint(ctx context.Context, plan *model.Plan, month time.Time, filtered bool) error {
	if filtered {
		e.log.Info().Str("month", month.Format("2006-01")).Msg("skipping balance check for filtered month")
		return nil
	}
	expected := plan.Balances.Month(month)
	if len(expected) == 0 {
		return nil
	}

	end := model.MonthEnd(month)
	accounts, err := e.remote.List(ctx, "/api/v1/accounts", url.Values{
		"type": {"asset"},
		"date": {end.Format(model.DateFormat)},
	})
	if err != nil {
		return fmt.Errorf("fetching balances for %s: %w", month.Format("2006-01"), err)
	}
	actual := make(map[string]firefly.Resource, len(accounts))
	for _, a := range accounts {
		actual[a.Text("name")] = a
	}

	var errs []error
	for _, acc := range plan.AssetAccounts {
		want, ok := expected[acc.Name]
		if !ok || e.cfg.IsForeign(acc.Name) {
			continue
		}
		res, ok := actual[acc.Name]
		if !ok {
			return &MissingReferenceError{Kind: cache.KindAssetAccounts, Key: acc.Name}
		}
		have, err := res.Decimal("current_balance")
		if err != nil {
			return fmt.Errorf("balance of %q: %w", acc.Name, err)
		}
		if !have.Equal(want) {
			errs = append(errs, &BalanceMismatchError{
				Account:  acc.Name,
				Month:    month,
				Currency: acc.Currency,
				Expected: want,
				Actual:   have,
			})
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	e.report.Checkpoints++
	e.log.Info().Str("month", month.Format("2006-01")).Msg("balances match")
	return nil
}

func (e *Engine) record(groupID string, g model.TransactionGroup, outcome runlog.Outcome, remoteID, details string) {
	if details == "" {
		details = describe(g)
	}
	e.report.Outcomes = append(e.report.Outcomes, runlog.Entry{
		Timestamp: e.now().UTC(),
		RunID:     e.opts.RunID,
		GroupID:   groupID,
		Date:      g.Date(),
		Outcome:   outcome,
		RemoteID:  remoteID,
		Details:   details,
	})
}

func describe(g model.TransactionGroup) string {
	total := decimal.Zero
	for _, leg := range g.Legs {
		total = total.Add(leg.Meta().Amount)
	}
	return fmt.Sprintf("%d legs, %s, %s", len(g.Legs), total.StringFixed(2), g.Legs[0].Meta().Description)
}
