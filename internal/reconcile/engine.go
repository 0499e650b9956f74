// Package reconcile replays an import plan against Firefly III: entities are
// created or updated only when they differ from what the remote already has,
// and transaction groups are submitted in order with monthly balance checks.
package reconcile

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/ynabmigrate/ynabmigrate/internal/cache"
	"github.com/ynabmigrate/ynabmigrate/internal/config"
	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
	"github.com/ynabmigrate/ynabmigrate/internal/runlog"
)

// Remote is the subset of the Firefly III API the engine uses.
type Remote interface {
	About(ctx context.Context) (firefly.Resource, error)
	List(ctx context.Context, path string, query url.Values) ([]firefly.Resource, error)
	Create(ctx context.Context, path string, body any) (firefly.Resource, error)
	Update(ctx context.Context, path string, body any) (firefly.Resource, error)
	Action(ctx context.Context, path string) error
	CreateTransactionGroup(ctx context.Context, req firefly.TransactionGroupRequest) (firefly.Resource, error)
}

// Options are the run parameters of one import.
type Options struct {
	RunID string
	// MinDate and MaxDate bound the submitted groups; zero means unbounded.
	MinDate time.Time
	MaxDate time.Time
	// DryRun skips every remote call and cache write.
	DryRun bool
}

// Stats counts the outcome of one entity pass.
type Stats struct {
	Created   int
	Updated   int
	Unchanged int
}

// Report summarizes a run.
type Report struct {
	Entities    map[cache.Kind]Stats
	Imported    int // created plus duplicates
	Created     int
	Duplicates  int
	Skipped     int
	Checkpoints int
	Outcomes    []runlog.Entry
}

// Engine syncs one plan. It is not safe for concurrent use.
type Engine struct {
	remote Remote
	store  cache.Store
	cfg    *config.Config
	log    zerolog.Logger
	opts   Options
	now    func() time.Time

	snap   *cache.Snapshot
	report Report
}

// NewEngine creates an engine persisting its cache to store.
func NewEngine(remote Remote, store cache.Store, cfg *config.Config, log zerolog.Logger, opts Options) *Engine {
	return &Engine{
		remote: remote,
		store:  store,
		cfg:    cfg,
		log:    log,
		opts:   opts,
		now:    time.Now,
	}
}

// Run syncs the plan. The returned report is valid even when err is not nil.
func (e *Engine) Run(ctx context.Context, plan *model.Plan) (Report, error) {
	e.report = Report{Entities: make(map[cache.Kind]Stats)}

	if e.opts.DryRun {
		e.report.Skipped = len(plan.Groups)
		e.log.Info().Int("groups", len(plan.Groups)).Msg("dry run, skipping remote sync")
		return e.report, nil
	}

	user, err := e.remote.About(ctx)
	if err != nil {
		return e.report, fmt.Errorf("verifying connection: %w", err)
	}
	e.log.Info().Str("email", user.Text("email")).Msg("authenticated")

	snap, err := e.store.Load()
	if err != nil {
		return e.report, fmt.Errorf("loading cache: %w", err)
	}
	e.snap = snap

	steps := []struct {
		name string
		fn   func(context.Context, *model.Plan) error
	}{
		{"currencies", e.syncCurrencies},
		{"categories", e.syncCategories},
		{"budgets", e.syncBudgets},
		{"budget limits", e.syncBudgetLimits},
		{"available budgets", e.syncAvailableBudgets},
		{"asset accounts", e.syncAssetAccounts},
		{"revenue accounts", e.syncRevenueAccounts},
		{"expense accounts", e.syncExpenseAccounts},
		{"transactions", e.syncTransactions},
		{"account deactivation", e.deactivateAccounts},
	}
	for _, step := range steps {
		if err := step.fn(ctx, plan); err != nil {
			// Entities created before the failure stay cached for the next run.
			if perr := e.persist(); perr != nil {
				e.log.Error().Err(perr).Msg("failed to save cache after error")
			}
			return e.report, fmt.Errorf("syncing %s: %w", step.name, err)
		}
	}
	return e.report, nil
}

func (e *Engine) persist() error {
	if err := e.store.Save(e.snap); err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}
	return nil
}

// populate lists kind from the remote unless the cache already has it.
func (e *Engine) populate(ctx context.Context, kind cache.Kind, path string, query url.Values, key func(firefly.Resource) string) error {
	if e.snap.Populated(kind) {
		e.log.Debug().Str("kind", string(kind)).Msg("using cached listing")
		return nil
	}
	resources, err := e.remote.List(ctx, path, query)
	if err != nil {
		return fmt.Errorf("listing %s: %w", kind, err)
	}
	entries := make(map[string]firefly.Resource, len(resources))
	for _, r := range resources {
		entries[key(r)] = r
	}
	e.snap.Fill(kind, entries)
	return nil
}

func byName(r firefly.Resource) string { return r.Text("name") }

// entity is the desired state of one remote object.
type entity struct {
	key   string
	attrs Attributes
}

// upsert creates the entity when it is not cached, or updates it when it differs.
func (e *Engine) upsert(ctx context.Context, kind cache.Kind, ent entity, createPath string, updatePath func(firefly.Resource) string) error {
	stats := e.report.Entities[kind]
	defer func() { e.report.Entities[kind] = stats }()

	existing, ok := e.snap.Get(kind, ent.key)
	if !ok {
		res, err := e.remote.Create(ctx, createPath, ent.attrs)
		if err != nil {
			return fmt.Errorf("creating %s %q: %w", kind, ent.key, err)
		}
		e.snap.Put(kind, ent.key, res)
		stats.Created++
		e.log.Debug().Str("kind", string(kind)).Str("key", ent.key).Str("id", res.ID).Msg("created")
		return nil
	}

	if !NeedsUpdate(ent.attrs, existing) {
		stats.Unchanged++
		return nil
	}
	res, err := e.remote.Update(ctx, updatePath(existing), ent.attrs)
	if err != nil {
		return fmt.Errorf("updating %s %q: %w", kind, ent.key, err)
	}
	if res.ID == "" {
		res = existing
		if res.Attributes == nil {
			res.Attributes = make(map[string]any)
		}
		for k, v := range ent.attrs {
			res.Attributes[k] = v
		}
	}
	e.snap.Put(kind, ent.key, res)
	stats.Updated++
	e.log.Debug().Str("kind", string(kind)).Str("key", ent.key).Msg("updated")
	return nil
}

func (e *Engine) logStats(kind cache.Kind) {
	s := e.report.Entities[kind]
	e.log.Info().
		Str("kind", string(kind)).
		Int("created", s.Created).
		Int("updated", s.Updated).
		Int("unchanged", s.Unchanged).
		Int("cached", len(e.snap.Keys(kind))).
		Msg("synced")
}

// id returns the remote id of a cached entity.
func (e *Engine) id(kind cache.Kind, key string) (string, error) {
	res, ok := e.snap.Get(kind, key)
	if !ok || res.ID == "" {
		return "", &MissingReferenceError{Kind: kind, Key: key}
	}
	return res.ID, nil
}
