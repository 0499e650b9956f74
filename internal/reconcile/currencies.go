package reconcile

import (
	"context"

	"github.com/ynabmigrate/ynabmigrate/internal/cache"
	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

func byCode(r firefly.Resource) string { return r.Text("code") }

// syncCurrencies makes the configured currency the default and leaves only
// the default, account and kept currencies enabled.
func (e *Engine) syncCurrencies(ctx context.Context, plan *model.Plan) error {
	if err := e.populate(ctx, cache.KindCurrencies, "/api/v1/currencies", nil, byCode); err != nil {
		return err
	}

	keep := map[string]bool{e.cfg.Currency: true}
	for _, code := range e.cfg.KeepCurrencies {
		keep[code] = true
	}
	for _, acc := range plan.AssetAccounts {
		keep[acc.Currency] = true
	}
	for code := range keep {
		if _, ok := e.snap.Get(cache.KindCurrencies, code); !ok {
			return &MissingReferenceError{Kind: cache.KindCurrencies, Key: code}
		}
	}

	stats := e.report.Entities[cache.KindCurrencies]
	for _, code := range e.snap.Keys(cache.KindCurrencies) {
		res, _ := e.snap.Get(cache.KindCurrencies, code)
		if res.Attributes == nil {
			res.Attributes = make(map[string]any)
		}
		changed := false

		if code == e.cfg.Currency && !res.Bool("default") {
			if err := e.remote.Action(ctx, "/api/v1/currencies/"+code+"/default"); err != nil {
				return err
			}
			res.Attributes["default"] = true
			changed = true
			e.clearDefault(code)
		}
		switch enabled := res.Bool("enabled"); {
		case keep[code] && !enabled:
			if err := e.remote.Action(ctx, "/api/v1/currencies/"+code+"/enable"); err != nil {
				return err
			}
			res.Attributes["enabled"] = true
			changed = true
		case !keep[code] && enabled:
			if err := e.remote.Action(ctx, "/api/v1/currencies/"+code+"/disable"); err != nil {
				return err
			}
			res.Attributes["enabled"] = false
			changed = true
		}

		if changed {
			e.snap.Put(cache.KindCurrencies, code, res)
			stats.Updated++
		} else {
			stats.Unchanged++
		}
	}
	e.report.Entities[cache.KindCurrencies] = stats
	e.logStats(cache.KindCurrencies)
	return e.persist()
}

// clearDefault unmarks every cached currency but code as the default.
func (e *Engine) clearDefault(code string) {
	for _, other := range e.snap.Keys(cache.KindCurrencies) {
		res, _ := e.snap.Get(cache.KindCurrencies, other)
		if other == code || !res.Bool("default") {
			continue
		}
		attrs := make(map[string]any, len(res.Attributes))
		for k, v := range res.Attributes {
			attrs[k] = v
		}
		attrs["default"] = false
		res.Attributes = attrs
		e.snap.Put(cache.KindCurrencies, other, res)
	}
}
