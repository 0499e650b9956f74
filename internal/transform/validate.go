package transform

import (
	"fmt"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// Validate enforces the canonical-model invariants on a built plan.
func Validate(plan *model.Plan) []ValidationError {
	var errs []ValidationError

	assets := make(map[string]bool, len(plan.AssetAccounts))
	for _, a := range plan.AssetAccounts {
		assets[a.Name] = true
	}
	revenue := setOf(plan.RevenueAccounts)
	expense := setOf(plan.ExpenseAccounts)

	for gi, g := range plan.Groups {
		subject := fmt.Sprintf("group %d %s", gi, g.Date().Format(model.DateFormat))

		// Groups are never empty.
		if len(g.Legs) == 0 {
			errs = append(errs, ValidationError{Rule: "non-empty-group", Subject: subject, Description: "group has no legs"})
			continue
		}

		for li, leg := range g.Legs {
			legSubject := fmt.Sprintf("%s leg %d", subject, li)

			// Amounts are strictly positive; direction lives in the leg kind.
			if !leg.Meta().Amount.IsPositive() {
				errs = append(errs, ValidationError{
					Rule:        "positive-amount",
					Subject:     legSubject,
					Description: fmt.Sprintf("amount %s is not positive", leg.Meta().Amount),
				})
			}

			switch l := leg.(type) {
			case model.Withdrawal:
				errs = append(errs, checkAccount(legSubject, "account", l.Account, assets)...)
				errs = append(errs, checkAccount(legSubject, "expense account", l.Payee, expense)...)
			case model.Deposit:
				errs = append(errs, checkAccount(legSubject, "account", l.Account, assets)...)
				errs = append(errs, checkAccount(legSubject, "revenue account", l.Payee, revenue)...)
			case model.Transfer:
				errs = append(errs, checkAccount(legSubject, "source account", l.From, assets)...)
				errs = append(errs, checkAccount(legSubject, "destination account", l.To, assets)...)
				if l.From == l.To {
					errs = append(errs, ValidationError{
						Rule:        "distinct-transfer-accounts",
						Subject:     legSubject,
						Description: fmt.Sprintf("transfer from %q to itself", l.From),
					})
				}
				if l.ForeignAmount.Valid && !l.ForeignAmount.Decimal.IsPositive() {
					errs = append(errs, ValidationError{
						Rule:        "positive-amount",
						Subject:     legSubject,
						Description: fmt.Sprintf("foreign amount %s is not positive", l.ForeignAmount.Decimal),
					})
				}
			default:
				errs = append(errs, ValidationError{
					Rule:        "leg-kind",
					Subject:     legSubject,
					Description: fmt.Sprintf("unsupported leg %T", leg),
				})
			}
		}
	}
	return errs
}

func checkAccount(subject, role, name string, known map[string]bool) []ValidationError {
	if known[name] {
		return nil
	}
	return []ValidationError{{
		Rule:        "known-account",
		Subject:     subject,
		Description: fmt.Sprintf("unknown %s %q", role, name),
	}}
}

func setOf(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
