// Package cache keeps the mapping from natural keys to Firefly III resources
// between runs, so a rerun can skip remote listings it already has.
package cache

import (
	"sort"

	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
)

// Kind names one class of synced entity.
type Kind string

const (
	KindCurrencies      Kind = "currencies"
	KindCategories      Kind = "categories"
	KindBudgets         Kind = "budgets"
	KindBudgetLimits    Kind = "budget_limits"
	KindAssetAccounts   Kind = "asset_accounts"
	KindRevenueAccounts Kind = "revenue_accounts"
	KindExpenseAccounts Kind = "expense_accounts"
)

// Snapshot maps kind to natural key to remote resource. A kind with a
// non-nil map has been listed from the remote, even when the map is empty.
type Snapshot struct {
	Entries map[Kind]map[string]firefly.Resource `json:"entries"`
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Entries: make(map[Kind]map[string]firefly.Resource)}
}

// Populated reports whether kind has been listed.
func (s *Snapshot) Populated(kind Kind) bool {
	return s.Entries[kind] != nil
}

// Fill replaces every entry of kind and marks it populated.
func (s *Snapshot) Fill(kind Kind, entries map[string]firefly.Resource) {
	if entries == nil {
		entries = make(map[string]firefly.Resource)
	}
	s.Entries[kind] = entries
}

// Reset forgets kind so that the next pass lists it again.
func (s *Snapshot) Reset(kind Kind) {
	delete(s.Entries, kind)
}

// Get returns the cached resource for key.
func (s *Snapshot) Get(kind Kind, key string) (firefly.Resource, bool) {
	r, ok := s.Entries[kind][key]
	return r, ok
}

// Put stores res under key, marking kind populated.
func (s *Snapshot) Put(kind Kind, key string, res firefly.Resource) {
	if s.Entries[kind] == nil {
		s.Entries[kind] = make(map[string]firefly.Resource)
	}
	s.Entries[kind][key] = res
}

// Keys returns the cached keys of kind in sorted order.
func (s *Snapshot) Keys(kind Kind) []string {
	keys := make([]string, 0, len(s.Entries[kind]))
	for k := range s.Entries[kind] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
