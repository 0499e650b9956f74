package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// Config represents the ynabmigrate.yaml configuration.
type Config struct {
	// Currency is the default ISO 4217 currency of the ledger.
	Currency   string `yaml:"currency"`
	DateFormat string `yaml:"date_format"` // Go layout, e.g. "01/02/2006"

	CategoryField model.CategoryField `yaml:"category_field"`
	BudgetField   model.CategoryField `yaml:"budget_field"`

	// MemoToDescription fills descriptions from memos; otherwise memos go to notes.
	MemoToDescription bool   `yaml:"memo_to_description"`
	EmptyDescription  string `yaml:"empty_description"`

	SkipBudgetLimits bool `yaml:"skip_budget_limits"`

	// KeepCurrencies stay enabled in the remote ledger besides the default and account currencies.
	KeepCurrencies []string `yaml:"keep_currencies,omitempty"`

	// CurrencyConvFallback maps a foreign currency code to units per default-currency unit.
	CurrencyConvFallback map[string]decimal.Decimal `yaml:"currency_conv_fallback,omitempty"`

	PayeeMapping  map[string]string `yaml:"payee_mapping,omitempty"`
	BudgetMapping map[string]string `yaml:"budget_mapping,omitempty"` // keyed by full category

	Accounts map[string]AccountConfig `yaml:"accounts,omitempty"`
}

// AccountConfig customizes one register account. Accounts not listed use defaults.
type AccountConfig struct {
	Currency string            `yaml:"currency,omitempty"`
	Role     model.AccountRole `yaml:"role,omitempty"`
	// MonthlyPaymentDate is inferred from transfers when empty.
	MonthlyPaymentDate string `yaml:"monthly_payment_date,omitempty"`
	Inactive           bool   `yaml:"inactive,omitempty"`
}

// Load reads a ynabmigrate.yaml file from disk, applying defaults to unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config matching a stock US-locale YNAB4 export.
func Default() *Config {
	return &Config{
		Currency:          "USD",
		DateFormat:        "01/02/2006",
		CategoryField:     model.FieldSubCategory,
		BudgetField:       model.FieldSubCategory,
		MemoToDescription: true,
		EmptyDescription:  "(empty description)",
		KeepCurrencies:    []string{"EUR"},
	}
}

// Validate checks currency codes, category fields and account roles.
func (c *Config) Validate() error {
	var errs []error
	if !model.KnownCurrency(c.Currency) {
		errs = append(errs, fmt.Errorf("unknown currency %q", c.Currency))
	}
	if !c.CategoryField.Valid() {
		errs = append(errs, fmt.Errorf("unknown category_field %q", c.CategoryField))
	}
	if !c.BudgetField.Valid() {
		errs = append(errs, fmt.Errorf("unknown budget_field %q", c.BudgetField))
	}
	for _, code := range c.KeepCurrencies {
		if !model.KnownCurrency(code) {
			errs = append(errs, fmt.Errorf("keep_currencies: unknown currency %q", code))
		}
	}
	for code, rate := range c.CurrencyConvFallback {
		if !model.KnownCurrency(code) {
			errs = append(errs, fmt.Errorf("currency_conv_fallback: unknown currency %q", code))
		}
		if !rate.IsPositive() {
			errs = append(errs, fmt.Errorf("currency_conv_fallback: rate for %s must be positive", code))
		}
	}
	for name, acc := range c.Accounts {
		if acc.Currency != "" && !model.KnownCurrency(acc.Currency) {
			errs = append(errs, fmt.Errorf("account %q: unknown currency %q", name, acc.Currency))
		}
		if !acc.Role.Valid() {
			errs = append(errs, fmt.Errorf("account %q: unknown role %q", name, acc.Role))
		}
	}
	return errors.Join(errs...)
}

// Account returns the configuration of the named account, or defaults.
func (c *Config) Account(name string) AccountConfig {
	return c.Accounts[name]
}

// AccountCurrency returns the account's currency, falling back to the default currency.
func (c *Config) AccountCurrency(name string) string {
	if cur := c.Accounts[name].Currency; cur != "" {
		return cur
	}
	return c.Currency
}

// IsForeign reports whether the named account holds a currency other than the default.
func (c *Config) IsForeign(name string) bool {
	cur := c.Accounts[name].Currency
	return cur != "" && cur != c.Currency
}

// Fallback returns the configured conversion rate for code.
func (c *Config) Fallback(code string) (decimal.Decimal, bool) {
	rate, ok := c.CurrencyConvFallback[code]
	return rate, ok && rate.IsPositive()
}
