package firefly

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

// Resource is one JSON:API object returned by Firefly III.
type Resource struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

// Text returns the named attribute as a string, or "".
func (r Resource) Text(name string) string {
	switch v := r.Attributes[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the named attribute as a bool.
func (r Resource) Bool(name string) bool {
	v, _ := r.Attributes[name].(bool)
	return v
}

// Decimal parses the named attribute, which Firefly returns as a string or number.
func (r Resource) Decimal(name string) (decimal.Decimal, error) {
	s := strings.TrimSpace(r.Text(name))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

type pagination struct {
	Total       int `json:"total"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

type listResponse struct {
	Data []Resource `json:"data"`
	Meta struct {
		Pagination pagination `json:"pagination"`
	} `json:"meta"`
}

type singleResponse struct {
	Data Resource `json:"data"`
}

// Date is a calendar day serialized as "2006-01-02".
type Date time.Time

func (d Date) String() string {
	return time.Time(d).Format(model.DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if len(s) > len(model.DateFormat) {
		s = s[:len(model.DateFormat)]
	}
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

// TransactionSplit is one leg of a transaction group request.
type TransactionSplit struct {
	Type                string           `json:"type"`
	Date                Date             `json:"date"`
	Amount              decimal.Decimal  `json:"amount"`
	Description         string           `json:"description"`
	Tags                []string         `json:"tags,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	Reconciled          bool             `json:"reconciled"`
	ExternalID          string           `json:"external_id,omitempty"`
	SourceID            string           `json:"source_id"`
	DestinationID       string           `json:"destination_id"`
	BudgetID            string           `json:"budget_id,omitempty"`
	CategoryID          string           `json:"category_id,omitempty"`
	ForeignAmount       *decimal.Decimal `json:"foreign_amount,omitempty"`
	ForeignCurrencyCode string           `json:"foreign_currency_code,omitempty"`
}

// TransactionGroupRequest is the body of POST /api/v1/transactions.
type TransactionGroupRequest struct {
	ErrorIfDuplicateHash bool               `json:"error_if_duplicate_hash"`
	ApplyRules           bool               `json:"apply_rules"`
	FireWebhooks         bool               `json:"fire_webhooks"`
	GroupTitle           string             `json:"group_title,omitempty"`
	Transactions         []TransactionSplit `json:"transactions"`
}
