package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
)

// Attributes is the desired state of one remote entity, as sent to Firefly III.
type Attributes map[string]any

// NeedsUpdate reports whether any desired attribute differs from the remote resource.
func NeedsUpdate(desired Attributes, remote firefly.Resource) bool {
	for k, want := range desired {
		if !valuesEqual(want, remote.Attributes[k]) {
			return true
		}
	}
	return false
}

// valuesEqual compares a desired value with a decoded JSON value. Dates
// compare as calendar days, numbers as decimals, and a missing remote value
// equals the zero value.
func valuesEqual(want, have any) bool {
	switch w := want.(type) {
	case firefly.Date:
		if have == nil {
			return false
		}
		return strings.HasPrefix(textOf(have), w.String())
	case decimal.Decimal:
		return decimalEqual(w, have)
	case int:
		return decimalEqual(decimal.NewFromInt(int64(w)), have)
	case bool:
		if have == nil {
			return !w
		}
		h, ok := have.(bool)
		return ok && h == w
	case string:
		if have == nil {
			return w == ""
		}
		return w == textOf(have)
	case nil:
		return have == nil
	}
	return fmt.Sprint(want) == fmt.Sprint(have)
}

func decimalEqual(want decimal.Decimal, have any) bool {
	if have == nil {
		return want.IsZero()
	}
	d, err := decimal.NewFromString(strings.TrimSpace(textOf(have)))
	if err != nil {
		return false
	}
	return want.Equal(d)
}

func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
