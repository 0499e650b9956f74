package firefly

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// HTTPError is a non-2xx response from Firefly III.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.StatusCode == code
}

// ValidationErrors is the body of a 422 response.
type ValidationErrors struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// AsValidationErrors decodes err's body when it is a 422 response.
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusUnprocessableEntity {
		return nil, false
	}
	var v ValidationErrors
	if json.Unmarshal(herr.Body, &v) != nil {
		return nil, false
	}
	return &v, true
}

var (
	legFieldRe  = regexp.MustCompile(`^transactions\.([0-9]+)\.(.+)$`)
	duplicateRe = regexp.MustCompile(`^Duplicate of transaction #([0-9]+)\.$`)
)

// Classification splits the validation errors of a transaction group.
type Classification struct {
	// Duplicates maps leg index to the id of the already imported transaction.
	Duplicates map[int]int64
	// LegErrors maps leg index to field errors that are not duplicates.
	LegErrors map[int]map[string][]string
	// Other holds errors not attributable to a leg.
	Other map[string][]string
}

// ClassifyTransactionErrors sorts a transaction validation response into
// duplicate legs and real failures.
func ClassifyTransactionErrors(v *ValidationErrors) Classification {
	c := Classification{
		Duplicates: make(map[int]int64),
		LegErrors:  make(map[int]map[string][]string),
		Other:      make(map[string][]string),
	}
	for field, messages := range v.Errors {
		m := legFieldRe.FindStringSubmatch(field)
		if m == nil {
			c.Other[field] = append(c.Other[field], messages...)
			continue
		}
		leg, _ := strconv.Atoi(m[1])
		for _, msg := range messages {
			if d := duplicateRe.FindStringSubmatch(msg); d != nil {
				id, _ := strconv.ParseInt(d[1], 10, 64)
				c.Duplicates[leg] = id
				continue
			}
			if c.LegErrors[leg] == nil {
				c.LegErrors[leg] = make(map[string][]string)
			}
			c.LegErrors[leg][m[2]] = append(c.LegErrors[leg][m[2]], msg)
		}
	}
	// A leg with any other error is not an already imported transaction.
	for leg := range c.LegErrors {
		delete(c.Duplicates, leg)
	}
	if len(c.Other) == 0 && len(c.LegErrors) == 0 && len(c.Duplicates) == 0 && v.Message != "" {
		c.Other["message"] = []string{v.Message}
	}
	return c
}

// Fatal reports whether anything besides duplicates was rejected.
func (c Classification) Fatal() bool {
	return len(c.LegErrors) > 0 || len(c.Other) > 0
}

// DuplicateLegs returns the duplicate leg indexes in ascending order.
func (c Classification) DuplicateLegs() []int {
	legs := make([]int, 0, len(c.Duplicates))
	for leg := range c.Duplicates {
		legs = append(legs, leg)
	}
	sort.Ints(legs)
	return legs
}
