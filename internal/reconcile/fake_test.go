package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ynabmigrate/ynabmigrate/internal/firefly"
)

type call struct {
	method string
	path   string
	body   map[string]any
}

// fakeRemote is an in-memory Firefly III. Listings are keyed by path plus
// the type query parameter; created resources join their listing.
type fakeRemote struct {
	listings map[string][]firefly.Resource
	// balances maps a date to account name to current_balance.
	balances map[string]map[string]string
	calls    []call
	lists    []string
	nextID   int

	// errs fails the next write to a path once.
	errs map[string]error
	// nameErrs fails the next create of a resource with that name once.
	nameErrs map[string]error
	// submitted remembers transaction groups to report resubmissions as duplicates.
	submitted map[string]int
	txErr     error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		listings:  make(map[string][]firefly.Resource),
		balances:  make(map[string]map[string]string),
		errs:      make(map[string]error),
		nameErrs:  make(map[string]error),
		submitted: make(map[string]int),
		nextID:    100,
	}
}

func listKey(path string, query url.Values) string {
	if t := query.Get("type"); t != "" {
		return path + "?type=" + t
	}
	return path
}

func (f *fakeRemote) seed(key string, attrs ...map[string]any) {
	for _, a := range attrs {
		f.nextID++
		f.listings[key] = append(f.listings[key], firefly.Resource{ID: strconv.Itoa(f.nextID), Attributes: a})
	}
}

func (f *fakeRemote) About(context.Context) (firefly.Resource, error) {
	return firefly.Resource{Type: "users", ID: "1", Attributes: map[string]any{"email": "me@example.com"}}, nil
}

func (f *fakeRemote) List(_ context.Context, path string, query url.Values) ([]firefly.Resource, error) {
	if date := query.Get("date"); date != "" {
		var out []firefly.Resource
		for _, r := range f.listings[listKey(path, query)] {
			attrs := map[string]any{}
			for k, v := range r.Attributes {
				attrs[k] = v
			}
			if b, ok := f.balances[date][r.Text("name")]; ok {
				attrs["current_balance"] = b
			}
			out = append(out, firefly.Resource{ID: r.ID, Attributes: attrs})
		}
		f.lists = append(f.lists, path+"?date="+date)
		return out, nil
	}
	key := listKey(path, query)
	f.lists = append(f.lists, key)
	var out []firefly.Resource
	for _, r := range f.listings[key] {
		out = append(out, clone(r))
	}
	return out, nil
}

func clone(r firefly.Resource) firefly.Resource {
	attrs := make(map[string]any, len(r.Attributes))
	for k, v := range r.Attributes {
		attrs[k] = v
	}
	r.Attributes = attrs
	return r
}

// jsonify turns a request body into what the remote would echo back.
func jsonify(body any) map[string]any {
	b, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	return m
}

func (f *fakeRemote) failure(path string) error {
	if err, ok := f.errs[path]; ok {
		delete(f.errs, path)
		return err
	}
	return nil
}

func (f *fakeRemote) Create(_ context.Context, path string, body any) (firefly.Resource, error) {
	attrs := jsonify(body)
	f.calls = append(f.calls, call{http.MethodPost, path, attrs})
	if err := f.failure(path); err != nil {
		return firefly.Resource{}, err
	}
	if name, ok := attrs["name"].(string); ok {
		if err, ok := f.nameErrs[name]; ok {
			delete(f.nameErrs, name)
			return firefly.Resource{}, err
		}
	}
	f.nextID++
	res := firefly.Resource{ID: strconv.Itoa(f.nextID), Attributes: attrs}
	key := path
	if t, ok := attrs["type"].(string); ok && path == "/api/v1/accounts" {
		key = path + "?type=" + t
	}
	f.listings[key] = append(f.listings[key], res)
	return clone(res), nil
}

func (f *fakeRemote) Update(_ context.Context, path string, body any) (firefly.Resource, error) {
	attrs := jsonify(body)
	f.calls = append(f.calls, call{http.MethodPut, path, attrs})
	if err := f.failure(path); err != nil {
		return firefly.Resource{}, err
	}
	id := path[strings.LastIndex(path, "/")+1:]
	for key, resources := range f.listings {
		for i, r := range resources {
			if r.ID != id {
				continue
			}
			merged := map[string]any{}
			for k, v := range r.Attributes {
				merged[k] = v
			}
			for k, v := range attrs {
				merged[k] = v
			}
			f.listings[key][i].Attributes = merged
			return clone(f.listings[key][i]), nil
		}
	}
	return firefly.Resource{ID: id, Attributes: attrs}, nil
}

func (f *fakeRemote) Action(_ context.Context, path string) error {
	f.calls = append(f.calls, call{method: http.MethodPost, path: path})
	if err := f.failure(path); err != nil {
		return err
	}
	// /api/v1/currencies/{code}/{default,enable,disable}
	parts := strings.Split(strings.TrimPrefix(path, "/api/v1/currencies/"), "/")
	if len(parts) != 2 {
		return nil
	}
	for _, r := range f.listings["/api/v1/currencies"] {
		if r.Text("code") != parts[0] {
			if parts[1] == "default" {
				r.Attributes["default"] = false
			}
			continue
		}
		switch parts[1] {
		case "default":
			r.Attributes["default"] = true
		case "enable":
			r.Attributes["enabled"] = true
		case "disable":
			r.Attributes["enabled"] = false
		}
	}
	return nil
}

func (f *fakeRemote) CreateTransactionGroup(_ context.Context, req firefly.TransactionGroupRequest) (firefly.Resource, error) {
	body := jsonify(req)
	f.calls = append(f.calls, call{http.MethodPost, "/api/v1/transactions", body})
	if f.txErr != nil {
		err := f.txErr
		f.txErr = nil
		return firefly.Resource{}, err
	}

	b, _ := json.Marshal(req.Transactions)
	key := string(b)
	if prev, ok := f.submitted[key]; ok {
		errs := map[string][]string{}
		for i := range req.Transactions {
			errs[fmt.Sprintf("transactions.%d.description", i)] = []string{fmt.Sprintf("Duplicate of transaction #%d.", prev+i)}
		}
		payload, _ := json.Marshal(firefly.ValidationErrors{Message: "The given data was invalid.", Errors: errs})
		return firefly.Resource{}, &firefly.HTTPError{
			Method:     http.MethodPost,
			Path:       "/api/v1/transactions",
			StatusCode: http.StatusUnprocessableEntity,
			Body:       payload,
		}
	}
	f.nextID++
	f.submitted[key] = f.nextID
	return firefly.Resource{Type: "transactions", ID: strconv.Itoa(f.nextID)}, nil
}

// writes returns the create, update and action calls, excluding transactions.
func (f *fakeRemote) writes() []call {
	var out []call
	for _, c := range f.calls {
		if c.path != "/api/v1/transactions" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRemote) reset() {
	f.calls = nil
	f.lists = nil
}
