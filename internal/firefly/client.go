// Package firefly is a minimal client for the Firefly III REST API.
package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 60 * time.Second
	pageLimit      = 100
)

// Client talks to one Firefly III instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the instance at baseURL using a personal access token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// About returns the user owning the access token.
func (c *Client) About(ctx context.Context) (Resource, error) {
	var resp singleResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/about/user", nil, nil, &resp); err != nil {
		return Resource{}, err
	}
	return resp.Data, nil
}

// List fetches every page of a collection endpoint.
func (c *Client) List(ctx context.Context, path string, query url.Values) ([]Resource, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("limit", strconv.Itoa(pageLimit))

	var out []Resource
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		var resp listResponse
		if err := c.do(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Data...)
		if resp.Meta.Pagination.CurrentPage >= resp.Meta.Pagination.TotalPages {
			return out, nil
		}
	}
}

// Create POSTs body to a collection endpoint and returns the created resource.
func (c *Client) Create(ctx context.Context, path string, body any) (Resource, error) {
	var resp singleResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return Resource{}, err
	}
	return resp.Data, nil
}

// Update PUTs body to a resource endpoint and returns the updated resource.
func (c *Client) Update(ctx context.Context, path string, body any) (Resource, error) {
	var resp singleResponse
	if err := c.do(ctx, http.MethodPut, path, nil, body, &resp); err != nil {
		return Resource{}, err
	}
	return resp.Data, nil
}

// Action POSTs to an endpoint that takes no body, such as currency enable.
func (c *Client) Action(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// CreateTransactionGroup submits one transaction group.
func (c *Client) CreateTransactionGroup(ctx context.Context, req TransactionGroupRequest) (Resource, error) {
	return c.Create(ctx, "/api/v1/transactions", req)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.api+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", method, path, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("firefly request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: data}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}
