package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RESTConfig configures the hosted REST data-store backend.
type RESTConfig struct {
	BaseURL string        `env:"DATASTORE_URL,required"`
	APIKey  string        `env:"DATASTORE_API_KEY"`
	Timeout time.Duration `env:"DATASTORE_TIMEOUT" envDefault:"10s"`
}

// REST talks to a hosted data store speaking the PostgREST wire format:
// collections are URL paths, equality filters are `field=eq.value` query
// parameters, and mutations return the affected rows when asked to. The
// remote end enforces row-level authorization; this client only shapes
// requests.
type REST struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// RESTOption configures the REST backend.
type RESTOption func(*REST)

// WithHTTPClient replaces the default HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(r *REST) {
		if c != nil {
			r.client = c
		}
	}
}

// NewREST creates a hosted data-store client.
func NewREST(cfg RESTConfig, opts ...RESTOption) (*REST, error) {
	if cfg.BaseURL == "" {
		return nil, errors.Join(ErrConnect, errors.New("base URL is required"))
	}
	r := &REST{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *REST) Select(ctx context.Context, collection string, q Query) ([]Row, error) {
	rows, err := r.do(ctx, http.MethodGet, collection, q, nil, false)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *REST) Insert(ctx context.Context, collection string, row Row) (Row, error) {
	rows, err := r.do(ctx, http.MethodPost, collection, Q(), row, true)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.Join(ErrDecode, errors.New("insert returned no representation"))
	}
	return rows[0], nil
}

func (r *REST) Update(ctx context.Context, collection string, q Query, changes Row) (int64, error) {
	rows, err := r.do(ctx, http.MethodPatch, collection, q, changes, true)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *REST) Delete(ctx context.Context, collection string, q Query) (int64, error) {
	rows, err := r.do(ctx, http.MethodDelete, collection, q, nil, true)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// do issues one request and decodes the JSON array response. When
// representation is set the request asks the store to return affected rows,
// which doubles as the affected-row count for mutations.
func (r *REST) do(ctx context.Context, method, collection string, q Query, body Row, representation bool) ([]Row, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Join(ErrRequest, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+"/"+url.PathEscape(collection)+encodeQuery(q), reader)
	if err != nil {
		return nil, errors.Join(ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if representation {
		req.Header.Set("Prefer", "return=representation")
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
		req.Header.Set("apikey", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Join(ErrRequest,
			fmt.Errorf("%s %s: status %d: %s", method, collection, resp.StatusCode, strings.TrimSpace(string(detail))))
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	return rows, nil
}

// encodeQuery renders the DSL in PostgREST form:
// ?status=eq.open&order=created_at.desc&limit=20
func encodeQuery(q Query) string {
	values := url.Values{}
	for _, f := range q.Filters() {
		values.Add(f.Field, "eq."+fmt.Sprint(f.Value))
	}
	if orderings := q.Orderings(); len(orderings) > 0 {
		terms := make([]string, len(orderings))
		for i, o := range orderings {
			if o.Desc {
				terms[i] = o.Field + ".desc"
			} else {
				terms[i] = o.Field + ".asc"
			}
		}
		values.Set("order", strings.Join(terms, ","))
	}
	if n := q.LimitN(); n > 0 {
		values.Set("limit", strconv.Itoa(n))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}
