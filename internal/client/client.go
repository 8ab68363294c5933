// Package client talks to the catalog API on behalf of the command-line
// client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/power"
)

const DefaultTimeout = 5 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// NotFound reports whether err is an APIError with status 404.
func NotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

// New returns a client for the API at baseURL. timeout bounds each request;
// zero means DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	return dec.Decode(out)
}

func categoryPath(cat domain.Category) string {
	return "/" + url.PathEscape(string(cat)) + "/"
}

// Category returns the raw records of one category.
func (c *Client) Category(ctx context.Context, cat domain.Category) ([]map[string]any, error) {
	var rows []map[string]any
	if err := c.do(ctx, http.MethodGet, categoryPath(cat), nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cat, err)
	}
	return rows, nil
}

// Catalog fetches every category concurrently. Any failure aborts the rest and
// no partial catalog is returned.
func (c *Client) Catalog(ctx context.Context) (power.Catalog, map[string][]map[string]any, error) {
	raw := make([][]map[string]any, len(domain.Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range domain.Categories {
		g.Go(func() error {
			rows, err := c.Category(gctx, cat)
			if err != nil {
				return err
			}
			raw[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return power.Catalog{}, nil, err
	}
	byKey := make(map[string][]map[string]any, len(raw))
	for i, cat := range domain.Categories {
		byKey[string(cat)] = raw[i]
	}
	return power.FromRaw(byKey), byKey, nil
}

// Search is the server-side substring search of one category.
func (c *Client) Search(ctx context.Context, cat domain.Category, q string) ([]map[string]any, error) {
	var rows []map[string]any
	err := c.do(ctx, http.MethodGet, categoryPath(cat)+url.PathEscape(q), nil, &rows)
	return rows, err
}

func (c *Client) Configs(ctx context.Context, query string) ([]domain.SavedConfig, error) {
	path := "/configs"
	if q := strings.TrimSpace(query); q != "" {
		path += "?q=" + url.QueryEscape(q)
	}
	var list []domain.SavedConfig
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Config(ctx context.Context, id string) (*domain.SavedConfig, error) {
	var cfg domain.SavedConfig
	if err := c.do(ctx, http.MethodGet, "/configs/"+url.PathEscape(id), nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig stores a configuration computed locally.
func (c *Client) SaveConfig(ctx context.Context, cfg *domain.SavedConfig) (*domain.SavedConfig, error) {
	var out domain.SavedConfig
	if err := c.do(ctx, http.MethodPost, "/configs", cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenameConfig(ctx context.Context, id, name string) (*domain.SavedConfig, error) {
	var out domain.SavedConfig
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPatch, "/configs/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteConfig(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/configs/"+url.PathEscape(id), nil, nil)
}
