// Package httpgw implements gateway.Gateway over the HTTP persistence service.
package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/gateway"
	"github.com/idilsaglam/tada/internal/model"
)

const defaultTimeout = 10 * time.Second

// Client talks to a server started by `todo serve`.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

var _ gateway.Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds each request. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New parses baseURL (e.g. http://localhost:8080) and returns a client.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse server url: unsupported scheme %q", u.Scheme)
	}
	c := &Client{base: u, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, http.MethodGet, "/todos", nil, http.StatusOK, &items); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (c *Client) Create(ctx context.Context, text string) (model.Item, error) {
	var it model.Item
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/todos", body, http.StatusCreated, &it); err != nil {
		return model.Item{}, fmt.Errorf("create: %w", err)
	}
	return it, nil
}

func (c *Client) ToggleCompletion(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodPost, itemPath(id)+"/toggle", nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("toggle %d: %w", id, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, itemPath(id), nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	return nil
}

func itemPath(id int64) string { return "/todos/" + strconv.FormatInt(id, 10) }

// do performs one request. Every error wraps gateway.ErrTransport or
// gateway.ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: marshal: %v", gateway.ErrTransport, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrTransport, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg := serviceError(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", gateway.ErrNotFound, msg)
		}
		return fmt.Errorf("%w: %s: %s", gateway.ErrTransport, resp.Status, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", gateway.ErrTransport, err)
	}
	return nil
}

func serviceError(r io.Reader) string {
	var e struct {
		Error string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}
