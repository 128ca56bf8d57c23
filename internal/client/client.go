// Package client implements the per-resource REST clients of the /api/v1
// backend. Every call takes a context, attaches the bearer token of the
// current session and returns decoded dto values or an *Error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenSource supplies the bearer token for outgoing requests.
// session.Session implements it.
type TokenSource interface {
	Token() string
}

// Client is the root API client. The resource clients share its transport.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func()

	Auth     *AuthClient
	Products *ProductsClient
	Sellers  *SellersClient
	Sales    *SalesClient
	Earnings *EarningsClient
	Users    *UsersClient
}

// New builds a client for baseURL, e.g. http://localhost:8000/api/v1.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	c.Auth = &AuthClient{c: c}
	c.Products = &ProductsClient{c: c}
	c.Sellers = &SellersClient{c: c}
	c.Sales = &SalesClient{c: c}
	c.Earnings = &EarningsClient{c: c}
	c.Users = &UsersClient{c: c}
	return c
}

// SetHTTPClient swaps the transport, mainly for tests.
func (c *Client) SetHTTPClient(h *http.Client) { c.httpClient = h }

func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// SetUnauthorizedHandler registers fn to run when an authenticated call gets
// a 401, typically to clear the session and send the user to /login.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// call describes one request.
type call struct {
	method string
	path   string
	query  url.Values
	json   any
	body   io.Reader
	ctype  string
	// anonymous requests skip the bearer header and the 401 hook
	anonymous bool
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	body, ctype := cl.body, cl.ctype
	if cl.json != nil {
		data, err := json.Marshal(cl.json)
		if err != nil {
			return nil, fmt.Errorf("client: marshal %s %s: %w", cl.method, cl.path, err)
		}
		body, ctype = bytes.NewReader(data), "application/json"
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	req.Header.Set("Accept", "application/json")
	if !cl.anonymous {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// send performs cl and returns the response when the status is 2xx. The
// caller closes the body.
func (c *Client) send(ctx context.Context, cl call) (*http.Response, error) {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", cl.method, cl.path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	apiErr := decodeError(resp)
	if apiErr.Status == http.StatusUnauthorized && !cl.anonymous {
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook()
		}
	}
	return nil, apiErr
}

// do performs cl and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", cl.method, cl.path, err)
	}
	return nil
}

// bytes performs cl and returns the raw body, for PDF and xlsx downloads.
func (c *Client) bytes(ctx context.Context, cl call) ([]byte, error) {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func pageQuery(skip, limit int) url.Values {
	q := url.Values{}
	q.Set("skip", fmt.Sprint(skip))
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	return q
}

func idPath(prefix string, id uint, suffix ...string) string {
	return fmt.Sprintf("%s/%d", prefix, id) + strings.Join(suffix, "")
}
