// Package apiclient is a typed client for the lending REST API mounted under
// /api.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxErrorBody = 4 << 10

type Client struct {
	baseURL        string
	http           *http.Client
	token          string
	timeout        time.Duration
	onUnauthorized func()
	log            *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every call. Zero leaves only the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client for baseURL, which should end in /api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy that authenticates as the holder of token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// OnUnauthorized returns a copy that calls fn whenever a non-login call comes
// back 401.
func (c *Client) OnUnauthorized(fn func()) *Client {
	cp := *c
	cp.onUnauthorized = fn
	return &cp
}

func (c *Client) Token() string { return c.token }

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any
	login  bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", cl.method, cl.path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" && !cl.login {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("api call",
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(cl.method, cl.path, resp.StatusCode, errorMessage(raw), cl.login)
		if apiErr.kind == ErrUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}
	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return fmt.Errorf("decode %s %s: %w", cl.method, cl.path, err)
	}
	return nil
}

// errorMessage pulls a human message out of the error envelopes the backend
// uses, falling back to the raw text.
func errorMessage(raw []byte) string {
	var env struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil {
		switch {
		case env.Message != "":
			return env.Message
		case env.Error != "":
			return env.Error
		case env.Detail != nil:
			if s, ok := env.Detail.(string); ok {
				return s
			}
			b, _ := json.Marshal(env.Detail)
			return string(b)
		}
	}
	return strings.TrimSpace(string(raw))
}
