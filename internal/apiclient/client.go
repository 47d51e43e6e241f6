// Package apiclient talks to the upstream ZION REST backend on behalf of one
// authenticated user. The bearer credential is fixed at construction.
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

	"zion/gateway/internal/apperrors"

	"go.uber.org/zap"
)

const maxErrorBody = 64 << 10

// Client is a REST client bound to one bearer token
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	retries int
	backoff time.Duration
	log     *zap.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetries sets how often idempotent GETs are attempted
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for baseURL authenticated with token
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		retries: 3,
		backoff: 200 * time.Millisecond,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// detailText extracts a string detail; structured details fall back to the generic message
func detailText(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err != nil {
		return ""
	}
	return s
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("upstream request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return apperrors.Network(err)
	}
	defer resp.Body.Close()

	c.log.Debug("upstream request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.HTTP(resp.StatusCode, detailText(raw))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return apperrors.New(apperrors.KindEmpty, "empty upstream response")
		}
		return apperrors.Wrap(apperrors.KindInternal, "decode upstream response", err)
	}
	return nil
}

// get retries temporary failures; writes are never retried
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return apperrors.WithRetry(ctx, c.retries, c.backoff, func() error {
		return c.do(ctx, http.MethodGet, path, query, nil, out)
	})
}

func pathf(format string, ids ...any) string {
	escaped := make([]any, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(fmt.Sprint(id))
	}
	return fmt.Sprintf(format, escaped...)
}
