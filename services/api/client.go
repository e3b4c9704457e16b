// Package api is the HTTP/JSON gateway to the clinic REST service.
package api

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

	"vetclinic/middleware"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config configures a Client. Zero values fall back to defaults.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Tokens    middleware.TokenSource
	Limiter   *rate.Limiter
	Logger    *zap.Logger
	Transport http.RoundTripper
}

// Client issues authenticated JSON requests. Every request carries the bearer token.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("api client requires a token source")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Limiter == nil {
		cfg.Limiter = middleware.NewLimiter(0, 0)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	logger := cfg.Logger.Named("api")

	var rt http.RoundTripper = middleware.BearerAuth(cfg.Tokens, cfg.Transport)
	rt = middleware.RateLimit(cfg.Limiter, rt)
	rt = middleware.Logging(logger, rt)
	rt = otelhttp.NewTransport(rt)

	return &Client{
		base:   base,
		http:   &http.Client{Timeout: cfg.Timeout, Transport: rt},
		logger: logger,
	}, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends in as the JSON body (when non-nil) and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRemoteError(method, path, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Ping checks that the backend answers an authenticated request.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/breeds/", nil, nil, nil)
}

func itemPath(collection string, id int) string {
	return fmt.Sprintf("%s%d", collection, id)
}
