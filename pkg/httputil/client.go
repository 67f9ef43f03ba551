package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/trackdash/pkg/buildinfo"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/observability"
)

// Store is the subset of a cache the client needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// MaxBodySize caps a downloaded body.
const MaxBodySize = 256 << 20

// Client downloads URLs, caching bodies in a [Store].
type Client struct {
	http     *http.Client
	store    Store
	ttl      time.Duration
	key      func(rawURL string) string
	attempts int
	delay    time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default client (60s timeout).
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithKeyFunc sets how a URL maps to a cache key. Default: "http:csv:<url>".
func WithKeyFunc(f func(string) string) Option { return func(c *Client) { c.key = f } }

// WithRetry sets the attempt count and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// NewClient returns a client caching bodies in store for ttl. A nil store
// disables caching.
func NewClient(store Store, ttl time.Duration, opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 60 * time.Second},
		store:    store,
		ttl:      ttl,
		key:      func(u string) string { return "http:csv:" + u },
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the body of rawURL and whether it came from the cache.
// Cache read and write failures are not fatal.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, bool, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, false, err
	}
	key := c.key(rawURL)
	if c.store != nil {
		if data, ok, err := c.store.Get(ctx, key); err == nil && ok {
			return data, true, nil
		}
	}

	var body []byte
	err := Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		body, err = c.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if c.store != nil {
		_ = c.store.Set(ctx, key, body, c.ttl)
	}
	return body, false, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse url")
	}
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", rawURL)
		}
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", rawURL))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, rawURL); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", rawURL))
	}
	if len(body) > MaxBodySize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: body exceeds %d bytes", rawURL, MaxBodySize)
	}
	return body, nil
}

func checkStatus(resp *http.Response, rawURL string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", rawURL)
	case code == http.StatusTooManyRequests || code >= 500:
		return RetryAfter(errors.New(errors.ErrCodeNetwork, "%s: %s", rawURL, statusText(code)), retryAfterHeader(resp.Header))
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: %s", rawURL, statusText(code))
	}
}

func statusText(code int) string {
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}
