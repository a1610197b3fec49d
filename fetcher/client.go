package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrNotFound     = errors.New("http: resource not found")
	ErrForbidden    = errors.New("http: access forbidden")
	ErrUnauthorized = errors.New("http: unauthorized")
	ErrStatus       = errors.New("http: unexpected status")
)

// Options configures the HTTP client.
type Options struct {
	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 60
	MaxIdleConnsPerHost int

	// Timeout bounds a whole request including the body read.
	// Zero means no timeout.
	Timeout time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string
}

// DefaultOptions returns options matching the default install concurrency.
func DefaultOptions() Options {
	return Options{
		MaxIdleConnsPerHost: 60,
	}
}

// Client issues plain GET requests. It performs no retries.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts Options) *Client {
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = DefaultOptions().MaxIdleConnsPerHost
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = opts.MaxIdleConnsPerHost
	transport.MaxIdleConns = opts.MaxIdleConnsPerHost * 2
	transport.IdleConnTimeout = 90 * time.Second

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// Get performs a GET request and returns the response body.
// Non-2xx responses are reported as errors.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatusCode(resp.StatusCode); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get %q: %w", url, err)
	}
	return resp.Body, nil
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: %d", ErrStatus, code)
	}
}
