package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is the desktop browser profile sent when no override is
// configured; several document hosts refuse obviously non-browser clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

// defaultHeaders completes the browser profile. Accept-Encoding is left to
// net/http: setting it by hand disables the transport's automatic gzip
// decompression and callers would see compressed bytes.
var defaultHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"Referer":                   "https://www.google.com",
}

type ClientConfig struct {
	UserAgent    string
	Headers      map[string]string // override or extend the default set
	MaxRetries   int
	RetryBackoff time.Duration
	RateLimit    float64 // requests per second, 0 disables limiting
	PoolSize     int     // idle connections kept, sized to the worker count
}

// Client is the one HTTP entry point for the whole run. Every component
// shares its connection pool, header set and retry policy.
type Client struct {
	config    ClientConfig
	transport *http.Transport
	limiter   *rate.Limiter
	log       *logrus.Logger
}

func NewWithConfig(config ClientConfig, log *logrus.Logger) *Client {
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 5
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = 300 * time.Millisecond
	}
	if config.PoolSize == 0 {
		config.PoolSize = 100
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &Client{
		config: config,
		transport: &http.Transport{
			MaxIdleConns:        config.PoolSize,
			MaxIdleConnsPerHost: config.PoolSize,
			IdleConnTimeout:     90 * time.Second,
		},
		limiter: limiter,
		log:     log,
	}
}

func New(log *logrus.Logger) *Client {
	return NewWithConfig(ClientConfig{}, log)
}

// Get issues a GET with the shared header set, retrying transport errors and
// transient upstream statuses with exponential backoff. The timeout bounds
// each attempt including the body read. Non-retryable statuses are returned
// to the caller unread; the caller owns closing the body on success.
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration) (*http.Response, error) {
	httpClient := &http.Client{
		Transport: c.transport,
		Timeout:   timeout,
	}

	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryBackoff << (attempt - 1)
			c.log.WithFields(logrus.Fields{
				"url":     rawURL,
				"attempt": attempt,
				"backoff": backoff,
			}).Debug("retrying request")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
		}
		c.applyHeaders(req)

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) applyHeaders(req *http.Request) {
	for name, value := range defaultHeaders {
		req.Header.Set(name, value)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	for name, value := range c.config.Headers {
		req.Header.Set(name, value)
	}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
