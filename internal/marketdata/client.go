// Package marketdata provides an EODHD-backed price source for trigger
// evaluation and portfolio marking. Quotes are cached briefly to keep the
// EOD sweep from hammering the API.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/playbook/internal/common"
)

const (
	// DefaultBaseURL is the base URL for the EODHD API.
	DefaultBaseURL = "https://eodhd.com/api"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	// DefaultCacheTTL bounds quote staleness between refreshes.
	DefaultCacheTTL = 5 * time.Minute
)

// APIError represents an error response from the quote API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

type cachedQuote struct {
	price     float64
	fetchedAt time.Time
}

// Client is a rate-limited EODHD quote client with a short-lived price cache.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	cacheTTL   time.Duration

	mu    sync.Mutex
	cache map[string]cachedQuote

	now func() time.Time
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithCacheTTL sets how long a fetched quote stays fresh.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// NewClient creates a quote client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:   common.GetLogger(),
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cachedQuote),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type realTimeQuote struct {
	Code      string  `json:"code"`
	Close     float64 `json:"close"`
	Timestamp int64   `json:"timestamp"`
}

type eodBar struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// CurrentPrice returns the latest close for a symbol, serving from cache
// while the previous fetch is still fresh.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	c.mu.Lock()
	if cached, ok := c.cache[symbol]; ok && c.now().Sub(cached.fetchedAt) < c.cacheTTL {
		c.mu.Unlock()
		return cached.price, nil
	}
	c.mu.Unlock()

	var quote realTimeQuote
	if err := c.get(ctx, "/real-time/"+symbol, nil, &quote); err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.cache[symbol] = cachedQuote{price: quote.Close, fetchedAt: c.now()}
	c.mu.Unlock()

	return quote.Close, nil
}

// PriceHistory returns daily closes for the trailing window, oldest first.
func (c *Client) PriceHistory(ctx context.Context, symbol string, days int) ([]float64, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", c.now().AddDate(0, 0, -days).Format("2006-01-02"))

	var bars []eodBar
	if err := c.get(ctx, "/eod/"+symbol, params, &bars); err != nil {
		return nil, err
	}

	closes := make([]float64, 0, len(bars))
	for _, bar := range bars {
		closes = append(closes, bar.Close)
	}
	return closes, nil
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().
		Str("url", c.baseURL+path).
		Msg("Market data API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
