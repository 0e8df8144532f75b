// Package client provides the Yupdates API client: pinging, submitting
// items (chunked and paced when there are many), and reading items with
// item-time cursors.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yupdates/yupdates-sdk-go/pkg/cache"
	"github.com/yupdates/yupdates-sdk-go/pkg/config"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yupdates_requests_total",
		Help: "Total Yupdates API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yupdates_request_duration_seconds",
		Help:    "Yupdates API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yupdates_errors_total",
		Help: "Total errors returned by the Yupdates client by kind",
	}, []string{"kind"})

	chunksSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yupdates_chunks_submitted_total",
		Help: "Total item chunks successfully submitted",
	})

	itemsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yupdates_items_submitted_total",
		Help: "Total items successfully submitted",
	})
)

// AuthTokenHeader carries the API token on every call.
const AuthTokenHeader = "X-Auth-Token"

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the Yupdates API client. It is safe for concurrent use as long
// as the configured Doer is.
type Client struct {
	httpClient Doer
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://feeds.yupdates.com/api/v0/".
	// A missing trailing slash is added.
	BaseURL string

	// Token is sent as X-Auth-Token (REQUIRED)
	Token string

	// UserAgent header
	UserAgent string

	// HTTPClient is the transport; nil means an *http.Client with Timeout.
	HTTPClient Doer
	Timeout    time.Duration

	// Caching of read responses; nil disables it
	Cache              *cache.Manager
	CacheTTL           time.Duration // reads of the latest items
	HistoricalCacheTTL time.Duration // reads bounded by item_time_before

	// StrictFeedID makes NewItemsAll fail when a later chunk reports a
	// different feed ID than the first one. Off by default.
	StrictFeedID bool
}

// DefaultConfig returns a default configuration for the given token.
func DefaultConfig(token string) Config {
	return Config{
		BaseURL:            config.DefaultAPIURL,
		Token:              token,
		UserAgent:          "yupdates-sdk-go/0.1.0",
		Timeout:            30 * time.Second,
		CacheTTL:           30 * time.Second,
		HistoricalCacheTTL: 10 * time.Minute,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, newError(KindConfig, "API token is missing, set %s", config.EnvAPIToken)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultAPIURL
	}
	cfg.BaseURL = config.WithTrailingSlash(cfg.BaseURL)

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, newError(KindConfig, "invalid base URL '%s'", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		cache:      cfg.Cache,
		config:     cfg,
		logger:     log.With().Str("component", "yupdates-client").Logger(),
	}, nil
}

// NewFromEnv creates a client from YUPDATES_* environment variables. When
// YUPDATES_REDIS_URL is set, reads are cached in Redis and in memory.
func NewFromEnv(ctx context.Context) (*Client, error) {
	env, err := config.Load(ctx)
	if err != nil {
		return nil, &Error{Kind: KindConfig, Message: err.Error(), Err: err}
	}
	return NewFromConfig(env)
}

// NewFromConfig creates a client from already loaded environment settings.
func NewFromConfig(env config.Env) (*Client, error) {
	cfg := DefaultConfig(env.APIToken)
	cfg.BaseURL = env.APIURL
	cfg.Timeout = env.HTTPTimeout

	if env.RedisURL != "" {
		opts, err := redis.ParseURL(env.RedisURL)
		if err != nil {
			return nil, &Error{Kind: KindConfig, Message: fmt.Sprintf("invalid %s: %v", config.EnvRedisURL, err), Err: err}
		}
		manager, err := cache.NewManager(cache.DefaultConfig(redis.NewClient(opts)))
		if err != nil {
			return nil, &Error{Kind: KindConfig, Message: err.Error(), Err: err}
		}
		cfg.Cache = manager
	}

	return New(cfg)
}

// BaseURL returns the configured API root (always with a trailing slash).
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client Doer) {
	c.httpClient = client
}

// fail records the error metric and returns err unchanged.
func (c *Client) fail(err error) error {
	var e *Error
	if errors.As(err, &e) {
		errorsTotal.WithLabelValues(string(e.Kind)).Inc()
	}
	return err
}
