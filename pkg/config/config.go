// Package config loads Yupdates client settings from the environment.
//
// Loading happens once, in the outer layer (a CLI main or NewFromEnv);
// the client itself only ever sees the resulting values.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Environment variable names.
const (
	EnvAPIToken    = "YUPDATES_API_TOKEN"
	EnvAPIURL      = "YUPDATES_API_URL"
	EnvRedisURL    = "YUPDATES_REDIS_URL"
	EnvLogLevel    = "YUPDATES_LOG_LEVEL"
	EnvLogPretty   = "YUPDATES_LOG_PRETTY"
	EnvHTTPTimeout = "YUPDATES_HTTP_TIMEOUT"
)

// DefaultAPIURL is the production API base URL.
const DefaultAPIURL = "https://feeds.yupdates.com/api/v0/"

// ErrMissingToken is returned when YUPDATES_API_TOKEN is not set.
var ErrMissingToken = errors.New("API token is missing, set " + EnvAPIToken)

// Env holds everything read from the environment.
type Env struct {
	APIToken    string        `env:"YUPDATES_API_TOKEN"`
	APIURL      string        `env:"YUPDATES_API_URL, default=https://feeds.yupdates.com/api/v0/"`
	RedisURL    string        `env:"YUPDATES_REDIS_URL"`
	LogLevel    string        `env:"YUPDATES_LOG_LEVEL, default=info"`
	LogPretty   bool          `env:"YUPDATES_LOG_PRETTY, default=false"`
	HTTPTimeout time.Duration `env:"YUPDATES_HTTP_TIMEOUT, default=30s"`
}

// Load reads the process environment.
func Load(ctx context.Context) (Env, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper (tests use
// envconfig.MapLookuper).
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (Env, error) {
	var env Env
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return Env{}, fmt.Errorf("process environment: %w", err)
	}

	env.APIToken = strings.TrimSpace(env.APIToken)
	if env.APIToken == "" {
		return Env{}, ErrMissingToken
	}

	env.APIURL = WithTrailingSlash(strings.TrimSpace(env.APIURL))

	return env, nil
}

// WithTrailingSlash appends "/" to a base URL that lacks one.
func WithTrailingSlash(baseURL string) string {
	if baseURL == "" || strings.HasSuffix(baseURL, "/") {
		return baseURL
	}
	return baseURL + "/"
}
