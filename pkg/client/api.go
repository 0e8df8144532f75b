package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yupdates/yupdates-sdk-go/pkg/cache"
	"github.com/yupdates/yupdates-sdk-go/pkg/models"
)

const (
	// MaxItemsPerCall is the most items one submission may carry.
	MaxItemsPerCall = 10

	// FeedIDLength is the exact length of a feed ID.
	FeedIDLength = 45
)

// PingResponse is the body of a successful ping.
type PingResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (*PingResponse) requiredFields() []string {
	return []string{"code", "message"}
}

// NewInputItemsResponse is the body of a successful submission.
type NewInputItemsResponse struct {
	Code    int    `json:"code"`
	FeedID  string `json:"feed_id"`
	Message string `json:"message"`
}

func (*NewInputItemsResponse) requiredFields() []string {
	return []string{"code", "feed_id", "message"}
}

// ReadFeedItemsResponse is the body of a successful read.
type ReadFeedItemsResponse struct {
	Code      int               `json:"code"`
	FeedItems []models.FeedItem `json:"feed_items"`
}

func (*ReadFeedItemsResponse) requiredFields() []string {
	return []string{"code", "feed_items"}
}

type newItemsBody struct {
	Items []models.InputItem `json:"items"`
}

// Ping tests configuration and authentication. A nil error means the token
// is valid for at least some operations.
func (c *Client) Ping(ctx context.Context) (PingResponse, error) {
	status, body, err := c.send(ctx, http.MethodGet, "ping/", nil, nil)
	if err != nil {
		return PingResponse{}, c.fail(err)
	}

	resp, err := interpret[PingResponse](status, body)
	if err != nil {
		return PingResponse{}, c.fail(err)
	}
	return resp, nil
}

// PingBool is Ping() == nil. Use Ping if the error matters.
func (c *Client) PingBool(ctx context.Context) bool {
	_, err := c.Ping(ctx)
	return err == nil
}

// NewItems adds up to 10 items to the feed the token belongs to.
//
// Sending zero items is legal: it verifies the token is authorized for the
// call and returns the matching feed ID without adding anything. Use
// NewItemsAll for more than 10 items.
func (c *Client) NewItems(ctx context.Context, items []models.InputItem) (NewInputItemsResponse, error) {
	if len(items) > MaxItemsPerCall {
		return NewInputItemsResponse{}, c.fail(illegalParameter(
			"too many items (%d). Use NewItemsAll to send 10 at a time.", len(items)))
	}

	if items == nil {
		items = []models.InputItem{}
	}

	status, body, err := c.send(ctx, http.MethodPost, "items/", nil, newItemsBody{Items: items})
	if err != nil {
		return NewInputItemsResponse{}, c.fail(err)
	}

	resp, err := interpret[NewInputItemsResponse](status, body)
	if err != nil {
		return NewInputItemsResponse{}, c.fail(err)
	}
	return resp, nil
}

// ReadItems returns the ten most recent items of a feed, without content.
func (c *Client) ReadItems(ctx context.Context, feedID string) ([]models.FeedItem, error) {
	return c.ReadItemsWithOptions(ctx, feedID, DefaultReadOptions())
}

// ReadItemsWithOptions reads items from a feed. See ReadOptions.
func (c *Client) ReadItemsWithOptions(ctx context.Context, feedID string, opts ReadOptions) ([]models.FeedItem, error) {
	trimmed := strings.TrimSpace(feedID)
	if len(trimmed) != FeedIDLength {
		return nil, c.fail(illegalParameter("`feed_id` is expected to be 45 characters ('%s')", feedID))
	}

	validated, err := validateReadOptions(opts)
	if err != nil {
		return nil, c.fail(err)
	}

	endpoint := "feeds/" + trimmed + "/"
	query := validated.query()

	var key cache.CacheKey
	if c.cache != nil {
		key = cache.CacheKey{Endpoint: endpoint, QueryParams: query, Token: c.config.Token}
		if items, ok := c.cachedRead(ctx, key); ok {
			return items, nil
		}
	}

	status, body, err := c.send(ctx, http.MethodGet, endpoint, query, nil)
	if err != nil {
		return nil, c.fail(err)
	}

	resp, err := interpret[ReadFeedItemsResponse](status, body)
	if err != nil {
		return nil, c.fail(err)
	}

	if c.cache != nil {
		c.storeRead(ctx, key, body, c.readTTL(validated))
	}

	return resp.FeedItems, nil
}

// readTTL picks how long a successful read may be served from cache.
func (c *Client) readTTL(opts ReadOptions) time.Duration {
	if opts.ItemTimeBefore != "" {
		return c.config.HistoricalCacheTTL
	}
	return c.config.CacheTTL
}

// cachedRead serves a read from cache. Cache failures are logged and
// treated as misses.
func (c *Client) cachedRead(ctx context.Context, key cache.CacheKey) ([]models.FeedItem, bool) {
	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
		}
		return nil, false
	}

	resp, err := interpret[ReadFeedItemsResponse](entry.StatusCode, entry.Data)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Discarding unreadable cache entry")
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to delete cache entry")
		}
		return nil, false
	}

	c.logger.Debug().Str("key", key.String()).Msg("Read served from cache")
	return resp.FeedItems, true
}

func (c *Client) storeRead(ctx context.Context, key cache.CacheKey, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, cache.NewEntry(http.StatusOK, body, ttl)); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache read")
	}
}
