package client

import (
	"context"
	"time"

	"github.com/yupdates/yupdates-sdk-go/pkg/models"
)

// Blocking exposes the client's operations without a context argument, for
// scripts and one-off CLIs. Every call runs to completion on its own
// context, bounded by the configured timeout when one is set.
type Blocking struct {
	client  *Client
	timeout time.Duration
}

// NewBlocking wraps c. A timeout of 0 means calls are only bounded by the
// transport's own timeout.
func NewBlocking(c *Client, timeout time.Duration) *Blocking {
	return &Blocking{client: c, timeout: timeout}
}

// NewBlockingFromEnv is NewFromEnv wrapped in a Blocking adapter.
func NewBlockingFromEnv(timeout time.Duration) (*Blocking, error) {
	c, err := NewFromEnv(context.Background())
	if err != nil {
		return nil, err
	}
	return NewBlocking(c, timeout), nil
}

// Client returns the wrapped context-aware client.
func (b *Blocking) Client() *Client {
	return b.client
}

func (b *Blocking) context() (context.Context, context.CancelFunc) {
	if b.timeout > 0 {
		return context.WithTimeout(context.Background(), b.timeout)
	}
	return context.WithCancel(context.Background())
}

// Ping is Client.Ping.
func (b *Blocking) Ping() (PingResponse, error) {
	ctx, cancel := b.context()
	defer cancel()
	return b.client.Ping(ctx)
}

// PingBool is Client.PingBool.
func (b *Blocking) PingBool() bool {
	ctx, cancel := b.context()
	defer cancel()
	return b.client.PingBool(ctx)
}

// NewItems is Client.NewItems.
func (b *Blocking) NewItems(items []models.InputItem) (NewInputItemsResponse, error) {
	ctx, cancel := b.context()
	defer cancel()
	return b.client.NewItems(ctx, items)
}

// NewItemsAll is Client.NewItemsAll. The timeout covers the whole batch,
// pauses included.
func (b *Blocking) NewItemsAll(items []models.InputItem, delay time.Duration) (string, error) {
	ctx, cancel := b.context()
	defer cancel()
	return b.client.NewItemsAll(ctx, items, delay)
}

// ReadItems is Client.ReadItems.
func (b *Blocking) ReadItems(feedID string) ([]models.FeedItem, error) {
	ctx, cancel := b.context()
	defer cancel()
	return b.client.ReadItems(ctx, feedID)
}

// ReadItemsWithOptions is Client.ReadItemsWithOptions.
func (b *Blocking) ReadItemsWithOptions(feedID string, opts ReadOptions) ([]models.FeedItem, error) {
	ctx, cancel := b.context()
	defer cancel()
	return b.client.ReadItemsWithOptions(ctx, feedID, opts)
}
