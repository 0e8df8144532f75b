package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/yupdates/yupdates-sdk-go/pkg/client"
	"github.com/yupdates/yupdates-sdk-go/pkg/models"
)

// ErrDone is returned by Next once the feed has no more items in the
// pager's direction.
var ErrDone = errors.New("no more items")

// Reader is the part of *client.Client a pager needs.
type Reader interface {
	ReadItemsWithOptions(ctx context.Context, feedID string, opts client.ReadOptions) ([]models.FeedItem, error)
}

// Direction selects which way a pager walks through a feed.
type Direction int

const (
	// Backward starts at the newest item and walks toward older ones.
	Backward Direction = iota

	// Forward walks from a starting item time toward newer items.
	Forward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Pager walks a feed one page at a time using item-time cursors.
// Pages are always newest first, whichever the direction.
type Pager struct {
	reader    Reader
	feedID    string
	direction Direction
	opts      client.ReadOptions
	cursor    string
	done      bool
	pages     int
}

// NewPager creates a pager over feedID. pageSize follows the ReadOptions
// limits (1 to 50, or 1 to 10 with content).
func NewPager(reader Reader, feedID string, pageSize int, withContent bool) *Pager {
	return &Pager{
		reader:    reader,
		feedID:    feedID,
		direction: Backward,
		opts: client.ReadOptions{
			MaxItems:           pageSize,
			IncludeItemContent: withContent,
		},
	}
}

// From switches the pager to Forward, starting after itemTime (exclusive).
func (p *Pager) From(itemTime string) *Pager {
	p.direction = Forward
	p.cursor = itemTime
	return p
}

// Before starts a Backward pager below itemTime (exclusive) instead of at
// the newest item.
func (p *Pager) Before(itemTime string) *Pager {
	p.direction = Backward
	p.cursor = itemTime
	return p
}

// Direction returns the pager's direction.
func (p *Pager) Direction() Direction {
	return p.direction
}

// Cursor returns the item time the next page will be read relative to.
// Empty means the newest items.
func (p *Pager) Cursor() string {
	return p.cursor
}

// Next reads the next page. It returns ErrDone when the feed is exhausted
// in the pager's direction; other errors are the client's and leave the
// cursor unchanged so the call can be repeated.
func (p *Pager) Next(ctx context.Context) ([]models.FeedItem, error) {
	if p.done {
		return nil, ErrDone
	}

	opts := p.opts
	switch {
	case p.direction == Forward:
		opts.ItemTimeAfter = p.cursor
	case p.cursor != "":
		opts.ItemTimeBefore = p.cursor
	}

	items, err := p.reader.ReadItemsWithOptions(ctx, p.feedID, opts)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		p.done = true
		return nil, ErrDone
	}

	// Backward continues below the oldest item of the page, Forward above
	// the newest one.
	edge := items[len(items)-1]
	if p.direction == Forward {
		edge = items[0]
	}
	cursor, err := edge.Cursor()
	if err != nil {
		return nil, fmt.Errorf("item %s has an unusable item time: %w", edge.ItemID, err)
	}
	p.cursor = cursor
	p.pages++

	if len(items) < p.opts.MaxItems {
		p.done = true
	}

	log.Debug().
		Str("feed_id", p.feedID).
		Stringer("direction", p.direction).
		Int("page", p.pages).
		Int("items", len(items)).
		Str("cursor", p.cursor).
		Msg("Read feed page")

	return items, nil
}

// All reads pages until the feed is exhausted or limit items were
// collected (limit <= 0 means no limit). Items keep page order, so a
// Backward pager yields newest first overall.
func (p *Pager) All(ctx context.Context, limit int) ([]models.FeedItem, error) {
	var all []models.FeedItem

	for limit <= 0 || len(all) < limit {
		page, err := p.Next(ctx)
		if errors.Is(err, ErrDone) {
			break
		}
		if err != nil {
			return all, err
		}
		all = append(all, page...)
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
