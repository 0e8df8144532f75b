package client

import (
	"net/url"
	"strconv"

	"github.com/yupdates/yupdates-sdk-go/pkg/itemtime"
)

// Read limits enforced client-side.
const (
	DefaultMaxItems     = 10
	MaxItemsLimit       = 50
	MaxItemsWithContent = 10
	minMaxItems         = 1
)

// ReadOptions are the extra options for reading items.
//
// If neither ItemTimeAfter nor ItemTimeBefore is set, the latest items are
// returned. They cannot both be set. Either bound accepts any form
// itemtime.Parse accepts; it is normalized before being sent.
type ReadOptions struct {
	// MaxItems is the number of items to return, 1 to 50 (1 to 10 when
	// IncludeItemContent is true).
	MaxItems int

	// IncludeItemContent populates each FeedItem with its content and files.
	IncludeItemContent bool

	// ItemTimeAfter only returns items after this item time (exclusive).
	ItemTimeAfter string

	// ItemTimeBefore only returns items before this item time (exclusive).
	ItemTimeBefore string
}

// DefaultReadOptions returns the options used by ReadItems.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		MaxItems:           DefaultMaxItems,
		IncludeItemContent: false,
	}
}

// validateReadOptions returns a validated copy with normalized bounds.
// Checks run in a fixed order so the first failure is deterministic.
func validateReadOptions(given ReadOptions) (ReadOptions, error) {
	if given.IncludeItemContent && (given.MaxItems < minMaxItems || given.MaxItems > MaxItemsWithContent) {
		return ReadOptions{}, illegalParameter(
			"`max_items` must be 1 to 10 when `include_item_content` is true, received %d", given.MaxItems)
	}

	if given.MaxItems < minMaxItems || given.MaxItems > MaxItemsLimit {
		return ReadOptions{}, illegalParameter("`max_items` must be 1 to 50, received %d", given.MaxItems)
	}

	if given.ItemTimeAfter != "" && given.ItemTimeBefore != "" {
		return ReadOptions{}, illegalParameter(
			"cannot simultaneously query with `item_time_after` and `item_time_before`")
	}

	validated := ReadOptions{
		MaxItems:           given.MaxItems,
		IncludeItemContent: given.IncludeItemContent,
	}

	var err error
	if given.ItemTimeAfter != "" {
		if validated.ItemTimeAfter, err = itemtime.Normalize(given.ItemTimeAfter); err != nil {
			return ReadOptions{}, itemTimeError(err)
		}
	}
	if given.ItemTimeBefore != "" {
		if validated.ItemTimeBefore, err = itemtime.Normalize(given.ItemTimeBefore); err != nil {
			return ReadOptions{}, itemTimeError(err)
		}
	}

	return validated, nil
}

// query renders validated options as request query parameters.
func (o ReadOptions) query() url.Values {
	q := url.Values{}
	q.Set("max_items", strconv.Itoa(o.MaxItems))
	q.Set("include_item_content", strconv.FormatBool(o.IncludeItemContent))
	if o.ItemTimeAfter != "" {
		q.Set("item_time_after", o.ItemTimeAfter)
	}
	if o.ItemTimeBefore != "" {
		q.Set("item_time_before", o.ItemTimeBefore)
	}
	return q
}

func itemTimeError(err error) *Error {
	return &Error{Kind: KindIllegalParameter, Message: err.Error(), Err: err}
}
