// Package models holds the item types exchanged with the Yupdates API.
package models

import (
	"github.com/yupdates/yupdates-sdk-go/pkg/itemtime"
)

// AssociatedFile is a file attached to an item, e.g. a podcast enclosure.
type AssociatedFile struct {
	URL     string `json:"url"`
	Length  uint64 `json:"length"`
	TypeStr string `json:"type_str"`
}

// InputItem is an item submitted to a feed.
type InputItem struct {
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	CanonicalURL    string           `json:"canonical_url"`
	AssociatedFiles []AssociatedFile `json:"associated_files,omitempty"`
}

// FeedItem is an item read back from a feed.
//
// Content and AssociatedFiles are only populated when the read asked for
// item content.
type FeedItem struct {
	FeedID          string           `json:"feed_id"`
	ItemID          string           `json:"item_id"`
	InputID         string           `json:"input_id"`
	Title           string           `json:"title"`
	Content         *string          `json:"content"`
	CanonicalURL    string           `json:"canonical_url"`
	ItemTime        string           `json:"item_time"`
	ItemTimeMs      uint64           `json:"item_time_ms"`
	Deleted         bool             `json:"deleted"`
	AssociatedFiles []AssociatedFile `json:"associated_files"`
}

// Cursor returns the item's time in canonical form, ready to be used as an
// exclusive bound in a follow-up read.
func (f FeedItem) Cursor() (string, error) {
	return itemtime.Normalize(f.ItemTime)
}
