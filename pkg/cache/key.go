package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// CacheKey represents a unique identifier for a cached read.
type CacheKey struct {
	// Endpoint is the path relative to the API base URL (e.g. "feeds/{feed_id}/")
	Endpoint string

	// QueryParams are the query parameters (e.g. {"max_items": "10"})
	QueryParams url.Values

	// Token is the API token the read was made with. Tokens can see different
	// feeds, so reads are never shared between tokens. Only a hash ends up
	// in the key.
	Token string
}

// String generates a deterministic cache key string.
// Format: yupdates:endpoint:query1=val1:query2=val2:tok=<hash>
//
// Example:
//
//	yupdates:feeds/02fb...737:include_item_content=false:max_items=10:tok=9f86d081884c7d65
func (k CacheKey) String() string {
	parts := []string{"yupdates"}

	// Add endpoint (normalize path)
	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Add query params (sorted for determinism)
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	if k.Token != "" {
		parts = append(parts, fmt.Sprintf("tok=%016x", xxhash.Sum64String(k.Token)))
	}

	return strings.Join(parts, ":")
}
