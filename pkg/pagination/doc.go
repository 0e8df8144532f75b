// Package pagination walks Yupdates feeds beyond a single read.
//
// The API has no page numbers. A read returns at most 50 items (10 with
// content), newest first, and the next page is requested relative to an
// item time: item_time_before the oldest item seen to go back in time, or
// item_time_after the newest item seen to move forward. Pager keeps that
// cursor for you:
//
//	pager := pagination.NewPager(c, feedID, 50, false)
//	for {
//		items, err := pager.Next(ctx)
//		if errors.Is(err, pagination.ErrDone) {
//			break
//		}
//		...
//	}
//
// BatchFetcher reads the latest items of many feeds in parallel with a
// small worker pool:
//
//	fetcher := pagination.NewBatchFetcher(c, pagination.DefaultConfig())
//	byFeed, err := fetcher.FetchFeeds(ctx, feedIDs)
package pagination
