package client

import (
	"context"
	"time"

	"github.com/yupdates/yupdates-sdk-go/pkg/models"
	"github.com/yupdates/yupdates-sdk-go/pkg/pacing"
)

// NewItemsAll adds any number of items, 10 per call, pausing delay between
// calls (no pause after the last one). delay must be at least 5ms.
//
// Chunks go out in order and the first failure aborts the rest. Chunks
// already accepted stay accepted: submission is at-least-once and not
// atomic, so callers must be ready for partial completion.
//
// The feed ID reported by the first chunk is returned. Later chunks are not
// compared against it unless Config.StrictFeedID is set. An empty items
// slice fails with KindIllegalResult since no call ever reports a feed ID.
func (c *Client) NewItemsAll(ctx context.Context, items []models.InputItem, delay time.Duration) (string, error) {
	pacer, err := pacing.New(delay)
	if err != nil {
		return "", c.fail(&Error{Kind: KindIllegalParameter, Message: err.Error(), Err: err})
	}

	chunks := chunkItems(items, MaxItemsPerCall)
	feedID := ""

	for i, chunk := range chunks {
		resp, err := c.NewItems(ctx, chunk)
		if err != nil {
			return "", err
		}

		chunksSubmittedTotal.Inc()
		itemsSubmittedTotal.Add(float64(len(chunk)))

		c.logger.Debug().
			Int("chunk", i+1).
			Int("chunks", len(chunks)).
			Int("items", len(chunk)).
			Str("feed_id", resp.FeedID).
			Msg("Submitted item chunk")

		if i == 0 {
			feedID = resp.FeedID
		} else if c.config.StrictFeedID && resp.FeedID != feedID {
			return "", c.fail(newError(KindIllegalResult,
				"chunk %d reported feed ID '%s', first chunk reported '%s'", i+1, resp.FeedID, feedID))
		}

		if i < len(chunks)-1 {
			if err := pacer.Wait(ctx); err != nil {
				return "", c.fail(&Error{Kind: KindTransport, Err: err})
			}
		}
	}

	if feedID == "" {
		return "", c.fail(newError(KindIllegalResult, "new items API success(es) without a feed ID"))
	}

	return feedID, nil
}

// chunkItems splits items into consecutive slices of at most size.
func chunkItems(items []models.InputItem, size int) [][]models.InputItem {
	chunks := make([][]models.InputItem, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
