package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yupdates/yupdates-sdk-go/pkg/client"
	"github.com/yupdates/yupdates-sdk-go/pkg/models"
)

// Config holds batch fetcher configuration. Options are passed to every
// read unchanged, so they must be valid ReadOptions; start from
// DefaultConfig.
type Config struct {
	// MaxConcurrency is the maximum number of feeds read in parallel
	MaxConcurrency int
	// Timeout per feed read
	Timeout time.Duration
	// Options applied to every read
	Options client.ReadOptions
}

// DefaultConfig returns the default configuration: four workers reading
// the latest items of each feed.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		Options:        client.DefaultReadOptions(),
	}
}

// FeedResult is the outcome of reading one feed.
type FeedResult struct {
	FeedID string
	Items  []models.FeedItem
	Error  error
}

// BatchFetcher reads several feeds in parallel.
type BatchFetcher struct {
	reader Reader
	config Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(reader Reader, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &BatchFetcher{
		reader: reader,
		config: config,
	}
}

// FetchFeeds reads every feed with the configured options using a worker
// pool. Results come back keyed by feed ID; a feed listed twice is read
// once. A failed feed does not stop the others; the returned error counts
// failures and wraps the first one, and the map still holds every
// successful read.
func (bf *BatchFetcher) FetchFeeds(ctx context.Context, feedIDs []string) (map[string][]models.FeedItem, error) {
	start := time.Now()
	feedIDs = uniqueIDs(feedIDs)
	results := make(map[string][]models.FeedItem, len(feedIDs))
	if len(feedIDs) == 0 {
		return results, nil
	}

	workers := bf.config.MaxConcurrency
	if workers > len(feedIDs) {
		workers = len(feedIDs)
	}

	queue := make(chan string, len(feedIDs))
	for _, id := range feedIDs {
		queue <- id
	}
	close(queue)

	feedResults := make(chan FeedResult, len(feedIDs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go bf.worker(ctx, queue, feedResults, &wg, i)
	}

	go func() {
		wg.Wait()
		close(feedResults)
	}()

	var firstErr error
	failed, received := 0, 0
	for result := range feedResults {
		received++
		if result.Error != nil {
			failed++
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		results[result.FeedID] = result.Items
	}

	// Feeds never picked up because the context ended count as failed.
	if missing := len(feedIDs) - received; missing > 0 {
		failed += missing
		if firstErr == nil {
			firstErr = ctx.Err()
		}
		if firstErr == nil {
			firstErr = errors.New("feed reads were not attempted")
		}
	}

	log.Info().
		Int("feeds", len(feedIDs)).
		Int("failed", failed).
		Int("workers", workers).
		Dur("duration", time.Since(start)).
		Msg("Feed fetch complete")

	if failed > 0 {
		return results, fmt.Errorf("%d of %d feed reads failed (partial data): %w", failed, len(feedIDs), firstErr)
	}
	return results, nil
}

// uniqueIDs drops repeated feed IDs, keeping first-seen order.
func uniqueIDs(feedIDs []string) []string {
	seen := make(map[string]struct{}, len(feedIDs))
	unique := make([]string, 0, len(feedIDs))
	for _, id := range feedIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// worker reads feeds from the queue
func (bf *BatchFetcher) worker(ctx context.Context, queue <-chan string, results chan<- FeedResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for feedID := range queue {
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("feeds_processed", processed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		readCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
		items, err := bf.reader.ReadItemsWithOptions(readCtx, feedID, bf.config.Options)
		cancel()

		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Str("feed_id", feedID).
				Msg("Feed read failed")
		}

		// Buffered for every feed, never blocks.
		results <- FeedResult{FeedID: feedID, Items: items, Error: err}
		processed++
	}

	if processed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("feeds_processed", processed).
			Msg("Worker completed")
	}
}
