package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/yupdates/yupdates-sdk-go/pkg/client"
	"github.com/yupdates/yupdates-sdk-go/pkg/metrics"
	"github.com/yupdates/yupdates-sdk-go/pkg/models"
	"github.com/yupdates/yupdates-sdk-go/pkg/pagination"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// pingCommand checks the token. The client never retries on its own;
// -retries opts into retrying transport failures and 5XX responses here.
func pingCommand(ctx context.Context, c *client.Client, args []string, _ io.Reader, out io.Writer) error {
	fs := newFlagSet("ping")
	retries := fs.Uint64("retries", 0, "retry transport failures and 5XX responses this many times")
	backoff := fs.Duration("backoff", 500*time.Millisecond, "initial backoff between retries")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	b := retry.WithMaxRetries(*retries, retry.NewExponential(*backoff))

	var resp client.PingResponse
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		resp, err = c.Ping(ctx)
		if retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return err
	}

	return writeJSON(out, resp)
}

// retryable reports whether repeating the same call could succeed.
func retryable(err error) bool {
	var e *client.Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case client.KindTransport:
		return true
	case client.KindHTTPCode, client.KindDetailedHTTPCode:
		return e.StatusCode >= 500
	default:
		return false
	}
}

func readCommand(ctx context.Context, c *client.Client, args []string, _ io.Reader, out io.Writer) error {
	fs := newFlagSet("read")
	maxItems := fs.Int("max", client.DefaultMaxItems, "items per read (1 to 50, 1 to 10 with -content)")
	content := fs.Bool("content", false, "include item content and associated files")
	after := fs.String("after", "", "only items after this item time")
	before := fs.String("before", "", "only items before this item time")
	all := fs.Bool("all", false, "keep reading pages until the feed is exhausted")
	limit := fs.Int("limit", 0, "with -all, stop after this many items (0 means no limit)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("read needs exactly one FEED_ID")
	}
	feedID := fs.Arg(0)

	if !*all {
		items, err := c.ReadItemsWithOptions(ctx, feedID, client.ReadOptions{
			MaxItems:           *maxItems,
			IncludeItemContent: *content,
			ItemTimeAfter:      *after,
			ItemTimeBefore:     *before,
		})
		if err != nil {
			return err
		}
		return writeJSON(out, items)
	}

	if *after != "" && *before != "" {
		return usageError("-after and -before cannot be combined")
	}

	pager := pagination.NewPager(c, feedID, *maxItems, *content)
	switch {
	case *after != "":
		pager.From(*after)
	case *before != "":
		pager.Before(*before)
	}

	items, err := pager.All(ctx, *limit)
	if err != nil {
		return err
	}
	return writeJSON(out, items)
}

func addCommand(ctx context.Context, c *client.Client, args []string, in io.Reader, out io.Writer) error {
	fs := newFlagSet("add")
	delay := fs.Duration("delay", time.Second, "pause between chunks of 10 items (5ms or more)")
	stats := fs.Bool("stats", false, "print client metrics after the submission")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("add needs exactly one FILE (or - for stdin)")
	}

	src := in
	if path := fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	var items []models.InputItem
	if err := json.NewDecoder(src).Decode(&items); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}

	feedID, err := c.NewItemsAll(ctx, items, *delay)
	if err != nil {
		return err
	}

	result := map[string]any{"feed_id": feedID, "items": len(items)}
	if *stats {
		samples, err := metrics.Snapshot(metrics.Gatherer)
		if err != nil {
			return err
		}
		summary := make(map[string]float64, len(samples))
		for _, s := range samples {
			summary[s.Name] = s.Value
		}
		result["metrics"] = summary
	}

	return writeJSON(out, result)
}

func fetchCommand(ctx context.Context, c *client.Client, args []string, _ io.Reader, out io.Writer) error {
	fs := newFlagSet("fetch")
	maxItems := fs.Int("max", client.DefaultMaxItems, "items per feed (1 to 50)")
	workers := fs.Int("workers", 4, "feeds read in parallel")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError("fetch needs at least one FEED_ID")
	}

	cfg := pagination.DefaultConfig()
	cfg.MaxConcurrency = *workers
	cfg.Options = client.ReadOptions{MaxItems: *maxItems}

	byFeed, err := pagination.NewBatchFetcher(c, cfg).FetchFeeds(ctx, fs.Args())
	if writeErr := writeJSON(out, byFeed); writeErr != nil {
		return writeErr
	}
	return err
}
