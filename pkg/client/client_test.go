package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yupdates/yupdates-sdk-go/internal/testutil"
	"github.com/yupdates/yupdates-sdk-go/pkg/cache"
	"github.com/yupdates/yupdates-sdk-go/pkg/config"
	"github.com/yupdates/yupdates-sdk-go/pkg/models"
)

// countingDoer counts calls and fails every one of them.
type countingDoer struct {
	calls atomic.Int32
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return nil, errors.New("network disabled")
}

// setupTestClient starts a mock API and a client pointed at it.
func setupTestClient(t *testing.T) (*Client, *testutil.MockYupdates) {
	t.Helper()

	mock := testutil.NewMockYupdates()
	t.Cleanup(mock.Close)

	c, err := New(Config{BaseURL: mock.URL(), Token: testutil.TestToken})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, mock
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		wantBaseURL string
	}{
		{
			name:        "valid config",
			config:      Config{BaseURL: "https://feeds.yupdates.com/api/v0/", Token: "abc"},
			wantBaseURL: "https://feeds.yupdates.com/api/v0/",
		},
		{
			name:        "trailing slash added",
			config:      Config{BaseURL: "http://localhost:8080/api/v0", Token: "abc"},
			wantBaseURL: "http://localhost:8080/api/v0/",
		},
		{
			name:        "default base URL",
			config:      Config{Token: "abc"},
			wantBaseURL: "https://feeds.yupdates.com/api/v0/",
		},
		{
			name:        "missing token",
			config:      Config{BaseURL: "https://feeds.yupdates.com/api/v0/"},
			expectError: true,
		},
		{
			name:        "base URL without scheme",
			config:      Config{BaseURL: "feeds.yupdates.com/api/v0/", Token: "abc"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !IsKind(err, KindConfig) {
					t.Errorf("error kind = %v, want config", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.BaseURL() != tt.wantBaseURL {
				t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), tt.wantBaseURL)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("abc")

	if cfg.Token != "abc" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.BaseURL != "https://feeds.yupdates.com/api/v0/" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent should not be empty")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.StrictFeedID {
		t.Error("StrictFeedID should be off by default")
	}
}

func TestNewFromConfig(t *testing.T) {
	mock := testutil.NewMockYupdates()
	defer mock.Close()

	c, err := NewFromConfig(config.Env{
		APIToken:    testutil.TestToken,
		APIURL:      mock.URL(),
		HTTPTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if c.cache != nil {
		t.Error("cache set without a Redis URL")
	}
	if _, err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if got := mock.LastHeader(AuthTokenHeader); got != testutil.TestToken {
		t.Errorf("%s = %q, want %q", AuthTokenHeader, got, testutil.TestToken)
	}
}

func TestNewFromConfig_InvalidRedisURL(t *testing.T) {
	_, err := NewFromConfig(config.Env{
		APIToken: testutil.TestToken,
		APIURL:   config.DefaultAPIURL,
		RedisURL: "not-a-redis-url",
	})
	if !IsKind(err, KindConfig) {
		t.Fatalf("NewFromConfig() error = %v, want config error", err)
	}
	if !strings.Contains(err.Error(), config.EnvRedisURL) {
		t.Errorf("error %q does not name %s", err, config.EnvRedisURL)
	}
}

func TestClient_Ping(t *testing.T) {
	c, mock := setupTestClient(t)

	resp, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if resp.Code != 200 || resp.Message != "pong" {
		t.Errorf("Ping() = %+v", resp)
	}
	if !c.PingBool(context.Background()) {
		t.Error("PingBool() = false, want true")
	}

	if got := mock.LastHeader(AuthTokenHeader); got != testutil.TestToken {
		t.Errorf("%s = %q, want %q", AuthTokenHeader, got, testutil.TestToken)
	}
	if got := mock.LastHeader("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	mock := testutil.NewMockYupdates()
	defer mock.Close()

	c, err := New(Config{BaseURL: mock.URL(), Token: "wrong-token"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Ping(context.Background())

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Ping() error = %v, want *Error", err)
	}
	if e.Kind != KindDetailedHTTPCode || e.StatusCode != http.StatusUnauthorized {
		t.Errorf("error = %+v, want detailed 401", e)
	}
	if e.Message != "unauthorized | invalid API token" {
		t.Errorf("Message = %q", e.Message)
	}
	if c.PingBool(context.Background()) {
		t.Error("PingBool() = true, want false")
	}
}

func TestClient_ServerErrors(t *testing.T) {
	tests := []struct {
		name     string
		resp     testutil.MockResponse
		wantKind Kind
		wantCode int
	}{
		{
			name:     "html 500",
			resp:     testutil.MockResponse{StatusCode: 500, Body: "<html>oops</html>"},
			wantKind: KindHTTPCode,
			wantCode: 500,
		},
		{
			name:     "structured 404",
			resp:     testutil.MockResponse{StatusCode: 404, Body: `{"error":"not found"}`},
			wantKind: KindDetailedHTTPCode,
			wantCode: 404,
		},
		{
			name:     "200 with wrong shape",
			resp:     testutil.MockResponse{StatusCode: 200, Body: `{"message":"pong"}`},
			wantKind: KindDeserialization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := setupTestClient(t)
			mock.SetResponse("ping/", tt.resp)

			_, err := c.Ping(context.Background())

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("Ping() error = %v, want *Error", err)
			}
			if e.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.wantKind)
			}
			if e.StatusCode != tt.wantCode {
				t.Errorf("StatusCode = %d, want %d", e.StatusCode, tt.wantCode)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	doer := &countingDoer{}
	c, err := New(Config{BaseURL: "http://127.0.0.1:1/api/v0/", Token: "abc", HTTPClient: doer})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Ping(context.Background())
	if !IsKind(err, KindTransport) {
		t.Fatalf("Ping() error = %v, want transport", err)
	}
	if doer.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", doer.calls.Load())
	}
}

func TestClient_NewItems(t *testing.T) {
	c, mock := setupTestClient(t)

	resp, err := c.NewItems(context.Background(), testutil.TestItems(3))
	if err != nil {
		t.Fatalf("NewItems() error = %v", err)
	}
	if resp.FeedID != testutil.TestFeedID {
		t.Errorf("FeedID = %q, want %q", resp.FeedID, testutil.TestFeedID)
	}
	if mock.ItemCount() != 3 {
		t.Errorf("ItemCount() = %d, want 3", mock.ItemCount())
	}
	if got := mock.LastHeader("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestClient_NewItems_Empty(t *testing.T) {
	c, mock := setupTestClient(t)

	resp, err := c.NewItems(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewItems(nil) error = %v", err)
	}
	if resp.FeedID != testutil.TestFeedID {
		t.Errorf("FeedID = %q", resp.FeedID)
	}
	if mock.ItemCount() != 0 {
		t.Errorf("ItemCount() = %d, want 0", mock.ItemCount())
	}
}

func TestClient_NewItems_TooMany(t *testing.T) {
	doer := &countingDoer{}
	c, err := New(Config{BaseURL: "https://feeds.yupdates.com/api/v0/", Token: "abc", HTTPClient: doer})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.NewItems(context.Background(), testutil.TestItems(11))
	if !IsKind(err, KindIllegalParameter) {
		t.Fatalf("NewItems(11) error = %v, want illegal parameter", err)
	}
	if !strings.Contains(err.Error(), "too many items (11)") {
		t.Errorf("error = %q", err.Error())
	}
	if doer.calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", doer.calls.Load())
	}
}

func TestClient_NewItemsAll_Chunks(t *testing.T) {
	tests := []struct {
		name       string
		items      int
		wantChunks []int
	}{
		{name: "one partial chunk", items: 3, wantChunks: []int{3}},
		{name: "exactly one chunk", items: 10, wantChunks: []int{10}},
		{name: "one over", items: 11, wantChunks: []int{10, 1}},
		{name: "twenty four", items: 24, wantChunks: []int{10, 10, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := setupTestClient(t)

			feedID, err := c.NewItemsAll(context.Background(), testutil.TestItems(tt.items), 5*time.Millisecond)
			if err != nil {
				t.Fatalf("NewItemsAll() error = %v", err)
			}
			if feedID != testutil.TestFeedID {
				t.Errorf("feedID = %q", feedID)
			}

			chunks := mock.GetSubmittedChunks()
			if len(chunks) != len(tt.wantChunks) {
				t.Fatalf("chunks = %v, want %v", chunks, tt.wantChunks)
			}
			for i := range chunks {
				if chunks[i] != tt.wantChunks[i] {
					t.Errorf("chunks = %v, want %v", chunks, tt.wantChunks)
					break
				}
			}
			if mock.ItemCount() != tt.items {
				t.Errorf("ItemCount() = %d, want %d", mock.ItemCount(), tt.items)
			}
		})
	}
}

func TestClient_NewItemsAll_Pacing(t *testing.T) {
	c, _ := setupTestClient(t)

	delay := 20 * time.Millisecond
	start := time.Now()
	if _, err := c.NewItemsAll(context.Background(), testutil.TestItems(30), delay); err != nil {
		t.Fatalf("NewItemsAll() error = %v", err)
	}

	// Three chunks, two pauses.
	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Errorf("elapsed = %v, want at least %v", elapsed, 2*delay)
	}
}

func TestClient_NewItemsAll_NoItems(t *testing.T) {
	c, mock := setupTestClient(t)

	_, err := c.NewItemsAll(context.Background(), nil, 5*time.Millisecond)
	if !IsKind(err, KindIllegalResult) {
		t.Fatalf("NewItemsAll(nil) error = %v, want illegal result", err)
	}
	if mock.TotalRequests() != 0 {
		t.Errorf("requests = %d, want 0", mock.TotalRequests())
	}
}

func TestClient_NewItemsAll_ShortDelay(t *testing.T) {
	c, mock := setupTestClient(t)

	_, err := c.NewItemsAll(context.Background(), testutil.TestItems(5), 4*time.Millisecond)
	if !IsKind(err, KindIllegalParameter) {
		t.Fatalf("NewItemsAll() error = %v, want illegal parameter", err)
	}
	if mock.TotalRequests() != 0 {
		t.Errorf("requests = %d, want 0", mock.TotalRequests())
	}
}

func TestClient_NewItemsAll_AbortsOnFailure(t *testing.T) {
	c, mock := setupTestClient(t)
	mock.FailAfter("items/", 1, testutil.MockResponse{
		StatusCode: 503,
		Body:       `{"code":503,"error":"unavailable"}`,
	})

	_, err := c.NewItemsAll(context.Background(), testutil.TestItems(35), 5*time.Millisecond)

	var e *Error
	if !errors.As(err, &e) || e.Kind != KindDetailedHTTPCode || e.StatusCode != 503 {
		t.Fatalf("NewItemsAll() error = %v, want detailed 503", err)
	}

	// The first chunk stays accepted and nothing after the failure is sent.
	if got := mock.GetSubmittedChunks(); len(got) != 1 || got[0] != 10 {
		t.Errorf("chunks = %v, want [10]", got)
	}
	if got := mock.GetRequestCount("items/"); got != 2 {
		t.Errorf("items/ requests = %d, want 2", got)
	}
}

// feedSwitcher changes the mock's feed ID after the first submission.
type feedSwitcher struct {
	next Doer
	mock *testutil.MockYupdates
	sent int
}

func (d *feedSwitcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	d.sent++
	if d.sent == 1 {
		d.mock.SetFeedID("02fb24a4478462a4491067224b66d9a8b2338ddcXXXXX")
	}
	return resp, err
}

func TestClient_NewItemsAll_FeedIDMismatch(t *testing.T) {
	tests := []struct {
		name      string
		strict    bool
		expectErr bool
	}{
		{name: "lenient", strict: false},
		{name: "strict", strict: true, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockYupdates()
			defer mock.Close()

			c, err := New(Config{
				BaseURL:      mock.URL(),
				Token:        testutil.TestToken,
				HTTPClient:   &feedSwitcher{next: http.DefaultClient, mock: mock},
				StrictFeedID: tt.strict,
			})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			feedID, err := c.NewItemsAll(context.Background(), testutil.TestItems(20), 5*time.Millisecond)

			if tt.expectErr {
				if !IsKind(err, KindIllegalResult) {
					t.Fatalf("NewItemsAll() error = %v, want illegal result", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewItemsAll() error = %v", err)
			}
			if feedID != testutil.TestFeedID {
				t.Errorf("feedID = %q, want the first chunk's %q", feedID, testutil.TestFeedID)
			}
		})
	}
}

func TestClient_NewItemsAll_CancelledDuringPause(t *testing.T) {
	c, mock := setupTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.NewItemsAll(ctx, testutil.TestItems(15), 10*time.Second)

	if !IsKind(err, KindTransport) {
		t.Fatalf("NewItemsAll() error = %v, want transport", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error should wrap context.DeadlineExceeded: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("pause was not interrupted by the context")
	}
	if got := mock.GetSubmittedChunks(); len(got) != 1 {
		t.Errorf("chunks = %v, want one", got)
	}
}

func TestClient_ReadItems_FeedIDLength(t *testing.T) {
	doer := &countingDoer{}
	c, err := New(Config{BaseURL: "https://feeds.yupdates.com/api/v0/", Token: "abc", HTTPClient: doer})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name   string
		feedID string
	}{
		{name: "empty", feedID: ""},
		{name: "short", feedID: "abc"},
		{name: "one too long", feedID: testutil.TestFeedID + "x"},
		{name: "whitespace only", feedID: strings.Repeat(" ", 45)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ReadItems(context.Background(), tt.feedID)
			if !IsKind(err, KindIllegalParameter) {
				t.Fatalf("ReadItems(%q) error = %v, want illegal parameter", tt.feedID, err)
			}
		})
	}

	if doer.calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", doer.calls.Load())
	}
}

func TestClient_ReadItems_InvalidOptionsSkipNetwork(t *testing.T) {
	doer := &countingDoer{}
	c, err := New(Config{BaseURL: "https://feeds.yupdates.com/api/v0/", Token: "abc", HTTPClient: doer})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.ReadItemsWithOptions(context.Background(), testutil.TestFeedID, ReadOptions{MaxItems: 51})
	if !IsKind(err, KindIllegalParameter) {
		t.Fatalf("error = %v, want illegal parameter", err)
	}
	if doer.calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", doer.calls.Load())
	}
}

func TestClient_ReadItems(t *testing.T) {
	c, mock := setupTestClient(t)
	ctx := context.Background()

	if _, err := c.NewItemsAll(ctx, testutil.TestItems(25), 5*time.Millisecond); err != nil {
		t.Fatalf("NewItemsAll() error = %v", err)
	}

	// Surrounding whitespace in the feed ID is tolerated.
	items, err := c.ReadItems(ctx, " "+testutil.TestFeedID+"\n")
	if err != nil {
		t.Fatalf("ReadItems() error = %v", err)
	}
	if len(items) != DefaultMaxItems {
		t.Fatalf("len(items) = %d, want %d", len(items), DefaultMaxItems)
	}
	if items[0].Title != "title-24" {
		t.Errorf("newest item = %q, want title-24", items[0].Title)
	}
	for _, item := range items {
		if item.Content != nil {
			t.Errorf("item %s has content without include_item_content", item.ItemID)
		}
	}

	if mock.LastQueryValue("max_items") != "10" || mock.LastQueryValue("include_item_content") != "false" {
		t.Errorf("max_items = %q, include_item_content = %q",
			mock.LastQueryValue("max_items"), mock.LastQueryValue("include_item_content"))
	}
}

func TestClient_ReadItems_WithContent(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	if _, err := c.NewItems(ctx, testutil.TestItems(2)); err != nil {
		t.Fatalf("NewItems() error = %v", err)
	}

	items, err := c.ReadItemsWithOptions(ctx, testutil.TestFeedID, ReadOptions{MaxItems: 10, IncludeItemContent: true})
	if err != nil {
		t.Fatalf("ReadItemsWithOptions() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Content == nil || *items[0].Content != "content-1" {
		t.Errorf("content = %v, want content-1", items[0].Content)
	}
	if len(items[0].AssociatedFiles) != 1 {
		t.Errorf("associated files = %v, want one", items[0].AssociatedFiles)
	}
}

func TestClient_ReadItems_Cursors(t *testing.T) {
	c, mock := setupTestClient(t)
	ctx := context.Background()

	if _, err := c.NewItemsAll(ctx, testutil.TestItems(30), 5*time.Millisecond); err != nil {
		t.Fatalf("NewItemsAll() error = %v", err)
	}

	latest, err := c.ReadItemsWithOptions(ctx, testutil.TestFeedID, ReadOptions{MaxItems: 5})
	if err != nil {
		t.Fatalf("read latest: %v", err)
	}
	cursor, err := latest[len(latest)-1].Cursor()
	if err != nil {
		t.Fatalf("Cursor() error = %v", err)
	}

	older, err := c.ReadItemsWithOptions(ctx, testutil.TestFeedID, ReadOptions{MaxItems: 5, ItemTimeBefore: cursor})
	if err != nil {
		t.Fatalf("read before: %v", err)
	}
	if got := mock.LastQueryValue("item_time_before"); got != cursor {
		t.Errorf("item_time_before = %q, want %q", got, cursor)
	}
	assertTitles(t, older, "title-24", "title-23", "title-22", "title-21", "title-20")

	// Reading forward from the oldest item seen returns the items closest to
	// it, still newest first.
	oldest, err := older[len(older)-1].Cursor()
	if err != nil {
		t.Fatalf("Cursor() error = %v", err)
	}
	newer, err := c.ReadItemsWithOptions(ctx, testutil.TestFeedID, ReadOptions{MaxItems: 3, ItemTimeAfter: oldest})
	if err != nil {
		t.Fatalf("read after: %v", err)
	}
	assertTitles(t, newer, "title-23", "title-22", "title-21")
}

func TestClient_ReadItems_LooseCursorNormalized(t *testing.T) {
	c, mock := setupTestClient(t)

	_, err := c.ReadItemsWithOptions(context.Background(), testutil.TestFeedID,
		ReadOptions{MaxItems: 5, ItemTimeAfter: "1661564013555.3"})
	if err != nil {
		t.Fatalf("ReadItemsWithOptions() error = %v", err)
	}
	if got := mock.LastQueryValue("item_time_after"); got != "1661564013555.00003" {
		t.Errorf("item_time_after = %q, want 1661564013555.00003", got)
	}
}

func TestClient_ReadItems_UnknownFeed(t *testing.T) {
	c, _ := setupTestClient(t)

	_, err := c.ReadItems(context.Background(), strings.Repeat("0", FeedIDLength))

	var e *Error
	if !errors.As(err, &e) || e.Kind != KindDetailedHTTPCode || e.StatusCode != 404 {
		t.Fatalf("ReadItems() error = %v, want detailed 404", err)
	}
}

func TestClient_ReadItems_Cache(t *testing.T) {
	mock := testutil.NewMockYupdates()
	defer mock.Close()

	manager, err := cache.NewManager(cache.Config{MemorySize: 16, MemoryTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	cfg := DefaultConfig(testutil.TestToken)
	cfg.BaseURL = mock.URL()
	cfg.Cache = manager
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if _, err := c.NewItems(ctx, testutil.TestItems(4)); err != nil {
		t.Fatalf("NewItems() error = %v", err)
	}

	first, err := c.ReadItems(ctx, testutil.TestFeedID)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := c.ReadItems(ctx, testutil.TestFeedID)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}

	if got := mock.GetRequestCount("feeds/" + testutil.TestFeedID + "/"); got != 1 {
		t.Errorf("feed requests = %d, want 1 (second read cached)", got)
	}
	if len(first) != len(second) || first[0].ItemID != second[0].ItemID {
		t.Errorf("cached read differs: %v vs %v", first, second)
	}

	// Different options are a different key.
	if _, err := c.ReadItemsWithOptions(ctx, testutil.TestFeedID, ReadOptions{MaxItems: 2}); err != nil {
		t.Fatalf("third read: %v", err)
	}
	if got := mock.GetRequestCount("feeds/" + testutil.TestFeedID + "/"); got != 2 {
		t.Errorf("feed requests = %d, want 2", got)
	}
}

func TestClient_ReadItems_ErrorsNotCached(t *testing.T) {
	mock := testutil.NewMockYupdates()
	defer mock.Close()

	manager, err := cache.NewManager(cache.Config{MemorySize: 16})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	cfg := DefaultConfig(testutil.TestToken)
	cfg.BaseURL = mock.URL()
	cfg.Cache = manager
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path := "feeds/" + testutil.TestFeedID + "/"
	mock.SetResponse(path, testutil.MockResponse{StatusCode: 500, Body: "boom"})

	for i := 0; i < 2; i++ {
		if _, err := c.ReadItems(context.Background(), testutil.TestFeedID); !IsKind(err, KindHTTPCode) {
			t.Fatalf("read %d error = %v, want http code", i, err)
		}
	}
	if got := mock.GetRequestCount(path); got != 2 {
		t.Errorf("feed requests = %d, want 2", got)
	}
}

func TestMetricLabel(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{endpoint: "ping/", want: "ping/"},
		{endpoint: "items/", want: "items/"},
		{endpoint: "feeds/" + testutil.TestFeedID + "/", want: "feeds/{feed_id}/"},
	}

	for _, tt := range tests {
		if got := metricLabel(tt.endpoint); got != tt.want {
			t.Errorf("metricLabel(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestChunkItems(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{n: 0, want: []int{}},
		{n: 1, want: []int{1}},
		{n: 10, want: []int{10}},
		{n: 21, want: []int{10, 10, 1}},
	}

	for _, tt := range tests {
		chunks := chunkItems(testutil.TestItems(tt.n), MaxItemsPerCall)
		if len(chunks) != len(tt.want) {
			t.Errorf("chunkItems(%d) = %d chunks, want %d", tt.n, len(chunks), len(tt.want))
			continue
		}
		for i, chunk := range chunks {
			if len(chunk) != tt.want[i] {
				t.Errorf("chunkItems(%d)[%d] has %d items, want %d", tt.n, i, len(chunk), tt.want[i])
			}
		}
	}
}

func assertTitles(t *testing.T, items []models.FeedItem, want ...string) {
	t.Helper()

	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i].Title != want[i] {
			t.Errorf("items[%d].Title = %q, want %q", i, items[i].Title, want[i])
		}
	}
}
