// Package testutil provides testing utilities for the Yupdates client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yupdates/yupdates-sdk-go/pkg/itemtime"
	"github.com/yupdates/yupdates-sdk-go/pkg/models"
)

// Fixed identifiers used by the mock.
const (
	TestToken  = "test-feed-token"
	TestFeedID = "02fb24a4478462a4491067224b66d9a8b2338ddca2737"
)

// MockResponse defines a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockYupdates is an in-memory stand-in for the Yupdates API. Items
// submitted to items/ can be read back from feeds/{feed_id}/ with the same
// ordering and exclusive item-time bounds as the real service.
type MockYupdates struct {
	server *httptest.Server
	mu     sync.RWMutex

	feedID    string
	items     []models.FeedItem // oldest first
	clockMs   uint64
	overrides map[string]MockResponse
	failAfter map[string]int

	// Tracking
	RequestCount      int
	Requests          map[string]int
	SubmittedChunks   []int
	LastRequestHeader http.Header
	LastQuery         map[string]string
}

// NewMockYupdates starts a mock server holding one empty feed.
func NewMockYupdates() *MockYupdates {
	mock := &MockYupdates{
		feedID:    TestFeedID,
		clockMs:   1661564013555,
		overrides: make(map[string]MockResponse),
		failAfter: make(map[string]int),
		Requests:  make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the API base URL (with trailing slash).
func (m *MockYupdates) URL() string {
	return m.server.URL + "/api/v0/"
}

// Close shuts down the mock server.
func (m *MockYupdates) Close() {
	m.server.Close()
}

// SetFeedID changes the feed ID returned by subsequent submissions.
func (m *MockYupdates) SetFeedID(feedID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedID = feedID
}

// SetResponse makes every request to path (relative to the base URL, e.g.
// "ping/") return resp instead of the simulated behavior.
func (m *MockYupdates) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[path] = resp
}

// FailAfter lets n requests to path succeed, then answers the rest with resp.
func (m *MockYupdates) FailAfter(path string, n int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter[path] = n
	m.overrides[path] = resp
}

// GetRequestCount returns the number of requests made to path.
func (m *MockYupdates) GetRequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Requests[path]
}

// GetSubmittedChunks returns the item count of every accepted submission.
func (m *MockYupdates) GetSubmittedChunks() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.SubmittedChunks...)
}

// TotalRequests returns the number of requests made to any path.
func (m *MockYupdates) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// LastHeader returns a header of the most recent request.
func (m *MockYupdates) LastHeader(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader.Get(name)
}

// LastQueryValue returns a query parameter of the most recent request.
func (m *MockYupdates) LastQueryValue(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery[key]
}

// ItemCount returns the number of stored items.
func (m *MockYupdates) ItemCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MockYupdates) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v0/")

	m.mu.Lock()
	m.RequestCount++
	m.Requests[path]++
	m.LastRequestHeader = r.Header.Clone()
	m.LastQuery = map[string]string{}
	for key := range r.URL.Query() {
		m.LastQuery[key] = r.URL.Query().Get(key)
	}
	override, hasOverride := m.overrides[path]
	if remaining, ok := m.failAfter[path]; ok && remaining > 0 {
		m.failAfter[path] = remaining - 1
		hasOverride = false
	}
	m.mu.Unlock()

	if hasOverride {
		if override.Delay > 0 {
			select {
			case <-time.After(override.Delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(override.StatusCode)
		w.Write([]byte(override.Body))
		return
	}

	if r.Header.Get("X-Auth-Token") != TestToken {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"code":         http.StatusUnauthorized,
			"error":        "unauthorized",
			"error_detail": "invalid API token",
		})
		return
	}

	switch {
	case path == "ping/" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"code": 200, "message": "pong"})
	case path == "items/" && r.Method == http.MethodPost:
		m.handleNewItems(w, r)
	case strings.HasPrefix(path, "feeds/") && r.Method == http.MethodGet:
		m.handleReadItems(w, r, strings.Trim(strings.TrimPrefix(path, "feeds/"), "/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"code": 404, "error": "not found"})
	}
}

func (m *MockYupdates) handleNewItems(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []models.InputItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code": 400, "error": "bad request", "error_detail": err.Error(),
		})
		return
	}
	if len(body.Items) > 10 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "error": "too many items"})
		return
	}

	m.mu.Lock()
	m.clockMs++
	for i, in := range body.Items {
		t := itemtime.ItemTime{Base: m.clockMs, Slot: uint64(i)}
		content := in.Content
		m.items = append(m.items, models.FeedItem{
			FeedID:          m.feedID,
			ItemID:          fmt.Sprintf("item-%d", len(m.items)+1),
			InputID:         fmt.Sprintf("input-%d", len(m.items)+1),
			Title:           in.Title,
			Content:         &content,
			CanonicalURL:    in.CanonicalURL,
			ItemTime:        t.String(),
			ItemTimeMs:      t.Base,
			AssociatedFiles: in.AssociatedFiles,
		})
	}
	m.SubmittedChunks = append(m.SubmittedChunks, len(body.Items))
	feedID := m.feedID
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"code":    200,
		"feed_id": feedID,
		"message": fmt.Sprintf("added %d items", len(body.Items)),
	})
}

func (m *MockYupdates) handleReadItems(w http.ResponseWriter, r *http.Request, feedID string) {
	q := r.URL.Query()

	maxItems, err := strconv.Atoi(q.Get("max_items"))
	if err != nil || maxItems < 1 || maxItems > 50 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "error": "invalid max_items"})
		return
	}
	withContent := q.Get("include_item_content") == "true"
	after, before := q.Get("item_time_after"), q.Get("item_time_before")

	m.mu.RLock()
	if feedID != m.feedID {
		m.mu.RUnlock()
		writeJSON(w, http.StatusNotFound, map[string]any{"code": 404, "error": "feed not found"})
		return
	}
	stored := append([]models.FeedItem(nil), m.items...)
	m.mu.RUnlock()

	// Canonical item times compare correctly as strings.
	sort.Slice(stored, func(i, j int) bool { return stored[i].ItemTime < stored[j].ItemTime })

	var page []models.FeedItem
	switch {
	case after != "":
		// The items closest to the cursor, newest first.
		for _, item := range stored {
			if item.ItemTime > after && len(page) < maxItems {
				page = append(page, item)
			}
		}
		reverse(page)
	default:
		for i := len(stored) - 1; i >= 0 && len(page) < maxItems; i-- {
			if before == "" || stored[i].ItemTime < before {
				page = append(page, stored[i])
			}
		}
	}

	out := make([]models.FeedItem, 0, len(page))
	for _, item := range page {
		if !withContent {
			item.Content = nil
			item.AssociatedFiles = nil
		}
		out = append(out, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{"code": 200, "feed_items": out})
}

func reverse(items []models.FeedItem) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// TestItems builds n distinct input items; odd ones carry an associated file.
func TestItems(n int) []models.InputItem {
	items := make([]models.InputItem, 0, n)
	for i := 0; i < n; i++ {
		item := models.InputItem{
			Title:        fmt.Sprintf("title-%d", i),
			Content:      fmt.Sprintf("content-%d", i),
			CanonicalURL: fmt.Sprintf("https://www.example.com/%d", i),
		}
		if i%2 == 1 {
			item.AssociatedFiles = []models.AssociatedFile{{
				URL:     fmt.Sprintf("https://www.example.com/file-%d", i),
				Length:  1234,
				TypeStr: "audio/mpeg",
			}}
		}
		items = append(items, item)
	}
	return items
}
