package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/siftlab/sift/internal/cache"
	"github.com/siftlab/sift/internal/model"
)

func TestDedupe(t *testing.T) {
	items := []model.EvidenceItem{
		{Title: "first", URL: "https://example.com/page/"},
		{Title: "dup", URL: "https://example.com/page"},
		{Title: "fragment dup", URL: "https://example.com/page#section"},
		{Title: "no url"},
		{Title: "other", URL: "https://other.org/a"},
	}

	unique := Dedupe(items)
	if len(unique) != 2 {
		t.Fatalf("Expected 2 unique items, got %d", len(unique))
	}
	if unique[0].Title != "first" {
		t.Errorf("First occurrence should win, got %q", unique[0].Title)
	}
	if unique[0].URL != "https://example.com/page" {
		t.Errorf("Kept item should carry the normalized URL, got %q", unique[0].URL)
	}
	if unique[1].URL != "https://other.org/a" {
		t.Errorf("Unexpected second item URL: %q", unique[1].URL)
	}
}

func TestPromoteWhitelistedCapped(t *testing.T) {
	items := []model.EvidenceItem{
		{URL: "https://example.com/1"},
		{URL: "https://altnews.in/a"},
		{URL: "https://example.com/2"},
		{URL: "https://boomlive.in/b"},
		{URL: "https://factly.in/c"},
		{URL: "https://pib.gov.in/d"},
	}

	out := promoteWhitelistedCapped(items, 3)
	if len(out) != len(items) {
		t.Fatalf("Nothing should be dropped, got %d of %d", len(out), len(items))
	}
	for i, want := range []string{"https://altnews.in/a", "https://boomlive.in/b", "https://factly.in/c"} {
		if out[i].URL != want {
			t.Errorf("Slot %d = %q, want %q", i, out[i].URL, want)
		}
	}
	// The fourth whitelisted item stays in arrival order with the rest.
	if out[3].URL != "https://example.com/1" || out[5].URL != "https://pib.gov.in/d" {
		t.Errorf("Overflow ordering wrong: %q, %q", out[3].URL, out[5].URL)
	}
}

func TestRetriever_MergesAndDedupes(t *testing.T) {
	noSleep(t)

	fcServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(factCheckBody))
	}))
	defer fcServer.Close()

	wsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [
			{"title": "Review", "link": "https://sciencefeedback.co/claim-review/vaccines-autism/", "snippet": "dup of fact check"},
			{"title": "Coverage", "link": "https://example.com/news", "snippet": "coverage"}
		]}`))
	}))
	defer wsServer.Close()

	fc := NewFactCheckClient("k", fcServer.URL, time.Second, zap.NewNop())
	ws := NewWebSearchClient("k", "cx", wsServer.URL, time.Second, zap.NewNop())
	retriever := NewRetriever(fc, ws, nil, 0, zap.NewNop())

	// Four queries given, only three used.
	got := retriever.Retrieve(context.Background(), []string{"q1", "q2", "q3", "q4"})

	if !got.FactCheckHit {
		t.Error("FactCheckHit should be set")
	}
	// 3 queries x (1 fact check + 2 web) accumulate; the dedup batch keeps
	// one entry per URL, and the trailing-slash variant collapses too.
	if len(got.All) != 9 {
		t.Errorf("Expected 9 raw items, got %d", len(got.All))
	}
	if len(got.Items) != 2 {
		t.Fatalf("Expected 2 deduped items, got %d", len(got.Items))
	}
	if got.Items[0].Source != model.SourceFactCheckAPI {
		t.Errorf("First occurrence should win, got source %s", got.Items[0].Source)
	}
}

func TestRetriever_CachesPerQuery(t *testing.T) {
	noSleep(t)

	var wsHits int
	wsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wsHits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fmt.Sprintf(
			`{"items": [{"title": "t", "link": "https://example.com/%d", "snippet": "s"}]}`, wsHits)))
	}))
	defer wsServer.Close()

	fc := NewFactCheckClient("", "", time.Second, zap.NewNop()) // disabled
	ws := NewWebSearchClient("k", "cx", wsServer.URL, time.Second, zap.NewNop())
	retriever := NewRetriever(fc, ws, cache.NewMemoryCache(time.Minute, 5*time.Minute), time.Minute, zap.NewNop())

	first := retriever.Retrieve(context.Background(), []string{"same query"})
	second := retriever.Retrieve(context.Background(), []string{"same query"})

	if wsHits != 1 {
		t.Errorf("Second retrieval should hit the cache, got %d upstream calls", wsHits)
	}
	if len(first.Items) != 1 || len(second.Items) != 1 || first.Items[0].URL != second.Items[0].URL {
		t.Errorf("Cached retrieval should match: %v vs %v", first.Items, second.Items)
	}
}

func TestRetriever_EmptyResultsNotCached(t *testing.T) {
	noSleep(t)

	var wsHits int
	wsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wsHits++
		if wsHits == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [{"title": "t", "link": "https://example.com/a", "snippet": "s"}]}`))
	}))
	defer wsServer.Close()

	fc := NewFactCheckClient("", "", time.Second, zap.NewNop())
	ws := NewWebSearchClient("k", "cx", wsServer.URL, time.Second, zap.NewNop())
	retriever := NewRetriever(fc, ws, cache.NewMemoryCache(time.Minute, 5*time.Minute), time.Minute, zap.NewNop())

	if got := retriever.Retrieve(context.Background(), []string{"q"}); len(got.Items) != 0 {
		t.Fatalf("First retrieval should be empty, got %d", len(got.Items))
	}
	if got := retriever.Retrieve(context.Background(), []string{"q"}); len(got.Items) != 1 {
		t.Errorf("Failure must not be pinned in the cache, got %d items", len(got.Items))
	}
}
