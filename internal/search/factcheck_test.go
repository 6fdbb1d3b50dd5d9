package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func noSleep(t *testing.T) {
	t.Helper()
	orig := factCheckSleep
	factCheckSleep = func(time.Duration) {}
	t.Cleanup(func() { factCheckSleep = orig })
}

const factCheckBody = `{
	"claims": [
		{
			"text": "COVID-19 vaccines cause autism",
			"claimant": "social media post",
			"claimReview": [
				{
					"publisher": {"name": "Science Feedback", "site": "sciencefeedback.co"},
					"url": "https://sciencefeedback.co/claim-review/vaccines-autism",
					"textualRating": "False"
				}
			]
		}
	]
}`

func TestFactCheckClient_LadderReachesThirdRung(t *testing.T) {
	noSleep(t)

	var requests []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requests = append(requests, map[string]string{
			"query":      q.Get("query"),
			"pageSize":   q.Get("pageSize"),
			"maxAgeDays": q.Get("maxAgeDays"),
		})
		if len(requests) < 3 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(factCheckBody))
	}))
	defer server.Close()

	client := NewFactCheckClient("test-key", server.URL, time.Second, zap.NewNop())
	items := client.Search(context.Background(), "vaccines are the cause of autism", 5)

	if len(items) != 1 {
		t.Fatalf("Expected 1 item from third rung, got %d", len(items))
	}
	if items[0].URL != "https://sciencefeedback.co/claim-review/vaccines-autism" {
		t.Errorf("Unexpected item URL: %s", items[0].URL)
	}
	if len(requests) != 3 {
		t.Fatalf("Expected 3 attempts, got %d", len(requests))
	}

	// Rung 1: recency filter on. Rung 2: filter removed. Rung 3:
	// stop-word-stripped query with reduced result count.
	if requests[0]["maxAgeDays"] != "365" {
		t.Errorf("Rung 1 should carry the date filter, got %q", requests[0]["maxAgeDays"])
	}
	if requests[1]["maxAgeDays"] != "" {
		t.Errorf("Rung 2 should drop the date filter, got %q", requests[1]["maxAgeDays"])
	}
	if requests[2]["query"] != "vaccines cause autism" {
		t.Errorf("Rung 3 should strip stop words, got %q", requests[2]["query"])
	}
	if requests[2]["pageSize"] != "3" {
		t.Errorf("Rung 3 should reduce the result count, got %q", requests[2]["pageSize"])
	}
}

func TestFactCheckClient_AllForbiddenReturnsEmpty(t *testing.T) {
	noSleep(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewFactCheckClient("test-key", server.URL, time.Second, zap.NewNop())
	if items := client.Search(context.Background(), "anything at all", 5); len(items) != 0 {
		t.Errorf("Expected empty result, got %d items", len(items))
	}
}

func TestFactCheckClient_ServiceUnavailableRetriesRung(t *testing.T) {
	noSleep(t)

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(factCheckBody))
	}))
	defer server.Close()

	client := NewFactCheckClient("test-key", server.URL, time.Second, zap.NewNop())
	items := client.Search(context.Background(), "vaccines cause autism", 5)

	if len(items) != 1 {
		t.Fatalf("Expected 1 item after 503 retry, got %d", len(items))
	}
	if hits != 2 {
		t.Errorf("Expected the same rung retried once after 503, got %d hits", hits)
	}
}

func TestFactCheckClient_ServerErrorAdvancesLadder(t *testing.T) {
	noSleep(t)

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewFactCheckClient("test-key", server.URL, time.Second, zap.NewNop())
	if items := client.Search(context.Background(), "some claim text", 5); len(items) != 0 {
		t.Errorf("Expected empty result, got %d items", len(items))
	}
	if hits != 3 {
		t.Errorf("Expected one attempt per rung, got %d", hits)
	}
}

func TestFactCheckClient_NoKeyDisabled(t *testing.T) {
	client := NewFactCheckClient("", "", time.Second, zap.NewNop())
	if items := client.Search(context.Background(), "query", 5); items != nil {
		t.Errorf("Expected nil for disabled client, got %v", items)
	}
}

func TestSimplifyQuery(t *testing.T) {
	if got := simplifyQuery("the moon is made of cheese"); got != "moon made cheese" {
		t.Errorf("simplifyQuery = %q, want 'moon made cheese'", got)
	}
	// Nothing but stop words falls back to the original.
	if got := simplifyQuery("is the that"); got != "is the that" {
		t.Errorf("simplifyQuery = %q, want original", got)
	}
}
