package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	orig := fetchSleep
	fetchSleep = func(time.Duration) {}
	t.Cleanup(func() { fetchSleep = orig })
	return NewFetcher(Options{Timeout: 2 * time.Second}, zap.NewNop())
}

const articlePage = `<!DOCTYPE html>
<html><head>
<title>Moon Landing Anniversary</title>
<meta name="description" content="Fifty years since Apollo 11.">
</head><body>
<nav>Home | News</nav>
<article>The Apollo 11 mission landed the first humans on the Moon in July 1969.
Neil Armstrong and Buzz Aldrin spent over two hours on the lunar surface.</article>
<footer>Copyright</footer>
</body></html>`

func TestFetcher_ExtractsArticle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer server.Close()

	content := newTestFetcher(t).Fetch(context.Background(), server.URL+"/story")
	if content == nil {
		t.Fatal("Expected content, got nil")
	}
	if content.Title != "Moon Landing Anniversary" {
		t.Errorf("Title = %q", content.Title)
	}
	if content.Description != "Fifty years since Apollo 11." {
		t.Errorf("Description = %q", content.Description)
	}
	if !strings.Contains(content.Text, "Apollo 11 mission") {
		t.Errorf("Text should come from the article element, got %q", content.Text)
	}
	if strings.Contains(content.Text, "Copyright") || strings.Contains(content.Text, "Home | News") {
		t.Errorf("Navigation and footer should be stripped, got %q", content.Text)
	}
	if !strings.Contains(content.RawHTML, "<article>") {
		t.Errorf("Raw markup should ride along with the extracted text, got %q", content.RawHTML)
	}
}

func TestFetcher_ThinArticleFallsThroughToCluster(t *testing.T) {
	// The article element holds only boilerplate under the 100-char cascade
	// threshold; the real story lives in a paragraph cluster below it.
	story := strings.Repeat("The investigation documented each of the disputed figures in detail. ", 4)
	page := `<html><head><title>t</title></head><body>
<article>Sign in to read the full story on our site.</article>
<div id="story">
<p>` + story + `</p>
<p>Officials confirmed the corrected numbers in a follow-up statement.</p>
</div>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	content := newTestFetcher(t).Fetch(context.Background(), server.URL+"/story")
	if content == nil {
		t.Fatal("Expected content, got nil")
	}
	if strings.Contains(content.Text, "Sign in to read") && !strings.Contains(content.Text, "disputed figures") {
		t.Fatalf("Thin article boilerplate won over the paragraph cluster: %q", content.Text)
	}
	if !strings.Contains(content.Text, "disputed figures") ||
		!strings.Contains(content.Text, "corrected numbers") {
		t.Errorf("Expected the paragraph cluster text, got %q", content.Text)
	}
}

func TestFetcher_ParagraphClusterFallback(t *testing.T) {
	page := `<html><head><title>t</title></head><body>
<div id="sidebar"><p>One short unrelated paragraph sits here alone.</p></div>
<div id="story">
<p>By Staff</p>
<p>The first substantial paragraph of the story carries most of the page's content.</p>
<p>The second substantial paragraph continues the reporting in useful detail.</p>
</div>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	content := newTestFetcher(t).Fetch(context.Background(), server.URL+"/page")
	if content == nil {
		t.Fatal("Expected content, got nil")
	}
	if !strings.Contains(content.Text, "first substantial paragraph") ||
		!strings.Contains(content.Text, "second substantial paragraph") {
		t.Errorf("Expected the densest paragraph cluster, got %q", content.Text)
	}
	if strings.Contains(content.Text, "unrelated paragraph") {
		t.Errorf("Sidebar cluster should lose to the story cluster, got %q", content.Text)
	}
}

func TestFetcher_ThinPageUsesMetadata(t *testing.T) {
	page := `<html><head><title>Vaccine Safety Review</title>
<meta name="description" content="An interactive chart of trial outcomes.">
</head><body><p>JS required.</p></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	content := newTestFetcher(t).Fetch(context.Background(), server.URL+"/chart")
	if content == nil {
		t.Fatal("Expected metadata fallback content, got nil")
	}
	if content.Text != "Vaccine Safety Review. An interactive chart of trial outcomes." {
		t.Errorf("Text = %q", content.Text)
	}
}

func TestFetcher_NotFoundReturnsNil(t *testing.T) {
	var pageHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			pageHits++
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	if content := newTestFetcher(t).Fetch(context.Background(), server.URL+"/missing"); content != nil {
		t.Errorf("Expected nil for 404, got %+v", content)
	}
	if pageHits != 1 {
		t.Errorf("Client errors should not be retried, got %d hits", pageHits)
	}
}

func TestFetcher_ServerErrorRetries(t *testing.T) {
	var pageHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		pageHits++
		if pageHits < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(articlePage))
	}))
	defer server.Close()

	content := newTestFetcher(t).Fetch(context.Background(), server.URL+"/flaky")
	if content == nil {
		t.Fatal("Expected content after retries, got nil")
	}
	if pageHits != 3 {
		t.Errorf("Expected 3 attempts, got %d", pageHits)
	}
}

func TestFetcher_InvalidURL(t *testing.T) {
	if content := newTestFetcher(t).Fetch(context.Background(), "not a url"); content != nil {
		t.Errorf("Expected nil for invalid URL, got %+v", content)
	}
}

func TestFetcher_RespectsRobots(t *testing.T) {
	var pageHits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		pageHits++
		_, _ = w.Write([]byte(articlePage))
	}))
	defer server.Close()

	if content := newTestFetcher(t).Fetch(context.Background(), server.URL+"/private/doc"); content != nil {
		t.Errorf("Expected nil for disallowed path, got %+v", content)
	}
	if pageHits != 0 {
		t.Errorf("Disallowed page should not be requested, got %d hits", pageHits)
	}
}

func TestFetcher_GarbagePDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("this is not a pdf"))
	}))
	defer server.Close()

	if content := newTestFetcher(t).Fetch(context.Background(), server.URL+"/report.pdf"); content != nil {
		t.Errorf("Expected nil for unparseable PDF, got %+v", content)
	}
}

func TestFetcher_FetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			http.NotFound(w, r)
		case "/good":
			_, _ = w.Write([]byte(articlePage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	urls := []string{server.URL + "/good", server.URL + "/bad", "not a url"}
	got := newTestFetcher(t).FetchAll(context.Background(), urls)

	if len(got) != 1 {
		t.Fatalf("Expected 1 successful fetch, got %d", len(got))
	}
	if _, ok := got[server.URL+"/good"]; !ok {
		t.Errorf("Missing content for the good URL: %v", got)
	}
}

func TestSubjectFromURL(t *testing.T) {
	cases := map[string]string{
		"https://example.gov/reports/annual-health-survey.pdf": "annual health survey",
		"https://example.com/":                                 "example.com",
		"https://example.com/wiki/Moon_landing":                "Moon landing",
	}
	for in, want := range cases {
		if got := subjectFromURL(in); got != want {
			t.Errorf("subjectFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}
