// Package crawler fetches evidence pages and extracts readable text from
// HTML and PDF bodies. Fetching is polite: robots.txt is honored and
// requests are rate limited per host.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/siftlab/sift/internal/urlutil"
)

const (
	defaultMaxBytes   = 2 << 20
	defaultMaxRetries = 3
	maxConcurrent     = 10
	maxHTMLChars      = 50000
	minCascadeChars   = 100
	minContentChars   = 50
)

// fetchSleep is the backoff between fetch retries (injectable for tests).
var fetchSleep = time.Sleep

// defaultUserAgent mimics a browser; several news sites serve bot UAs an
// interstitial instead of the article.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Content is the readable text extracted from one page. RawHTML carries the
// page markup for downstream reference; it is empty for PDF documents.
type Content struct {
	URL         string
	Title       string
	Description string
	Text        string
	RawHTML     string
}

// Fetcher retrieves pages and extracts their text.
type Fetcher struct {
	httpClient *http.Client
	robots     *RobotsChecker
	limiter    *HostLimiter
	logger     *zap.Logger
	userAgent  string
	maxBytes   int64
	maxRetries int
}

// Options configures a Fetcher. Zero values select defaults.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64
	MaxRetries int
	HTTPProxy  string
	HTTPSProxy string
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts Options, logger *zap.Logger) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: newProxyFunc(opts.HTTPProxy, opts.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:     NewRobotsChecker(opts.UserAgent, opts.Timeout),
		limiter:    NewHostLimiter(2, 4),
		logger:     logger,
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		maxRetries: opts.MaxRetries,
	}
}

// Fetch retrieves one URL and extracts its readable text. Any failure,
// including a robots.txt disallow, returns nil rather than an error so that
// one bad page never sinks the batch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *Content {
	if !urlutil.IsValid(rawURL) {
		return nil
	}

	if !f.robots.IsAllowed(ctx, rawURL) {
		f.logger.Debug("skipping disallowed URL", zap.String("url", rawURL))
		return nil
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil
	}

	body, contentType := f.get(ctx, rawURL)
	if body == nil {
		return nil
	}

	var content *Content
	if isPDF(contentType, rawURL) {
		content = extractPDF(rawURL, body)
	} else {
		content = extractHTML(rawURL, body)
	}
	if content == nil {
		return nil
	}

	if len(content.Text) < minContentChars {
		// Thin pages still carry a usable signal in their metadata.
		fallback := strings.TrimSpace(content.Title + ". " + content.Description)
		if len(fallback) <= 10 {
			f.logger.Debug("page yielded no usable text", zap.String("url", rawURL))
			return nil
		}
		content.Text = fallback
	}
	if len(content.Text) > maxHTMLChars {
		content.Text = content.Text[:maxHTMLChars]
	}
	if len(content.RawHTML) > maxHTMLChars {
		content.RawHTML = content.RawHTML[:maxHTMLChars]
	}

	return content
}

// get performs the HTTP request with retries on transient failures.
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, string) {
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			fetchSleep(time.Duration(1<<uint(attempt-1)) * time.Second)
			if ctx.Err() != nil {
				return nil, ""
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, ""
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			f.logger.Debug("fetch failed", zap.String("url", rawURL), zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			f.logger.Debug("fetch unexpected status",
				zap.String("url", rawURL), zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt+1))
			// Client errors will not improve on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, ""
			}
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
		contentType := resp.Header.Get("Content-Type")
		_ = resp.Body.Close()
		if err != nil {
			f.logger.Debug("fetch read body failed", zap.String("url", rawURL), zap.Error(err))
			continue
		}
		return body, contentType
	}
	return nil, ""
}

// FetchAll fetches the given URLs concurrently, at most maxConcurrent in
// flight. The result is keyed by URL; failed fetches are absent.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) map[string]*Content {
	if len(urls) == 0 {
		return map[string]*Content{}
	}

	results := make([]*Content, len(urls))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrent)

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, pageURL string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = f.Fetch(ctx, pageURL)
		}(i, u)
	}
	wg.Wait()

	byURL := make(map[string]*Content, len(urls))
	for _, c := range results {
		if c != nil {
			byURL[c.URL] = c
		}
	}
	return byURL
}

func isPDF(contentType, rawURL string) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
}

// subjectFromURL derives a readable title from the last URL path segment.
func subjectFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}
	return last
}
