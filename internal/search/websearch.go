package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/siftlab/sift/internal/model"
)

const defaultWebSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

// WebSearchClient queries the Google Custom Search API. One request per
// query; any failure yields an empty list.
type WebSearchClient struct {
	apiKey     string
	cx         string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebSearchClient creates a web-search index client. Missing credentials
// disable the client: every search returns an empty list.
func NewWebSearchClient(apiKey, cx, baseURL string, timeout time.Duration, logger *zap.Logger) *WebSearchClient {
	if baseURL == "" {
		baseURL = defaultWebSearchBaseURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &WebSearchClient{
		apiKey:     apiKey,
		cx:         cx,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type webSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search issues one request for the query, returning up to count items with
// whitelisted publishers promoted to the front.
func (c *WebSearchClient) Search(ctx context.Context, query string, count int) []model.EvidenceItem {
	if c.apiKey == "" || c.cx == "" {
		return nil
	}
	if count <= 0 {
		count = 5
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(min(count, 10))) // API limit

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Warn("web search request build failed", zap.Error(err))
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("web search request failed", zap.String("query", truncate(query, 50)), zap.Error(err))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("web search unexpected status",
			zap.Int("status", resp.StatusCode), zap.String("query", truncate(query, 50)))
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.logger.Warn("web search read body failed", zap.Error(err))
		return nil
	}

	var parsed webSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("web search parse failed", zap.Error(err))
		return nil
	}

	items := make([]model.EvidenceItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		items = append(items, model.EvidenceItem{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
			Source:  model.SourceWebSearch,
		})
		if len(items) == count {
			break
		}
	}

	return promoteWhitelisted(items)
}
