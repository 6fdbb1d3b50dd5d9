package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/siftlab/sift/internal/model"
)

const defaultFactCheckBaseURL = "https://factchecktools.googleapis.com/v1alpha1/claims:search"

// factCheckSleep is the backoff before re-trying a rate-limited rung
// (injectable for tests).
var factCheckSleep = time.Sleep

// factCheckStopWords are stripped to build the simplified last-rung query.
var factCheckStopWords = map[string]bool{
	"is": true, "are": true, "was": true, "were": true, "the": true,
	"that": true, "because": true, "do": true, "does": true, "did": true,
	"a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
	"of": true, "with": true, "have": true, "has": true, "had": true,
	"will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "this": true, "these": true,
	"those": true, "they": true, "them": true, "their": true, "there": true,
}

// FactCheckClient queries the Google Fact Check Tools claim search API.
// A 403 from this API means "no facts found", not a failure.
type FactCheckClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewFactCheckClient creates a fact-check index client. An empty API key
// disables the client: every search returns an empty list.
func NewFactCheckClient(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *FactCheckClient {
	if baseURL == "" {
		baseURL = defaultFactCheckBaseURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &FactCheckClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type factCheckResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// ladderRung is one attempt in the retry ladder: a set of parameter
// overrides tried when the previous rung yielded nothing.
type ladderRung struct {
	query      string
	pageSize   int
	maxAgeDays int // 0 means no recency filter
	desc       string
}

// Search runs the retry ladder for one query: (a) the original query with a
// 365-day recency filter, (b) the same query unfiltered, (c) a stop-word-
// stripped query with a reduced result count. The first rung yielding at
// least one result wins; exhausting the ladder returns an empty list, never
// an error.
func (c *FactCheckClient) Search(ctx context.Context, query string, pageSize int) []model.EvidenceItem {
	if c.apiKey == "" {
		return nil
	}
	if pageSize <= 0 {
		pageSize = 5
	}

	rungs := []ladderRung{
		{query: query, pageSize: pageSize, maxAgeDays: 365, desc: "original query with date filter"},
		{query: query, pageSize: pageSize, desc: "without date limit"},
		{query: simplifyQuery(query), pageSize: min(pageSize, 3), desc: "simplified query (no stopwords)"},
	}

	for i, rung := range rungs {
		items, retryable := c.attempt(ctx, rung, i+1)
		if len(items) > 0 {
			return promoteWhitelisted(items)
		}
		// A 503 means rate limited rather than "not found"; back off and
		// give the same rung a second chance before changing strategy.
		if retryable {
			factCheckSleep(time.Second)
			if items, _ := c.attempt(ctx, rung, i+1); len(items) > 0 {
				return promoteWhitelisted(items)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	c.logger.Debug("fact-check ladder exhausted", zap.String("query", truncate(query, 50)))
	return nil
}

// attempt runs one rung. The second return value is true when the rung hit
// a transient condition worth one backed-off retry.
func (c *FactCheckClient) attempt(ctx context.Context, rung ladderRung, n int) ([]model.EvidenceItem, bool) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("query", rung.query)
	params.Set("languageCode", "en-US")
	params.Set("pageSize", strconv.Itoa(rung.pageSize))
	if rung.maxAgeDays > 0 {
		params.Set("maxAgeDays", strconv.Itoa(rung.maxAgeDays))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Warn("fact-check request build failed", zap.Int("attempt", n), zap.Error(err))
		return nil, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("fact-check request failed",
			zap.Int("attempt", n), zap.String("strategy", rung.desc), zap.Error(err))
		return nil, false
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		// No facts found for this query; advance the ladder.
		c.logger.Debug("fact-check returned 403, no facts found",
			zap.Int("attempt", n), zap.String("strategy", rung.desc))
		return nil, false
	case resp.StatusCode == http.StatusServiceUnavailable:
		c.logger.Warn("fact-check returned 503",
			zap.Int("attempt", n), zap.String("strategy", rung.desc))
		return nil, true
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("fact-check unexpected status",
			zap.Int("attempt", n), zap.Int("status", resp.StatusCode), zap.String("strategy", rung.desc))
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.logger.Warn("fact-check read body failed", zap.Int("attempt", n), zap.Error(err))
		return nil, false
	}

	var parsed factCheckResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("fact-check parse failed", zap.Int("attempt", n), zap.Error(err))
		return nil, false
	}

	items := make([]model.EvidenceItem, 0, len(parsed.Claims))
	for _, claim := range parsed.Claims {
		var reviewURLs []string
		var ratings []string
		for _, review := range claim.ClaimReview {
			if review.URL != "" {
				reviewURLs = append(reviewURLs, review.URL)
			}
			if review.TextualRating != "" {
				ratings = append(ratings, review.TextualRating)
			} else if review.Publisher.Name != "" {
				ratings = append(ratings, review.Publisher.Name)
			}
		}

		itemURL := claim.Claimant
		if len(reviewURLs) > 0 {
			itemURL = reviewURLs[0]
		}
		if itemURL == "" {
			continue
		}

		title := truncate(claim.Text, 100)
		if title == "" {
			title = "Fact Check"
		}

		snippet := claim.Text
		if len(ratings) > 0 {
			snippet = strings.Join(ratings[:min(2, len(ratings))], " ")
		}

		items = append(items, model.EvidenceItem{
			Title:         title,
			URL:           itemURL,
			Snippet:       truncate(snippet, 300),
			Source:        model.SourceFactCheckAPI,
			ClaimReviewed: claim.Text,
			ReviewURLs:    reviewURLs,
		})
		if len(items) == rung.pageSize {
			break
		}
	}

	return items, false
}

// simplifyQuery strips stop words; falls back to the original when nothing
// survives.
func simplifyQuery(query string) string {
	var kept []string
	for _, w := range strings.Fields(query) {
		if !factCheckStopWords[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return query
	}
	return strings.Join(kept, " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
