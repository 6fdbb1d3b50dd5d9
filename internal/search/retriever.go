package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/siftlab/sift/internal/cache"
	"github.com/siftlab/sift/internal/model"
	"github.com/siftlab/sift/internal/urlutil"
)

const (
	maxQueriesPerClaim  = 3
	perQueryResultCount = 5
	whitelistTopSlots   = 3
)

// Retrieval is the merged evidence batch for one claim.
type Retrieval struct {
	// Items is the deduplicated batch: every URL appears once, first
	// occurrence wins, source-arrival order preserved.
	Items []model.EvidenceItem

	// All is the raw accumulation before deduplication, kept for the
	// holistic verdict's source-type partitioning.
	All []model.EvidenceItem

	// FactCheckHit records whether the fact-check index produced at
	// least one result for any query.
	FactCheckHit bool
}

// Retriever gathers evidence for a claim across both search capabilities.
type Retriever struct {
	factCheck *FactCheckClient
	webSearch *WebSearchClient
	cache     cache.Cache // nil disables caching
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewRetriever creates a retriever. Cache may be nil.
func NewRetriever(factCheck *FactCheckClient, webSearch *WebSearchClient, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Retriever {
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}
	return &Retriever{
		factCheck: factCheck,
		webSearch: webSearch,
		cache:     c,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Retrieve queries both sources for up to 3 of the given queries and merges
// the results. Individual source failures contribute empty lists; the method
// itself never fails.
func (r *Retriever) Retrieve(ctx context.Context, queries []string) Retrieval {
	if len(queries) > maxQueriesPerClaim {
		queries = queries[:maxQueriesPerClaim]
	}

	var result Retrieval
	for _, query := range queries {
		factCheckItems := r.cached(ctx, "fc", query, func(ctx context.Context) []model.EvidenceItem {
			return r.factCheck.Search(ctx, query, perQueryResultCount)
		})
		if len(factCheckItems) > 0 {
			result.FactCheckHit = true
		}
		result.All = append(result.All, factCheckItems...)

		webItems := r.cached(ctx, "ws", query, func(ctx context.Context) []model.EvidenceItem {
			return r.webSearch.Search(ctx, query, perQueryResultCount)
		})
		result.All = append(result.All, webItems...)
	}

	result.Items = promoteWhitelistedCapped(Dedupe(result.All), whitelistTopSlots)
	return result
}

// Dedupe removes items sharing a normalized URL, first occurrence wins.
// Items without a URL are dropped. The kept item carries the normalized URL.
func Dedupe(items []model.EvidenceItem) []model.EvidenceItem {
	seen := make(map[string]bool, len(items))
	unique := make([]model.EvidenceItem, 0, len(items))
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		normalized := urlutil.Normalize(item.URL)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		item.URL = normalized
		unique = append(unique, item)
	}
	return unique
}

// cached wraps a source call with the TTL cache.
func (r *Retriever) cached(ctx context.Context, source, query string, fetch func(context.Context) []model.EvidenceItem) []model.EvidenceItem {
	if r.cache == nil {
		return fetch(ctx)
	}

	key := cache.Key(source, query)
	if items, found := cache.GetJSON[[]model.EvidenceItem](r.cache, key); found {
		return items
	}

	items := fetch(ctx)
	if len(items) == 0 {
		// Empty may mean a transient upstream failure; do not pin it.
		return items
	}
	if err := cache.SetJSON(r.cache, key, items, r.cacheTTL); err != nil {
		r.logger.Debug("search cache write failed", zap.Error(err))
	}
	return items
}
