// Package search queries the curated fact-check index and the general
// web-search index, then merges their results into a deduplicated evidence
// batch. Every entry point is total: upstream failures degrade to empty
// results, never errors.
package search

import (
	"strings"

	"github.com/siftlab/sift/internal/model"
)

// regionalWhitelist lists known-trustworthy regional fact-check publishers.
// Matching items are moved to the front of each source's result list, and
// again in the merged batch (at most 3 in the top slots).
var regionalWhitelist = []string{
	"altnews.in",
	"boomlive.in",
	"factly.in",
	"pib.gov.in",
	"indiatoday.in/fact-check",
	"thequint.com/fact-check",
	"factcrescendo.com",
}

// IsWhitelisted reports whether the URL belongs to a whitelisted publisher.
func IsWhitelisted(url string) bool {
	lower := strings.ToLower(url)
	for _, domain := range regionalWhitelist {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// promoteWhitelisted moves whitelisted items to the front, preserving the
// relative order within both partitions.
func promoteWhitelisted(items []model.EvidenceItem) []model.EvidenceItem {
	if len(items) < 2 {
		return items
	}
	promoted := make([]model.EvidenceItem, 0, len(items))
	var others []model.EvidenceItem
	for _, item := range items {
		if IsWhitelisted(item.URL) {
			promoted = append(promoted, item)
		} else {
			others = append(others, item)
		}
	}
	return append(promoted, others...)
}

// promoteWhitelistedCapped puts at most cap whitelisted items in the top
// slots; everything else follows in arrival order.
func promoteWhitelistedCapped(items []model.EvidenceItem, cap int) []model.EvidenceItem {
	if len(items) < 2 {
		return items
	}
	var top, rest []model.EvidenceItem
	for _, item := range items {
		if len(top) < cap && IsWhitelisted(item.URL) {
			top = append(top, item)
		} else {
			rest = append(rest, item)
		}
	}
	return append(top, rest...)
}
