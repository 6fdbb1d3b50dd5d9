package model

// SourceKind identifies which retrieval channel produced an evidence item
type SourceKind string

const (
	SourceFactCheckAPI SourceKind = "fact_check_api" // Curated fact-check index
	SourceWebSearch    SourceKind = "web_search"     // General web search index
	SourceCrawled      SourceKind = "crawled"        // Directly fetched page
)

// EvidenceItem is one retrieved document or snippet candidate for a claim.
// URL is the dedupe key within a retrieval batch; CrawledText is attached
// exactly once by the crawler and never mutated after ranking.
type EvidenceItem struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"` // Normalized
	Snippet     string     `json:"snippet"`
	Source      SourceKind `json:"source"`
	CrawledText string     `json:"crawled_text,omitempty"`

	// ClaimReviewed is the original claim text as recorded by the
	// fact-check index, when the item came from there.
	ClaimReviewed string   `json:"claim_original,omitempty"`
	ReviewURLs    []string `json:"fact_check_reviews,omitempty"`
}

// SourceTier is the priority class of an evidence item's origin.
// The numeric value doubles as the score multiplier.
type SourceTier float64

const (
	TierOther         SourceTier = 1.0 // Unclassified sources
	TierAuthoritative SourceTier = 2.0 // Government, education, major news
	TierFactCheck     SourceTier = 3.0 // Dedicated fact-check sources
)

func (t SourceTier) String() string {
	switch t {
	case TierFactCheck:
		return "fact_check"
	case TierAuthoritative:
		return "authoritative"
	default:
		return "other"
	}
}

// RankedEvidence is an evidence item with its derived scores. Ordered by
// FinalScore descending; ties keep retrieval order (stable sort).
type RankedEvidence struct {
	EvidenceItem
	RelevanceScore  float64    `json:"relevance_score"` // Token overlap, 0-0.7
	Tier            SourceTier `json:"source_priority"`
	FinalScore      float64    `json:"final_score"` // RelevanceScore x Tier (+ fact-check bonus)
	IsAuthoritative bool       `json:"is_authoritative"`
}
