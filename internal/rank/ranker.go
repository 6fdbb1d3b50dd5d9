// Package rank orders evidence by blended relevance and source authority,
// then selects a tier-ordered subset for verdict synthesis.
package rank

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/siftlab/sift/internal/model"
	"github.com/siftlab/sift/internal/search"
)

const (
	titleWeight     = 0.4
	bodyWeight      = 0.3
	factCheckBonus  = 0.5
	maxSelected     = 10
	maxFactCheckTop = 5
)

// factCheckDomains mark dedicated fact-checking publishers. The regional
// whitelist in the search package counts as well.
var factCheckDomains = []string{
	"factcheck",
	"fact-check",
	"snopes.com",
	"politifact.com",
	"fullfact.org",
	"leadstories.com",
	"sciencefeedback.co",
}

// govEduSuffixes match government and academic hosts by TLD.
var govEduSuffixes = []string{
	".gov",
	".gov.uk",
	".gov.au",
	".gov.ca",
	".gov.in",
	".europa.eu",
	".edu",
	".ac.uk",
	".edu.au",
}

// newsDomains list major news organizations counted as authoritative.
var newsDomains = []string{
	"reuters.com",
	"apnews.com",
	"ap.org",
	"bbc.com",
	"bbc.co.uk",
	"nytimes.com",
	"washingtonpost.com",
	"theguardian.com",
	"wsj.com",
	"bloomberg.com",
	"cnn.com",
	"npr.org",
	"pbs.org",
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// Ranker scores and orders evidence for one claim.
type Ranker struct{}

// NewRanker creates a ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Tier classifies an evidence item's source authority.
func (r *Ranker) Tier(item model.EvidenceItem) model.SourceTier {
	if item.Source == model.SourceFactCheckAPI {
		return model.TierFactCheck
	}

	lower := strings.ToLower(item.URL)
	for _, domain := range factCheckDomains {
		if strings.Contains(lower, domain) {
			return model.TierFactCheck
		}
	}
	if search.IsWhitelisted(item.URL) {
		return model.TierFactCheck
	}

	host := hostOf(item.URL)
	for _, suffix := range govEduSuffixes {
		if strings.HasSuffix(host, suffix) || host == strings.TrimPrefix(suffix, ".") {
			return model.TierAuthoritative
		}
	}
	for _, domain := range newsDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return model.TierAuthoritative
		}
	}

	return model.TierOther
}

// Rank scores every item against the claim and returns them sorted by final
// score descending. The sort is stable so equal scores keep arrival order.
func (r *Ranker) Rank(claim string, items []model.EvidenceItem) []model.RankedEvidence {
	claimTokens := tokenize(claim)

	ranked := make([]model.RankedEvidence, 0, len(items))
	for _, item := range items {
		tier := r.Tier(item)
		relevance := relevanceScore(claimTokens, item)

		final := relevance * float64(tier)
		if tier == model.TierFactCheck {
			final += factCheckBonus
		}

		ranked = append(ranked, model.RankedEvidence{
			EvidenceItem:    item,
			RelevanceScore:  relevance,
			Tier:            tier,
			FinalScore:      final,
			IsAuthoritative: tier >= model.TierAuthoritative,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
	return ranked
}

// Select takes up to 10 items in strict tier order: at most 5 fact-check
// items first, authoritative items filling the remaining slots, then the
// rest. A flood of high-relevance low-tier matches can never crowd out an
// authoritative source.
func (r *Ranker) Select(ranked []model.RankedEvidence) []model.RankedEvidence {
	selected := make([]model.RankedEvidence, 0, maxSelected)

	for _, item := range ranked {
		if item.Tier == model.TierFactCheck && len(selected) < maxFactCheckTop {
			selected = append(selected, item)
		}
	}
	for _, item := range ranked {
		if len(selected) == maxSelected {
			break
		}
		if item.Tier == model.TierAuthoritative {
			selected = append(selected, item)
		}
	}
	for _, item := range ranked {
		if len(selected) == maxSelected {
			break
		}
		if item.Tier == model.TierOther {
			selected = append(selected, item)
		}
	}

	return selected
}

// relevanceScore is the weighted token overlap between the claim and the
// item's title and body, each normalized by the claim's token count. The
// range is [0, 0.7].
func relevanceScore(claimTokens map[string]bool, item model.EvidenceItem) float64 {
	if len(claimTokens) == 0 {
		return 0
	}

	titleOverlap := overlap(claimTokens, tokenize(item.Title))
	bodyOverlap := overlap(claimTokens, tokenize(item.Snippet+" "+item.CrawledText))

	n := float64(len(claimTokens))
	return titleWeight*(float64(titleOverlap)/n) + bodyWeight*(float64(bodyOverlap)/n)
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) > 2 {
			tokens[w] = true
		}
	}
	return tokens
}

func overlap(a, b map[string]bool) int {
	var n int
	for token := range a {
		if b[token] {
			n++
		}
	}
	return n
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}
