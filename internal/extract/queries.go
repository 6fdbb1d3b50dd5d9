package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/siftlab/sift/internal/llm"
	"github.com/siftlab/sift/internal/model"
)

const (
	minClaimLen = 5
	maxKeywords = 8
	maxQueries  = 5
)

// queryStopWords are dropped from claims before building keyword queries.
var queryStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "is": true, "was": true, "are": true, "were": true,
	"been": true, "be": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true,
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// QueryGenerator builds concise search queries for fact-checking a claim
type QueryGenerator struct {
	provider llm.Provider // nil disables the model path
	logger   *zap.Logger
}

// NewQueryGenerator creates a new query generator
func NewQueryGenerator(provider llm.Provider, logger *zap.Logger) *QueryGenerator {
	return &QueryGenerator{provider: provider, logger: logger}
}

type queriesPayload struct {
	Queries []string `json:"queries"`
}

// Generate returns 3-5 short keyword queries for the claim. Claims under
// 5 characters yield nothing. Never returns an error: model failures fall
// back to keyword-window extraction.
func (g *QueryGenerator) Generate(ctx context.Context, claim string, claimType model.ClaimType) []string {
	if len(strings.TrimSpace(claim)) < minClaimLen {
		return nil
	}

	if g.provider != nil {
		queries, err := g.generateWithModel(ctx, claim, claimType)
		if err == nil && len(queries) > 0 {
			return queries
		}
		if err != nil {
			g.logger.Warn("query generation model call failed, using keyword fallback", zap.Error(err))
		}
	}

	return g.generateFallback(claim)
}

func (g *QueryGenerator) generateWithModel(ctx context.Context, claim string, claimType model.ClaimType) ([]string, error) {
	if claimType == "" {
		claimType = model.ClaimTypeGeneral
	}

	prompt := fmt.Sprintf(`Generate 3-5 simple, concise search queries to fact-check the following claim.

Claim: %q
Claim Type: %s

Guidelines:
- Extract key factual elements only (keywords, names, numbers, places)
- Keep queries simple and short (3-7 words maximum)
- DO NOT include phrases like "fact check", "verified", or "snopes"
- Use keywords, not full sentences
- Focus on the core factual claim being made

Examples:
- Claim: "The Earth is flat" -> Query: "Earth flat"
- Claim: "COVID-19 vaccine causes autism" -> Query: "COVID vaccine autism"
- Claim: "NASA faked the moon landing" -> Query: "NASA moon landing"

Return a JSON array of query strings.
Format: {"queries": ["query1", "query2", ...]}`, claim, claimType)

	response, err := g.provider.Generate(ctx, llm.Request{Prompt: prompt, JSONMode: true})
	if err != nil {
		return nil, err
	}

	var payload queriesPayload
	if err := llm.DecodeJSON("queries", response, &payload); err != nil || len(payload.Queries) == 0 {
		var bare []string
		if arrErr := llm.DecodeJSON("queries", response, &bare); arrErr != nil {
			if err != nil {
				return nil, err
			}
			return nil, arrErr
		}
		payload.Queries = bare
	}

	queries := make([]string, 0, maxQueries)
	for _, q := range payload.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if len(queries) == maxQueries {
			break
		}
	}
	return queries, nil
}

// generateFallback tokenizes the claim, strips stop words, and emits queries
// built from different-length keyword windows to maximize diversity.
func (g *QueryGenerator) generateFallback(claim string) []string {
	words := wordPattern.FindAllString(strings.ToLower(claim), -1)

	keywords := make([]string, 0, maxKeywords)
	for _, w := range words {
		if queryStopWords[w] || len(w) <= 2 {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}

	var queries []string
	if len(keywords) >= 3 {
		queries = append(queries, strings.Join(keywords[:min(4, len(keywords))], " "))
		queries = append(queries, strings.Join(keywords[:min(6, len(keywords))], " "))
		queries = append(queries, strings.Join(keywords[:min(7, len(keywords))], " "))
		if len(keywords) > 4 {
			queries = append(queries, strings.Join(keywords[2:min(6, len(keywords))], " "))
		}
	} else if len(keywords) > 0 {
		queries = append(queries, strings.Join(keywords, " "))
	}

	// Always include the simplest version.
	if len(keywords) > 0 {
		queries = append(queries, strings.Join(keywords[:min(3, len(keywords))], " "))
	}

	if len(queries) == 0 {
		// Last resort: the first 50 characters of the claim.
		short := claim
		if len(short) > 50 {
			short = short[:50]
		}
		return []string{short}
	}

	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return queries
}
