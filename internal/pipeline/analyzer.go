// Package pipeline orchestrates the full analysis: language normalization,
// claim extraction, evidence retrieval, content crawling, ranking, and
// verdict synthesis. The pipeline is total: it always returns a well-formed
// result, degrading to fixed summaries and fallback verdicts on failure.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/siftlab/sift/internal/cache"
	"github.com/siftlab/sift/internal/config"
	"github.com/siftlab/sift/internal/crawler"
	"github.com/siftlab/sift/internal/extract"
	"github.com/siftlab/sift/internal/lang"
	"github.com/siftlab/sift/internal/llm"
	"github.com/siftlab/sift/internal/model"
	"github.com/siftlab/sift/internal/rank"
	"github.com/siftlab/sift/internal/search"
	"github.com/siftlab/sift/internal/verdict"
)

const (
	minInputChars   = 10
	maxClaims       = 5
	maxCrawledURLs  = 10
	crawledTextCap  = 1000
	claimContextCap = 500
)

// Analyzer runs the end-to-end fact-checking pipeline.
type Analyzer struct {
	claims      *extract.ClaimExtractor
	queries     *extract.QueryGenerator
	retriever   *search.Retriever
	fetcher     *crawler.Fetcher
	ranker      *rank.Ranker
	synthesizer *verdict.Synthesizer
	translator  *lang.Translator
	logger      *zap.Logger
}

// New builds an analyzer from configuration. A missing language-model
// configuration is reported once here; the pipeline then runs in
// heuristic-fallback mode.
func New(cfg *config.Config, logger *zap.Logger) (*Analyzer, error) {
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("configure llm provider: %w", err)
	}
	if provider == nil {
		logger.Warn("language model not configured; claim extraction and verdicts degrade to heuristics")
	}

	factCheck := search.NewFactCheckClient(
		cfg.Search.FactCheckAPIKey, cfg.Search.FactCheckBaseURL, cfg.Search.Timeout, logger)
	webSearch := search.NewWebSearchClient(
		cfg.Search.WebSearchAPIKey, cfg.Search.WebSearchCX, cfg.Search.WebSearchBaseURL, cfg.Search.Timeout, logger)
	searchCache := cache.NewMemoryCache(cfg.Search.CacheTTL, 10*time.Minute)

	return &Analyzer{
		claims:    extract.NewClaimExtractor(provider, logger),
		queries:   extract.NewQueryGenerator(provider, logger),
		retriever: search.NewRetriever(factCheck, webSearch, searchCache, cfg.Search.CacheTTL, logger),
		fetcher: crawler.NewFetcher(crawler.Options{
			Timeout:    cfg.Fetch.Timeout,
			UserAgent:  cfg.Fetch.UserAgent,
			MaxBytes:   cfg.Fetch.MaxBytes,
			HTTPProxy:  cfg.Fetch.HTTPProxy,
			HTTPSProxy: cfg.Fetch.HTTPSProxy,
		}, logger),
		ranker:      rank.NewRanker(),
		synthesizer: verdict.NewSynthesizer(provider, logger),
		translator:  lang.NewTranslator(cfg.Translate.APIKey, cfg.Translate.BaseURL, cfg.Translate.Timeout, logger),
		logger:      logger,
	}, nil
}

// AnalyzeText fact-checks free text: detects and translates the language,
// extracts claims, and verifies at most the first 5 sequentially.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) *model.AnalysisResult {
	if len(strings.TrimSpace(text)) < minInputChars {
		return model.EmptyResult(model.SummaryNoText)
	}

	originalText := text
	detected := lang.Detect(text)
	if detected != "en" {
		a.logger.Info("translating input before analysis", zap.String("language", detected))
		text = a.translator.ToEnglish(ctx, text)
	}

	claims := a.claims.Extract(ctx, text)
	if len(claims) == 0 {
		result := model.EmptyResult(model.SummaryNoClaims)
		attachLanguage(result, detected, originalText, text)
		return result
	}
	if len(claims) > maxClaims {
		claims = claims[:maxClaims]
	}

	verdicts := make([]model.ClaimVerdict, 0, len(claims))
	for _, claim := range claims {
		verdicts = append(verdicts, a.analyzeClaim(ctx, claim, text, originalText, detected))
	}

	result := &model.AnalysisResult{
		Claims:      verdicts,
		Summary:     buildSummary(verdicts),
		Methodology: model.MethodologyText,
		Limitations: model.LimitationsText,
	}
	attachLanguage(result, detected, originalText, text)
	return result
}

// AnalyzeURL fetches a page and fact-checks its extracted text.
func (a *Analyzer) AnalyzeURL(ctx context.Context, pageURL string) *model.AnalysisResult {
	content := a.fetcher.Fetch(ctx, pageURL)
	if content == nil {
		return model.EmptyResult(model.SummaryFetchFailed)
	}

	if len(strings.TrimSpace(content.Text)) < minInputChars {
		result := model.EmptyResult(model.SummaryEmptyPage)
		result.SourceTitle = content.Title
		result.SourceDescription = content.Description
		return result
	}

	result := a.AnalyzeText(ctx, content.Text)
	result.SourceTitle = content.Title
	result.SourceDescription = content.Description
	return result
}

// analyzeClaim runs the evidence loop for one claim. Every step degrades
// rather than fails, so the claim always yields a verdict.
func (a *Analyzer) analyzeClaim(ctx context.Context, claim model.Claim, analysisText, originalText, language string) model.ClaimVerdict {
	queries := a.queries.Generate(ctx, claim.Text, claim.Type)
	retrieval := a.retriever.Retrieve(ctx, queries)

	crawled := a.crawlTop(ctx, retrieval.Items)

	ranked := a.ranker.Select(a.ranker.Rank(claim.Text, crawled))

	citations := make([]string, 0, len(ranked))
	for _, re := range ranked {
		if re.URL != "" {
			citations = append(citations, re.URL)
		}
	}

	contextText := analysisText
	if len(contextText) > claimContextCap {
		contextText = contextText[:claimContextCap]
	}
	evidence := a.synthesizer.Evaluate(ctx, claim.Text, contextText, ranked)

	mapped := verdict.MapVerdict(evidence.Verdict)
	confidence := verdict.AdjustConfidence(evidence.Confidence, retrieval.FactCheckHit, len(citations))

	final, ok := a.synthesizer.Finalize(ctx, claim.Text, bucketEvidence(retrieval, crawled))
	if !ok {
		// Holistic synthesis failed; carry the evidence-stage result forward.
		final = verdict.FinalResult{
			Score:      int(confidence * 100),
			Verdict:    model.ParseFinalVerdict(strings.ToUpper(string(mapped))),
			Confidence: model.ConfidenceMedium,
			Reasoning:  evidence.Explanation,
			Citations:  capStrings(citations, 5),
		}
	}

	cv := model.ClaimVerdict{
		Claim:           claim.Text,
		OriginalClaim:   claim.Text,
		Verdict:         mapped,
		Confidence:      math.Round(confidence*100) / 100,
		Explanation:     evidence.Explanation,
		Citations:       citations,
		Language:        language,
		FinalScore:      final.Score,
		FinalVerdict:    final.Verdict,
		FinalConfidence: final.Confidence,
		FinalReasoning:  final.Reasoning,
		FinalCitations:  final.Citations,
	}
	if language != "en" {
		// Claims come from the translated text; keep the source text around.
		cv.OriginalClaim = originalText
	}
	return cv
}

// crawlTop fetches up to 10 of the deduplicated evidence URLs and attaches
// the first 1000 characters of extracted text to each fetched item.
func (a *Analyzer) crawlTop(ctx context.Context, items []model.EvidenceItem) []model.EvidenceItem {
	n := len(items)
	if n > maxCrawledURLs {
		n = maxCrawledURLs
	}
	top := make([]model.EvidenceItem, n)
	copy(top, items[:n])

	urls := make([]string, 0, n)
	for _, item := range top {
		urls = append(urls, item.URL)
	}

	fetched := a.fetcher.FetchAll(ctx, urls)
	for i := range top {
		if content, ok := fetched[top[i].URL]; ok {
			text := content.Text
			if len(text) > crawledTextCap {
				text = text[:crawledTextCap]
			}
			top[i].CrawledText = text
		}
	}
	return top
}

// bucketEvidence partitions the gathered evidence by source type for the
// holistic verdict prompt.
func bucketEvidence(retrieval search.Retrieval, crawled []model.EvidenceItem) verdict.Buckets {
	var buckets verdict.Buckets

	for _, item := range retrieval.Items {
		if item.Source == model.SourceFactCheckAPI {
			buckets.FactCheck = append(buckets.FactCheck, item)
		}
	}
	for _, item := range crawled {
		if item.CrawledText != "" {
			buckets.Crawled = append(buckets.Crawled, item)
		}
	}
	crawledURLs := make(map[string]bool, len(crawled))
	for _, item := range crawled {
		if item.CrawledText != "" {
			crawledURLs[item.URL] = true
		}
	}
	for _, item := range retrieval.All {
		if crawledURLs[item.URL] {
			continue
		}
		if item.Source == model.SourceWebSearch || item.URL != "" {
			buckets.Snippets = append(buckets.Snippets, item)
		}
	}
	return buckets
}

// buildSummary composes the document-level sentence counting verdicts.
func buildSummary(verdicts []model.ClaimVerdict) string {
	total := len(verdicts)
	if total == 0 {
		return "No claims analyzed."
	}

	var trueCount, falseCount, misleadingCount, noInfoCount int
	for _, v := range verdicts {
		switch v.Verdict {
		case model.VerdictTrue:
			trueCount++
		case model.VerdictFalse:
			falseCount++
		case model.VerdictMisleading:
			misleadingCount++
		case model.VerdictNoInfo:
			noInfoCount++
		}
	}

	plural := "s"
	if total == 1 {
		plural = ""
	}
	parts := []string{fmt.Sprintf("Analyzed %d claim%s", total, plural)}
	if trueCount > 0 {
		parts = append(parts, fmt.Sprintf("%d verified as true", trueCount))
	}
	if falseCount > 0 {
		parts = append(parts, fmt.Sprintf("%d verified as false", falseCount))
	}
	if misleadingCount > 0 {
		parts = append(parts, fmt.Sprintf("%d found to be misleading", misleadingCount))
	}
	if noInfoCount > 0 {
		parts = append(parts, fmt.Sprintf("%d could not be verified", noInfoCount))
	}
	return strings.Join(parts, ". ") + "."
}

func attachLanguage(result *model.AnalysisResult, detected, originalText, translatedText string) {
	if detected == "en" {
		return
	}
	result.DetectedLanguage = detected
	result.OriginalText = originalText
	result.TranslatedText = translatedText
}

func capStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
