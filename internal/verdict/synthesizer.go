// Package verdict turns ranked evidence into per-claim verdicts via two
// independent model calls: a per-evidence verdict and a holistic 0-100
// final verdict. Every path is total; model failures degrade to documented
// fallback values.
package verdict

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/siftlab/sift/internal/llm"
	"github.com/siftlab/sift/internal/model"
)

const (
	maxEvidenceInPrompt = 10
	maxContextChars     = 500
	maxBucketItems      = 5
	maxCitations        = 5

	fallbackReasoning = "Could not generate final verdict due to an internal error."
)

// EvidenceVerdict is the stage-one result for a claim.
type EvidenceVerdict struct {
	Verdict     string
	Confidence  float64
	Explanation string
	Evidence    string
}

// FinalResult is the stage-two holistic result for a claim.
type FinalResult struct {
	Score      int
	Verdict    model.FinalVerdict
	Confidence model.ConfidenceLevel
	Reasoning  string
	Citations  []string
}

// Buckets partitions the evidence for the holistic verdict by source type.
type Buckets struct {
	FactCheck []model.EvidenceItem
	Crawled   []model.EvidenceItem
	Snippets  []model.EvidenceItem
}

// Synthesizer generates verdicts from evidence. A nil provider disables
// model calls; every method then returns its fallback value.
type Synthesizer struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewSynthesizer creates a synthesizer. Provider may be nil.
func NewSynthesizer(provider llm.Provider, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{provider: provider, logger: logger}
}

type evidenceVerdictPayload struct {
	Verdict     string  `json:"verdict"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
	Evidence    string  `json:"evidence"`
}

// Evaluate produces the stage-one evidence verdict for a claim. Failures
// degrade to {unverified, 0.0}.
func (s *Synthesizer) Evaluate(ctx context.Context, claim, contextText string, ranked []model.RankedEvidence) EvidenceVerdict {
	fallback := EvidenceVerdict{Verdict: "unverified", Confidence: 0.0}
	if s.provider == nil {
		return fallback
	}

	prompt := buildEvidencePrompt(claim, contextText, ranked)
	raw, err := s.provider.Generate(ctx, llm.Request{
		System:   llm.DefaultSystemPrompt,
		Prompt:   prompt,
		JSONMode: true,
	})
	if err != nil {
		s.logger.Warn("evidence verdict generation failed", zap.Error(err))
		return fallback
	}

	var payload evidenceVerdictPayload
	if err := llm.DecodeJSON("evidence verdict", raw, &payload); err != nil {
		s.logger.Warn("evidence verdict decode failed", zap.Error(err))
		return fallback
	}

	verdict := strings.ToLower(strings.TrimSpace(payload.Verdict))
	switch verdict {
	case "true", "false", "partially_true", "unverified":
	default:
		verdict = "unverified"
	}

	return EvidenceVerdict{
		Verdict:     verdict,
		Confidence:  clamp01(payload.Confidence),
		Explanation: payload.Explanation,
		Evidence:    payload.Evidence,
	}
}

// MapVerdict converts the model's stage-one label to the public enum.
func MapVerdict(raw string) model.Verdict {
	switch raw {
	case "true":
		return model.VerdictTrue
	case "false":
		return model.VerdictFalse
	case "partially_true":
		return model.VerdictMisleading
	default:
		return model.VerdictNoInfo
	}
}

// AdjustConfidence lowers confidence when the fact-check source came up
// empty: by 10% when there are no citations at all, by 5% when other
// sources exist. The floor is 0.1 so a verdict never reads as certainty of
// absence.
func AdjustConfidence(confidence float64, factCheckHit bool, citations int) float64 {
	if factCheckHit {
		return confidence
	}
	factor := 0.95
	if citations == 0 {
		factor = 0.9
	}
	adjusted := confidence * factor
	if adjusted < 0.1 {
		adjusted = 0.1
	}
	return adjusted
}

type finalVerdictPayload struct {
	Score      int      `json:"score"`
	Verdict    string   `json:"verdict"`
	Confidence string   `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Citations  []string `json:"citations"`
}

// Finalize produces the stage-two holistic verdict from the bucketed
// evidence. Any failure substitutes the fixed fallback and reports false,
// letting the caller merge in stage-one results instead.
func (s *Synthesizer) Finalize(ctx context.Context, claim string, buckets Buckets) (FinalResult, bool) {
	fallback := FinalResult{
		Score:      50,
		Verdict:    model.FinalUncertain,
		Confidence: model.ConfidenceLow,
		Reasoning:  fallbackReasoning,
		Citations:  []string{},
	}
	if s.provider == nil {
		return fallback, false
	}

	prompt := buildFinalPrompt(claim, buckets)
	raw, err := s.provider.Generate(ctx, llm.Request{
		System:   llm.DefaultSystemPrompt,
		Prompt:   prompt,
		JSONMode: true,
	})
	if err != nil {
		s.logger.Warn("final verdict generation failed", zap.Error(err))
		return fallback, false
	}

	var payload finalVerdictPayload
	if err := llm.DecodeJSON("final verdict", raw, &payload); err != nil {
		s.logger.Warn("final verdict decode failed", zap.Error(err))
		return fallback, false
	}

	score := payload.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	citations := payload.Citations
	if len(citations) > maxCitations {
		citations = citations[:maxCitations]
	}
	if citations == nil {
		citations = []string{}
	}

	return FinalResult{
		Score:      score,
		Verdict:    model.ParseFinalVerdict(strings.ToUpper(strings.TrimSpace(payload.Verdict))),
		Confidence: model.ParseConfidenceLevel(strings.ToLower(strings.TrimSpace(payload.Confidence))),
		Reasoning:  payload.Reasoning,
		Citations:  citations,
	}, true
}

func buildEvidencePrompt(claim, contextText string, ranked []model.RankedEvidence) string {
	var sb strings.Builder

	sb.WriteString("Fact-check this claim using the evidence below.\n\n")
	sb.WriteString("Claim: " + claim + "\n")
	if contextText != "" {
		sb.WriteString("Context: " + truncate(contextText, maxContextChars) + "\n")
	}
	sb.WriteString("\nEvidence:\n")

	n := len(ranked)
	if n > maxEvidenceInPrompt {
		n = maxEvidenceInPrompt
	}
	for i, re := range ranked[:n] {
		label := "[Web Source]"
		switch re.Tier {
		case model.TierFactCheck:
			label = "[FACT-CHECK API - Highest Priority]"
		case model.TierAuthoritative:
			label = "[Authoritative Source - Gov/Edu/News]"
		}
		body := re.Snippet
		if re.CrawledText != "" {
			body = re.CrawledText
		}
		fmt.Fprintf(&sb, "%d. %s %s: %s (%s)\n", i+1, label, re.Title, truncate(body, 300), re.URL)
	}

	sb.WriteString(`
Weigh fact-check sources above authoritative sources, and authoritative sources above other web results.

Respond with JSON only:
{"verdict": "true|false|partially_true|unverified", "confidence": 0.0-1.0, "explanation": "...", "evidence": "key quote or finding"}`)
	return sb.String()
}

func buildFinalPrompt(claim string, buckets Buckets) string {
	var sb strings.Builder

	sb.WriteString("Based on ALL the evidence gathered, give a final truthfulness assessment of this claim.\n\n")
	sb.WriteString("Claim: " + claim + "\n")

	writeBucket(&sb, "Fact-check results", buckets.FactCheck, 300)
	writeBucket(&sb, "Crawled page content", buckets.Crawled, 400)
	writeBucket(&sb, "Search result snippets", buckets.Snippets, 300)

	sb.WriteString(`
Score the claim from 0 to 100 where 90-100 is TRUE, 70-89 LIKELY_TRUE, 40-69 UNCERTAIN, 20-39 LIKELY_FALSE, 0-19 FALSE.

Respond with JSON only:
{"score": 0-100, "verdict": "TRUE|LIKELY_TRUE|UNCERTAIN|LIKELY_FALSE|FALSE", "confidence": "high|medium|low", "reasoning": "...", "citations": ["url1", "url2"]}`)
	return sb.String()
}

func writeBucket(sb *strings.Builder, name string, items []model.EvidenceItem, charCap int) {
	if len(items) == 0 {
		return
	}
	if len(items) > maxBucketItems {
		items = items[:maxBucketItems]
	}
	sb.WriteString("\n" + name + ":\n")
	for i, item := range items {
		body := item.Snippet
		if item.CrawledText != "" {
			body = item.CrawledText
		}
		fmt.Fprintf(sb, "%d. %s: %s (%s)\n", i+1, item.Title, truncate(body, charCap), item.URL)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
