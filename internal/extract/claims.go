// Package extract turns free text into candidate claims and search queries.
// Both extractors are total: the language model is the primary path and a
// deterministic fallback covers every failure, so callers never see an error.
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
	minTextLen     = 10
	minSentenceLen = 20
	maxClaims      = 10
)

// ClaimExtractor extracts factual claims from text
type ClaimExtractor struct {
	provider llm.Provider // nil disables the model path
	logger   *zap.Logger

	fallbackPatterns []typedPattern
}

type typedPattern struct {
	claimType model.ClaimType
	pattern   *regexp.Regexp
}

// NewClaimExtractor creates a new claim extractor. A nil provider is valid:
// extraction then always uses the pattern fallback.
func NewClaimExtractor(provider llm.Provider, logger *zap.Logger) *ClaimExtractor {
	return &ClaimExtractor{
		provider: provider,
		logger:   logger,
		// Per-type regular-expression families; a sentence matches at
		// most one type, first match wins.
		fallbackPatterns: []typedPattern{
			{model.ClaimTypeStatistical, regexp.MustCompile(`\d+%`)},
			{model.ClaimTypeStatistical, regexp.MustCompile(`(?i)\d+\s+(percent|percentage|million|billion)`)},
			{model.ClaimTypeStatistical, regexp.MustCompile(`(?i)(studies|research|data)\s+(show|indicate|suggest)`)},
			{model.ClaimTypeHistorical, regexp.MustCompile(`(?i)\b(in|on|during)\s+\d{4}\b`)},
			{model.ClaimTypeHistorical, regexp.MustCompile(`(?i)(happened|occurred|took place)\s+(in|on)\b`)},
			{model.ClaimTypeScientific, regexp.MustCompile(`(?i)(research|study|scientists)\s+(find|found|discover)`)},
			{model.ClaimTypeScientific, regexp.MustCompile(`(?i)(proven|proves|evidence)\s+(that|shows)`)},
			{model.ClaimTypeScientific, regexp.MustCompile(`(?i)\b\w+s?\s+(cause|causes|prevent|prevents|cure|cures)\s+\w+`)},
		},
	}
}

type claimsPayload struct {
	Claims []rawClaim `json:"claims"`
}

type rawClaim struct {
	Claim      string  `json:"claim"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Extract extracts factual claims from text. Inputs under 10 non-whitespace
// characters yield an empty list, not an error; so does every failure mode.
func (e *ClaimExtractor) Extract(ctx context.Context, text string) []model.Claim {
	if len(strings.TrimSpace(text)) < minTextLen {
		return nil
	}

	cleaned := CleanText(text)

	if e.provider != nil {
		claims, err := e.extractWithModel(ctx, cleaned)
		if err == nil {
			return claims
		}
		e.logger.Warn("claim extraction model call failed, using pattern fallback", zap.Error(err))
	}

	return e.extractFallback(cleaned)
}

func (e *ClaimExtractor) extractWithModel(ctx context.Context, text string) ([]model.Claim, error) {
	prompt := fmt.Sprintf(`Analyze the following text and extract all factual claims that can be fact-checked.

A claim is a statement that can be verified as true or false. Focus on:
- Statistical statements
- Historical facts
- Scientific claims
- Statements about events or people
- Claims about dates, numbers, or specific facts

Text to analyze:
%s

Return a JSON array of claims, each with:
- "claim": the extracted claim text
- "type": the type of claim (statistical, historical, scientific, event, general)
- "confidence": confidence score (0-1)

Format: {"claims": [{"claim": "...", "type": "...", "confidence": 0.9}]}`, text)

	response, err := e.provider.Generate(ctx, llm.Request{Prompt: prompt, JSONMode: true})
	if err != nil {
		return nil, err
	}

	// Accept either the documented envelope or a bare array.
	var payload claimsPayload
	if err := llm.DecodeJSON("claims", response, &payload); err != nil || len(payload.Claims) == 0 {
		var bare []rawClaim
		if arrErr := llm.DecodeJSON("claims", response, &bare); arrErr != nil {
			if err != nil {
				return nil, err
			}
			return nil, arrErr
		}
		payload.Claims = bare
	}

	claims := make([]model.Claim, 0, len(payload.Claims))
	for _, raw := range payload.Claims {
		claimText := strings.TrimSpace(raw.Claim)
		if claimText == "" {
			continue
		}
		claims = append(claims, model.Claim{
			Text:       claimText,
			Type:       model.ParseClaimType(raw.Type),
			Confidence: clamp01(raw.Confidence),
		})
	}
	return claims, nil
}

// extractFallback matches sentences against the per-type pattern families.
func (e *ClaimExtractor) extractFallback(text string) []model.Claim {
	var claims []model.Claim
	for _, sentence := range SplitSentences(text) {
		if len(sentence) < minSentenceLen {
			continue
		}
		for _, tp := range e.fallbackPatterns {
			if tp.pattern.MatchString(sentence) {
				claims = append(claims, model.Claim{
					Text:       sentence,
					Type:       tp.claimType,
					Confidence: 0.5,
				})
				break // One type per sentence
			}
		}
		if len(claims) >= maxClaims {
			break
		}
	}
	return claims
}

var (
	whitespacePattern    = regexp.MustCompile(`\s+`)
	specialCharsPattern  = regexp.MustCompile(`[^\w\s.,!?;:-]`)
	sentenceSplitPattern = regexp.MustCompile(`[.!?]\s+`)
)

// CleanText collapses whitespace and strips characters outside the word,
// whitespace and basic punctuation classes.
func CleanText(text string) string {
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = specialCharsPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// SplitSentences splits text on sentence terminators followed by whitespace.
func SplitSentences(text string) []string {
	parts := sentenceSplitPattern.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
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
