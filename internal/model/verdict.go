package model

// Verdict is the per-evidence verdict label surfaced to clients
type Verdict string

const (
	VerdictTrue       Verdict = "true"
	VerdictFalse      Verdict = "false"
	VerdictMisleading Verdict = "misleading"
	VerdictNoInfo     Verdict = "no_info"
)

// FinalVerdict labels the holistic 0-100 truth score:
// 90-100 TRUE, 70-89 LIKELY_TRUE, 40-69 UNCERTAIN, 20-39 LIKELY_FALSE, 0-19 FALSE.
type FinalVerdict string

const (
	FinalTrue        FinalVerdict = "TRUE"
	FinalLikelyTrue  FinalVerdict = "LIKELY_TRUE"
	FinalUncertain   FinalVerdict = "UNCERTAIN"
	FinalLikelyFalse FinalVerdict = "LIKELY_FALSE"
	FinalFalse       FinalVerdict = "FALSE"
)

// ParseFinalVerdict normalizes a raw verdict label. "MIXED" and anything
// unrecognized collapse to UNCERTAIN.
func ParseFinalVerdict(s string) FinalVerdict {
	switch FinalVerdict(s) {
	case FinalTrue, FinalLikelyTrue, FinalUncertain, FinalLikelyFalse, FinalFalse:
		return FinalVerdict(s)
	default:
		return FinalUncertain
	}
}

// ConfidenceLevel is the coarse confidence attached to a final verdict
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ParseConfidenceLevel normalizes a raw confidence string, defaulting to medium.
func ParseConfidenceLevel(s string) ConfidenceLevel {
	switch ConfidenceLevel(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return ConfidenceLevel(s)
	default:
		return ConfidenceMedium
	}
}

// ClaimVerdict is the terminal per-claim result, merging the evidence verdict
// (stage one) with the holistic final verdict (stage two). Never mutated after
// creation.
type ClaimVerdict struct {
	Claim         string  `json:"claim"`
	OriginalClaim string  `json:"original_claim,omitempty"`
	Verdict       Verdict `json:"verdict"`
	Confidence    float64 `json:"confidence"`
	Explanation   string  `json:"explanation"`

	Citations []string `json:"citations"`
	Language  string   `json:"analysis_language,omitempty"`

	FinalScore      int             `json:"final_score"` // Always clamped to 0-100
	FinalVerdict    FinalVerdict    `json:"final_verdict"`
	FinalConfidence ConfidenceLevel `json:"final_confidence"`
	FinalReasoning  string          `json:"final_reasoning"`
	FinalCitations  []string        `json:"final_citations"`
}
