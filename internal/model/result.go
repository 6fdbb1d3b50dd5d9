package model

// Fixed methodology and limitations text returned with every analysis.
const (
	MethodologyText = "SIFT extracts factual claims from text, searches verified fact-checking sources " +
		"and the general web, crawls source content, ranks evidence by relevance and source authority, " +
		"and synthesizes verdicts with confidence scores. Citations link to original fact-check articles and sources."

	LimitationsText = "Fact-checking accuracy depends on: (1) availability of relevant sources in the " +
		"fact-check index and search results, (2) recency of information (new claims may lack verification), " +
		"(3) model interpretation quality, and (4) source reliability. Always review citations for complete " +
		"context. Some claims may require expert review."
)

// Fixed summaries for degraded outcomes. The pipeline never returns a hard
// error for these; it returns a well-formed result carrying one of them.
const (
	SummaryNoText      = "No analyzable text found. Please select at least 10 characters."
	SummaryNoClaims    = "No factual claims detected in the selected text."
	SummaryFetchFailed = "Could not fetch URL content. Please check if the URL is accessible and try again."
	SummaryEmptyPage   = "No analyzable text content found in URL. The page may be empty, contain only images, or be inaccessible."
)

// AnalysisResult is the document-level aggregate returned for one request.
// Built once, returned, discarded; nothing is persisted.
type AnalysisResult struct {
	Claims      []ClaimVerdict `json:"claims"`
	Summary     string         `json:"summary"`
	Methodology string         `json:"methodology"`
	Limitations string         `json:"limitations"`

	// Set for URL-mode requests when the page exposed them.
	SourceTitle       string `json:"source_title,omitempty"`
	SourceDescription string `json:"source_description,omitempty"`

	// Translation metadata, present only when the input was not English.
	OriginalText     string `json:"original_text,omitempty"`
	TranslatedText   string `json:"translated_text,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty"`
}

// EmptyResult builds a claim-free result carrying one of the fixed summaries.
func EmptyResult(summary string) *AnalysisResult {
	return &AnalysisResult{
		Claims:      []ClaimVerdict{},
		Summary:     summary,
		Methodology: MethodologyText,
		Limitations: LimitationsText,
	}
}
