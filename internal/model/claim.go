package model

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeStatistical ClaimType = "statistical" // Numbers, percentages, study findings
	ClaimTypeHistorical  ClaimType = "historical"  // Dates, past events
	ClaimTypeScientific  ClaimType = "scientific"  // Research results, causal assertions
	ClaimTypeEvent       ClaimType = "event"       // Claims about events or people
	ClaimTypeGeneral     ClaimType = "general"     // Everything else
)

// ParseClaimType maps a free-form type string to a known ClaimType.
// Unrecognized values fall back to ClaimTypeGeneral.
func ParseClaimType(s string) ClaimType {
	switch ClaimType(s) {
	case ClaimTypeStatistical, ClaimTypeHistorical, ClaimTypeScientific, ClaimTypeEvent, ClaimTypeGeneral:
		return ClaimType(s)
	default:
		return ClaimTypeGeneral
	}
}

// Claim represents a verifiable factual assertion extracted from the source text.
// Claims are immutable after extraction.
type Claim struct {
	Text       string    `json:"claim"`      // The claim text itself
	Type       ClaimType `json:"type"`       // Claim category
	Confidence float64   `json:"confidence"` // Extraction confidence, 0-1
}
