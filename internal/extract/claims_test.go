package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/siftlab/sift/internal/llm"
	"github.com/siftlab/sift/internal/model"
)

// fakeProvider returns a scripted response, or an error when Fail is set.
type fakeProvider struct {
	Response string
	Fail     bool
	Calls    int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, _ llm.Request) (string, error) {
	f.Calls++
	if f.Fail {
		return "", errors.New("model unavailable")
	}
	return f.Response, nil
}

func TestClaimExtractor_ShortInput(t *testing.T) {
	e := NewClaimExtractor(nil, zap.NewNop())

	for _, text := range []string{"", "short", "   \t  \n "} {
		if claims := e.Extract(context.Background(), text); len(claims) != 0 {
			t.Errorf("Expected no claims for %q, got %d", text, len(claims))
		}
	}
}

func TestClaimExtractor_ModelPath(t *testing.T) {
	provider := &fakeProvider{
		Response: `{"claims": [
			{"claim": "Unemployment fell to 3.4% in 2023", "type": "statistical", "confidence": 0.9},
			{"claim": "The treaty was signed in 1919", "type": "historical", "confidence": 1.5},
			{"claim": "Something odd", "type": "weird_type", "confidence": -0.2}
		]}`,
	}
	e := NewClaimExtractor(provider, zap.NewNop())

	claims := e.Extract(context.Background(), "Some input text long enough to analyze.")
	if len(claims) != 3 {
		t.Fatalf("Expected 3 claims, got %d", len(claims))
	}
	if claims[0].Type != model.ClaimTypeStatistical {
		t.Errorf("Expected statistical type, got %s", claims[0].Type)
	}
	// Out-of-range confidences are clamped, unknown types become general.
	if claims[1].Confidence != 1.0 {
		t.Errorf("Expected confidence clamped to 1.0, got %f", claims[1].Confidence)
	}
	if claims[2].Type != model.ClaimTypeGeneral {
		t.Errorf("Expected general type for unknown, got %s", claims[2].Type)
	}
	if claims[2].Confidence != 0.0 {
		t.Errorf("Expected confidence clamped to 0.0, got %f", claims[2].Confidence)
	}
}

func TestClaimExtractor_ModelFailureFallsBack(t *testing.T) {
	provider := &fakeProvider{Fail: true}
	e := NewClaimExtractor(provider, zap.NewNop())

	claims := e.Extract(context.Background(), "Studies show that coffee improves memory in adults.")
	if provider.Calls != 1 {
		t.Errorf("Expected 1 model call, got %d", provider.Calls)
	}
	if len(claims) == 0 {
		t.Fatal("Expected fallback to extract at least one claim")
	}
	if claims[0].Type != model.ClaimTypeStatistical {
		t.Errorf("Expected statistical claim from 'studies show', got %s", claims[0].Type)
	}
	if claims[0].Confidence != 0.5 {
		t.Errorf("Expected fallback confidence 0.5, got %f", claims[0].Confidence)
	}
}

func TestClaimExtractor_FallbackScientific(t *testing.T) {
	e := NewClaimExtractor(nil, zap.NewNop())

	claims := e.Extract(context.Background(), "COVID-19 vaccines cause autism.")
	if len(claims) == 0 {
		t.Fatal("Expected at least one claim")
	}
	if claims[0].Type != model.ClaimTypeScientific {
		t.Errorf("Expected scientific type, got %s", claims[0].Type)
	}
}

func TestClaimExtractor_FallbackFirstMatchWins(t *testing.T) {
	e := NewClaimExtractor(nil, zap.NewNop())

	// Matches both statistical (percentage) and historical (year); a
	// sentence gets at most one type and statistical patterns run first.
	claims := e.Extract(context.Background(), "Inflation reached 14% during 1980 in the United States.")
	if len(claims) != 1 {
		t.Fatalf("Expected exactly 1 claim, got %d", len(claims))
	}
	if claims[0].Type != model.ClaimTypeStatistical {
		t.Errorf("Expected statistical (first match wins), got %s", claims[0].Type)
	}
}

func TestClaimExtractor_FallbackSkipsShortSentences(t *testing.T) {
	e := NewClaimExtractor(nil, zap.NewNop())

	// "In 1999 it was." is under 20 characters and must be discarded.
	claims := e.Extract(context.Background(), "In 1999 it was. The revolution happened in 1789 according to the records.")
	for _, c := range claims {
		if len(c.Text) < 20 {
			t.Errorf("Fallback kept a sentence under 20 chars: %q", c.Text)
		}
	}
	if len(claims) != 1 {
		t.Errorf("Expected 1 claim, got %d", len(claims))
	}
}

func TestClaimExtractor_FallbackCap(t *testing.T) {
	e := NewClaimExtractor(nil, zap.NewNop())

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("The disaster happened in 1906 and destroyed most of the city. ")
	}
	claims := e.Extract(context.Background(), sb.String())
	if len(claims) > 10 {
		t.Errorf("Expected at most 10 claims, got %d", len(claims))
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("Hello\t\tworld!  This  is   ~~spaced~~ text.")
	if strings.Contains(got, "~") {
		t.Errorf("Expected special characters stripped, got %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("Expected whitespace collapsed, got %q", got)
	}
}
