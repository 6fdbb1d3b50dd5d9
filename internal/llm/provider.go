// Package llm wraps the language-model capability behind a narrow Provider
// interface. Callers never see transport details; they get text (or decoded
// JSON via DecodeJSON) or an error they are expected to degrade on.
package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by the factory when no provider is set up.
// Surfaced once at service construction, not per request.
var ErrNotConfigured = errors.New("llm: no provider configured")

// Request describes one generation call.
type Request struct {
	// System is the system prompt; empty means the provider default.
	System string

	// Prompt is the user prompt.
	Prompt string

	// JSONMode asks the model for a structured JSON response. Providers
	// that support a native JSON response type use it; the response may
	// still arrive wrapped in prose or code fences, which DecodeJSON
	// recovers from.
	JSONMode bool

	// Temperature overrides the provider default when > 0.
	Temperature float64

	// MaxTokens limits the response length when > 0.
	MaxTokens int
}

// Provider is the language-model capability consumed by the pipeline.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate runs one completion and returns the raw response text.
	Generate(ctx context.Context, req Request) (string, error)
}

// DefaultSystemPrompt instructs the model to respond with bare JSON verdicts.
const DefaultSystemPrompt = `You are a fact-checking assistant. Your task is to analyze claims and provide structured JSON responses only.

You must respond with valid JSON only. Do not include any markdown formatting, code blocks, or explanatory text outside the JSON.

When fact-checking:
- "true": Claim is verified as factually correct
- "false": Claim is verified as factually incorrect
- "partially_true": Claim is misleading or partially true
- "unverified": Cannot determine with available information

Always return confidence scores between 0.0 and 1.0.`

// Config holds provider configuration
type Config struct {
	// Provider name: "gemini", "openai", ""
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey for the provider
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// BaseURL for custom endpoints
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout for API requests, seconds
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// Temperature default for generation
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "",
		Model:       "",
		Timeout:     30,
		Temperature: 0.1,
		MaxTokens:   8192,
	}
}
