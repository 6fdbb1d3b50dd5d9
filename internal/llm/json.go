package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// SynthesisError reports a model response that could not be decoded into the
// expected structure. Callers catch it and substitute their fallback value.
type SynthesisError struct {
	Op  string // Which synthesis call failed
	Raw string // The raw model output, truncated
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("llm: decode %s: %v", e.Op, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*([\\[{].*?[\\]}])\\s*```")
	bareObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	bareArrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
)

// DecodeJSON decodes a model response into v. Models frequently wrap JSON in
// prose or markdown code fences despite instructions, so decoding is tried in
// order: the raw text, a fenced block, a bare object, a bare array. The op
// string names the call site for error reporting.
func DecodeJSON(op, text string, v any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &SynthesisError{Op: op, Raw: "", Err: fmt.Errorf("empty response")}
	}

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[1]), v); err == nil {
			return nil
		}
	}

	if m := bareObjectPattern.FindString(text); m != "" {
		if err := json.Unmarshal([]byte(m), v); err == nil {
			return nil
		}
	}

	if m := bareArrayPattern.FindString(text); m != "" {
		if err := json.Unmarshal([]byte(m), v); err == nil {
			return nil
		}
	}

	raw := text
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return &SynthesisError{Op: op, Raw: raw, Err: fmt.Errorf("no decodable JSON in response")}
}
