// Package lang detects the input language and translates non-English text
// so the extraction prompts always operate on English.
package lang

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Detect returns the ISO-639-1 code of the text's language. Inputs under 3
// characters and detection failures default to "en".
func Detect(text string) string {
	if len(strings.TrimSpace(text)) < 3 {
		return "en"
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "en"
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return "en"
	}
	return code
}
