// Package urlutil holds the URL validation and normalization helpers shared
// by the retriever and the crawler.
package urlutil

import (
	"net/url"
	"strings"
)

// IsValid reports whether rawURL parses and carries both a scheme and a host.
// Anything else is rejected before any network call is made.
func IsValid(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// Normalize canonicalizes a URL for use as a dedupe key: fragment dropped,
// query kept, trailing slashes trimmed. Idempotent: Normalize(Normalize(u))
// equals Normalize(u).
func Normalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	normalized := parsed.Scheme + "://" + parsed.Host + parsed.Path
	if parsed.RawQuery != "" {
		normalized += "?" + parsed.RawQuery
	}
	return strings.TrimRight(normalized, "/")
}

// Domain extracts the host portion of a URL, without the port.
func Domain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := parsed.Host
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}
