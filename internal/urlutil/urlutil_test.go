package urlutil

import "testing"

func TestIsValid(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/path?q=1",
		"https://sub.example.co.uk/a/b",
	}
	for _, u := range valid {
		if !IsValid(u) {
			t.Errorf("Expected %q to be valid", u)
		}
	}

	invalid := []string{
		"",
		"example.com",
		"/relative/path",
		"javascript:alert(1)",
		"mailto:someone@example.com",
	}
	for _, u := range invalid {
		if IsValid(u) {
			t.Errorf("Expected %q to be invalid", u)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://example.com/", "https://example.com"},
		{"https://example.com/path/", "https://example.com/path"},
		{"https://example.com/path#section", "https://example.com/path"},
		{"https://example.com/path?q=1#frag", "https://example.com/path?q=1"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	urls := []string{
		"https://example.com/path/?q=1#frag",
		"http://example.com//",
		"https://example.com/a/b/c",
	}
	for _, u := range urls {
		once := Normalize(u)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", u, once, twice)
		}
	}
}

func TestDomain(t *testing.T) {
	if got := Domain("https://example.com:8080/path"); got != "example.com" {
		t.Errorf("Domain = %q, want example.com", got)
	}
	if got := Domain("https://sub.example.com/x"); got != "sub.example.com" {
		t.Errorf("Domain = %q, want sub.example.com", got)
	}
}
