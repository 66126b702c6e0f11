package urlnorm

import (
	"encoding/json"
	"net/url"
	"testing"
)

func mustParse(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return u
}

func TestNormalize(t *testing.T) {
	base := mustParse(t, "https://live.example.com")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty stays empty", "", ""},
		{"absolute https passthrough", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"absolute http passthrough", "http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"root-relative path", "/uploads/logo.png", "https://live.example.com/uploads/logo.png"},
		{"bare relative path", "uploads/logo.png", "https://live.example.com/uploads/logo.png"},
		{"query preserved", "/img?x=1&y=2", "https://live.example.com/img?x=1&y=2"},
		{"data uri passthrough", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input, base); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	base := mustParse(t, "https://live.example.com")

	inputs := []string{
		"",
		"/uploads/logo.png",
		"relative/path.jpg",
		"https://cdn.example.com/a.jpg",
		"/img?x=1",
	}

	for _, in := range inputs {
		once := Normalize(in, base)
		twice := Normalize(once, base)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeJSON(t *testing.T) {
	base := mustParse(t, "https://live.example.com")

	in := json.RawMessage(`{
		"title": "Sale",
		"imageUrl": "/uploads/banner.jpg",
		"link": "/not-touched",
		"slides": [
			{"imageUrl": "/uploads/one.jpg", "caption": "one"},
			{"imageUrl": "https://cdn.example.com/two.jpg"}
		],
		"nested": {"logoUrl": "/logo.svg"}
	}`)

	out := NormalizeJSON(in, base)

	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if got := doc["imageUrl"]; got != "https://live.example.com/uploads/banner.jpg" {
		t.Errorf("imageUrl = %v, want absolute", got)
	}
	if got := doc["link"]; got != "/not-touched" {
		t.Errorf("link should not be rewritten, got %v", got)
	}

	slides := doc["slides"].([]any)
	first := slides[0].(map[string]any)
	if got := first["imageUrl"]; got != "https://live.example.com/uploads/one.jpg" {
		t.Errorf("slides[0].imageUrl = %v, want absolute", got)
	}
	second := slides[1].(map[string]any)
	if got := second["imageUrl"]; got != "https://cdn.example.com/two.jpg" {
		t.Errorf("slides[1].imageUrl = %v, want passthrough", got)
	}

	nested := doc["nested"].(map[string]any)
	if got := nested["logoUrl"]; got != "https://live.example.com/logo.svg" {
		t.Errorf("nested.logoUrl = %v, want absolute", got)
	}
}

func TestNormalizeJSONInvalidInput(t *testing.T) {
	base := mustParse(t, "https://live.example.com")
	in := json.RawMessage(`{not json`)
	if got := NormalizeJSON(in, base); string(got) != string(in) {
		t.Errorf("invalid JSON should pass through unchanged, got %s", got)
	}
}
