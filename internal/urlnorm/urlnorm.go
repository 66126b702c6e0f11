// Package urlnorm rewrites relative URL references to absolute form against
// a base URL. Absolute URLs pass through unchanged, so normalization is
// idempotent.
package urlnorm

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// Normalize resolves raw against base. Empty input stays empty; anything
// already carrying a scheme is returned as-is.
func Normalize(raw string, base *url.URL) string {
	if raw == "" || base == nil {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.IsAbs() {
		return raw
	}

	return base.ResolveReference(u).String()
}

// NormalizeJSON walks an arbitrary JSON document and normalizes every string
// value stored under a key whose name ends in "url" (imageUrl, logoUrl, url,
// ...). Component configs are opaque to the backend except for this pass.
func NormalizeJSON(raw json.RawMessage, base *url.URL) json.RawMessage {
	if len(raw) == 0 || base == nil {
		return raw
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return raw
	}

	normalized := normalizeValue(doc, "", base)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return raw
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n"))
}

func normalizeValue(v any, key string, base *url.URL) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeValue(item, k, base)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeValue(item, key, base)
		}
		return val
	case string:
		if strings.HasSuffix(strings.ToLower(key), "url") {
			return Normalize(val, base)
		}
		return val
	default:
		return v
	}
}
