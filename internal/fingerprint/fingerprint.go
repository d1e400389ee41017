// Package fingerprint derives the deduplication key for an article URL.
// Determinism is the core guarantee: two URLs that differ only by case,
// fragment, one trailing slash, or a tracking parameter hash identically.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// droppedParams are query parameters stripped before hashing. utm_* is
// handled by prefix.
var droppedParams = map[string]struct{}{
	"fbclid": {},
	"gclid":  {},
	"ref":    {},
	"source": {},
}

// FromURL canonicalizes raw and returns its sha256 digest as lowercase hex.
// A URL that cannot be parsed falls back to the lowercased, trimmed raw
// input: dedup degrades, it never aborts.
func FromURL(raw string) string {
	normalized, ok := normalize(raw)
	if !ok {
		normalized = strings.ToLower(strings.TrimSpace(raw))
	}

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func normalize(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return "", false
	}

	query := parsed.Query()
	for key := range query {
		if isTrackingParam(key) {
			query.Del(key)
		}
	}

	rebuilt := parsed.Scheme + "://" + parsed.Host + parsed.EscapedPath()
	if encoded := query.Encode(); encoded != "" {
		rebuilt += "?" + encoded
	}

	rebuilt = strings.ToLower(rebuilt)
	rebuilt = strings.TrimSuffix(rebuilt, "/")
	return rebuilt, true
}

func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	_, dropped := droppedParams[key]
	return dropped
}
