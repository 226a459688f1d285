// # internal/ai/jsonx.go
package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Assistant replies wrap JSON in code fences or prose more often than not.
// Pre-compiled extraction patterns, greedy so nested structures survive.
var (
	jsonFenceRe  = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")
	jsonObjectRe = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	jsonArrayRe  = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// ExtractJSON pulls the first valid JSON object or array out of assistant
// output, trying the raw text, then fenced blocks, then a greedy match over
// mixed content. Returns "" when nothing parses.
func ExtractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	if validJSON(trimmed) {
		return trimmed
	}

	for _, m := range jsonFenceRe.FindAllStringSubmatch(trimmed, -1) {
		candidate := strings.TrimSpace(m[1])
		if validJSON(candidate) {
			return candidate
		}
	}

	// First JSON-like character decides object vs. array, preventing an
	// object match from eating a surrounding array.
	var candidate string
	if strings.HasPrefix(trimmed, "[") {
		candidate = jsonArrayRe.FindString(trimmed)
	} else {
		candidate = jsonObjectRe.FindString(trimmed)
	}
	if validJSON(candidate) {
		return candidate
	}

	if candidate = jsonArrayRe.FindString(trimmed); validJSON(candidate) {
		return candidate
	}
	return ""
}

func validJSON(s string) bool {
	if s == "" {
		return false
	}
	return json.Valid([]byte(s))
}
