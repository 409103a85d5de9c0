// Package normalize coerces the loosely structured payloads returned by the
// n8n analysis webhook into the strict AnalysisRecord contract. All functions
// operate on the value set produced by encoding/json (map[string]any, []any,
// string, float64, bool, nil) and never panic on malformed input.
package normalize

import (
	"encoding/json"
	"strings"
)

// ParsePossibleJSON extracts a JSON value from raw text. The text may be pure
// JSON, a fenced ```json code block, a JSON-encoded string that itself
// contains JSON, or prose with an embedded object/array. Returns false when no
// JSON value can be recovered.
func ParsePossibleJSON(text string) (any, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}

	candidates := []string{trimmed}
	if inner, ok := fencedContent(trimmed); ok {
		candidates = append(candidates, inner)
	}

	for _, cand := range candidates {
		v, err := decodeJSON(cand)
		if err != nil {
			continue
		}
		// One level of double-encoding: a parsed string that differs from the
		// candidate may itself be JSON.
		if s, isStr := v.(string); isStr && s != cand && strings.TrimSpace(s) != "" {
			if inner, err := decodeJSON(s); err == nil {
				return inner, true
			}
		}
		return v, true
	}

	span, ok := extractBalancedSpan(trimmed)
	if !ok || span == trimmed {
		return nil, false
	}
	v, err := decodeJSON(span)
	if err != nil {
		return nil, false
	}
	return v, true
}

func decodeJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// fencedContent returns the inner content of the first triple-backtick code
// block, tolerating an optional "json" language tag.
func fencedContent(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	if strings.HasPrefix(strings.ToLower(rest), "json") {
		rest = rest[4:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	inner := strings.TrimSpace(rest[:end])
	if inner == "" {
		return "", false
	}
	return inner, true
}

// extractBalancedSpan scans for the first '{' or '[' and returns the substring
// up to its matching closer. String literals are tracked so braces inside
// quoted text do not affect nesting depth.
func extractBalancedSpan(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	// Unterminated string or unbalanced brackets.
	return "", false
}
