package normalize

import "strings"

// maxUnwrapDepth bounds the recursive descent through envelopes.
const maxUnwrapDepth = 8

// wrapperKeys are tried in priority order when an object does not itself look
// like an analysis payload.
var wrapperKeys = []string{"data", "result", "output", "json", "body", "payload", "item"}

// metadataKeys are envelope siblings that are safe to discard. These follow
// the item/execution conventions n8n and similar automation tools emit.
var metadataKeys = map[string]struct{}{
	"status":      {},
	"statusCode":  {},
	"code":        {},
	"headers":     {},
	"ok":          {},
	"meta":        {},
	"id":          {},
	"type":        {},
	"pairedItem":  {},
	"pairedItems": {},
	"index":       {},
	"executionId": {},
}

// UnwrapPayload peels wrapper conventions off a decoded JSON value until it
// reaches the object most likely to be the analysis record. Unwrapping is
// conservative: siblings are only discarded when every one of them is a known
// metadata key.
func UnwrapPayload(v any) any {
	return unwrap(v, 0)
}

func unwrap(v any, depth int) any {
	if depth > maxUnwrapDepth {
		return v
	}

	switch val := v.(type) {
	case string:
		if parsed, ok := ParsePossibleJSON(val); ok {
			if s, isStr := parsed.(string); !isStr || s != val {
				return unwrap(parsed, depth+1)
			}
		}
		return val

	case []any:
		if len(val) == 0 {
			return val
		}
		pick := val[0]
		for _, el := range val {
			if _, isObj := el.(map[string]any); isObj {
				pick = el
				break
			}
		}
		return unwrap(pick, depth+1)

	case map[string]any:
		if looksLikeAnalysisPayload(val) {
			return val
		}

		for _, wk := range wrapperKeys {
			inner, present := val[wk]
			if !present {
				continue
			}

			metadataOnly := true
			for k := range val {
				if k == wk {
					continue
				}
				if _, isMeta := metadataKeys[k]; !isMeta {
					metadataOnly = false
					break
				}
			}
			if metadataOnly {
				return unwrap(inner, depth+1)
			}

			res := unwrap(inner, depth+1)
			if m, isObj := res.(map[string]any); isObj && looksLikeAnalysisPayload(m) {
				return res
			}
			if _, isArr := res.([]any); isArr {
				return res
			}
			if s, isStr := res.(string); isStr {
				if parsed, ok := ParsePossibleJSON(s); ok {
					return unwrap(parsed, depth+1)
				}
			}
			break
		}

		if items, ok := val["items"].([]any); ok && len(val) <= 2 {
			return unwrap(items, depth+1)
		}

		return val

	default:
		return v
	}
}

// looksLikeAnalysisPayload reports whether an object carries a ticker-like key
// together with either market data or narrative content. The heuristic is
// deliberately narrow; widening it risks grabbing envelope objects that merely
// mention a symbol.
func looksLikeAnalysisPayload(m map[string]any) bool {
	if !hasAnyKey(m, "ticker", "symbol") {
		return false
	}
	if hasAnyKey(m, "current_price", "currentPrice", "price", "price_change_percent", "change_percent") {
		return true
	}
	return hasAnyKey(m, "analysis_summary", "summary", "sentiment", "key_news_headlines", "headlines", "news")
}

func hasAnyKey(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// resolvePath walks a dotted key path through nested objects. Any non-object
// intermediate or missing/null leaf yields false.
func resolvePath(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := obj[part]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// resolveFirst returns the value of the first path that resolves.
func resolveFirst(m map[string]any, paths []string) (any, bool) {
	for _, p := range paths {
		if v, ok := resolvePath(m, p); ok {
			return v, true
		}
	}
	return nil, false
}
