package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"FishMoney/internal/domain/models"

	"github.com/go-playground/validator/v10"
)

// Prioritized key paths per target field. First resolving path wins.
var (
	tickerPaths    = []string{"ticker", "symbol", "stock.ticker", "meta.ticker"}
	companyPaths   = []string{"company_name", "companyName", "company", "name", "stock.company_name", "profile.name"}
	pricePaths     = []string{"current_price", "currentPrice", "price", "last_price", "market_data.price", "quote.price"}
	currencyPaths  = []string{"currency", "market_data.currency", "quote.currency"}
	percentPaths   = []string{"price_change_percent", "priceChangePercent", "change_percent", "changePercent", "percent_change", "market_data.change_percent", "quote.change_percent"}
	sentimentPaths = []string{"sentiment", "analysis.sentiment", "signal"}
	summaryPaths   = []string{"analysis_summary", "analysisSummary", "summary", "analysis", "description"}
	headlinePaths  = []string{"key_news_headlines", "keyNewsHeadlines", "headlines", "key_news", "news", "articles"}
)

var headlineItemKeys = []string{"title", "headline", "summary", "description", "text"}

var validate = validator.New()

// NormalizeAnalysisPayload maps an arbitrary decoded payload onto the strict
// AnalysisRecord schema. It fails (returns false) when the payload carries no
// genuine signal field at all, so a record is never manufactured from pure
// defaults.
func NormalizeAnalysisPayload(raw any, tickerFallback string) (*models.AnalysisRecord, bool) {
	unwrapped := UnwrapPayload(raw)

	if rec, ok := strictRecord(unwrapped); ok {
		return rec, true
	}

	obj, ok := unwrapped.(map[string]any)
	if !ok {
		return nil, false
	}

	rawTicker, _ := resolveFirst(obj, tickerPaths)
	rawCompany, _ := resolveFirst(obj, companyPaths)
	rawPrice, havePrice := resolveFirst(obj, pricePaths)
	rawCurrency, _ := resolveFirst(obj, currencyPaths)
	rawPercent, havePercent := resolveFirst(obj, percentPaths)
	rawSentiment, _ := resolveFirst(obj, sentimentPaths)
	rawSummary, haveSummary := resolveFirst(obj, summaryPaths)
	rawHeadlines, haveHeadlines := resolveFirst(obj, headlinePaths)

	// Signal gate: without at least one real market or narrative field the
	// payload is noise, not an analysis.
	if !havePrice && !havePercent && !haveSummary && !haveHeadlines {
		return nil, false
	}

	ticker := strings.TrimSpace(tickerFallback)
	if s, ok := coerceString(rawTicker); ok {
		ticker = s
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, false
	}

	rec := &models.AnalysisRecord{
		Ticker:             ticker,
		CompanyName:        fmt.Sprintf("%s Corp.", ticker),
		CurrentPrice:       0,
		Currency:           "USD",
		PriceChangePercent: "0.00%",
		Sentiment:          models.SentimentNeutral,
		AnalysisSummary:    fmt.Sprintf("No analysis summary is available for %s at this time.", ticker),
		KeyNewsHeadlines:   []string{"No recent headlines found."},
	}

	if s, ok := coerceString(rawCompany); ok {
		rec.CompanyName = s
	}
	if f, ok := CoerceNumber(rawPrice); ok {
		rec.CurrentPrice = f
	}
	if s, ok := coerceString(rawCurrency); ok {
		rec.Currency = s
	}
	if s, ok := CoercePercent(rawPercent); ok {
		rec.PriceChangePercent = s
	}
	if s, ok := CoerceSentiment(rawSentiment); ok {
		rec.Sentiment = s
	}
	if s, ok := coerceString(rawSummary); ok {
		rec.AnalysisSummary = s
	}
	if hs, ok := CoerceHeadlines(rawHeadlines); ok {
		rec.KeyNewsHeadlines = hs
	}

	if err := ValidateRecord(rec); err != nil {
		return nil, false
	}
	return rec, true
}

// strictRecord is the fast path: a payload that already matches the schema
// exactly (no extra keys, all invariants satisfied) passes through untouched.
func strictRecord(v any) (*models.AnalysisRecord, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var rec models.AnalysisRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, false
	}
	if err := ValidateRecord(&rec); err != nil {
		return nil, false
	}
	return &rec, true
}

// ValidateRecord enforces the full AnalysisRecord contract: the struct tags
// plus the invariants tags cannot express.
func ValidateRecord(rec *models.AnalysisRecord) error {
	if err := validate.Struct(rec); err != nil {
		return err
	}
	if rec.Ticker != strings.ToUpper(rec.Ticker) {
		return fmt.Errorf("ticker %q is not uppercased", rec.Ticker)
	}
	if math.IsNaN(rec.CurrentPrice) || math.IsInf(rec.CurrentPrice, 0) {
		return fmt.Errorf("current_price is not finite")
	}
	if !strings.Contains(rec.PriceChangePercent, "%") {
		return fmt.Errorf("price_change_percent %q is not a percentage", rec.PriceChangePercent)
	}
	return nil
}

// CoerceNumber converts a decoded JSON value to a finite float64. Strings are
// first retried as JSON-ish text (double-encoded numbers), then cleaned of
// thousands separators and stray characters before parsing.
func CoerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		if parsed, ok := ParsePossibleJSON(n); ok {
			if f, isNum := parsed.(float64); isNum && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return f, true
			}
		}
		cleaned := cleanNumeric(n)
		if cleaned == "" || !strings.ContainsAny(cleaned, "0123456789") {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// cleanNumeric keeps digits, '.', '+' and '-', dropping whitespace, currency
// symbols and thousands separators.
func cleanNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '+' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CoercePercent produces a percent string. Values already containing '%' are
// returned with whitespace stripped; anything else is coerced to a number and
// formatted to two decimals.
func CoercePercent(v any) (string, bool) {
	if s, isStr := v.(string); isStr && strings.Contains(s, "%") {
		stripped := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
		return stripped, true
	}
	f, ok := CoerceNumber(v)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%.2f%%", f), true
}

var sentimentSynonyms = map[string]models.Sentiment{
	"bullish":  models.SentimentBullish,
	"positive": models.SentimentBullish,
	"bear":     models.SentimentBearish,
	"bearish":  models.SentimentBearish,
	"negative": models.SentimentBearish,
	"neutral":  models.SentimentNeutral,
	"flat":     models.SentimentNeutral,
}

// CoerceSentiment maps free-form sentiment text onto the fixed label set.
// Exact synonyms are consulted before substring heuristics; unrecognized text
// yields false so the caller's default applies.
func CoerceSentiment(v any) (models.Sentiment, bool) {
	str, isStr := v.(string)
	if !isStr {
		return "", false
	}
	s := strings.ToLower(strings.TrimSpace(str))
	if s == "" {
		return "", false
	}
	if sent, ok := sentimentSynonyms[s]; ok {
		return sent, true
	}
	// Word-level heuristics. Matching whole words keeps incidental substrings
	// ("purple" contains "up") from producing a label.
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		switch {
		case strings.HasPrefix(w, "bull") || w == "buy" || w == "up":
			return models.SentimentBullish, true
		case strings.HasPrefix(w, "bear") || w == "sell" || w == "down":
			return models.SentimentBearish, true
		case strings.HasPrefix(w, "neutral") || w == "hold" || w == "flat":
			return models.SentimentNeutral, true
		}
	}
	return "", false
}

// CoerceHeadlines extracts up to five non-empty headline strings from a
// string, array, or nested collection object.
func CoerceHeadlines(v any) ([]string, bool) {
	switch h := v.(type) {
	case string:
		if parsed, ok := ParsePossibleJSON(h); ok {
			if s, isStr := parsed.(string); !isStr || s != h {
				return CoerceHeadlines(parsed)
			}
		}
		t := strings.TrimSpace(h)
		if t == "" {
			return nil, false
		}
		return []string{t}, true

	case []any:
		out := make([]string, 0, 5)
		for _, el := range h {
			if len(out) == 5 {
				break
			}
			switch e := el.(type) {
			case string:
				if t := strings.TrimSpace(e); t != "" {
					out = append(out, t)
				}
			case map[string]any:
				for _, k := range headlineItemKeys {
					if s, isStr := e[k].(string); isStr {
						if t := strings.TrimSpace(s); t != "" {
							out = append(out, t)
							break
						}
					}
				}
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true

	case map[string]any:
		for _, k := range []string{"items", "headlines", "news", "data"} {
			if inner, ok := h[k]; ok {
				if res, found := CoerceHeadlines(inner); found {
					return res, true
				}
			}
		}
	}
	return nil, false
}

func coerceString(v any) (string, bool) {
	s, isStr := v.(string)
	if !isStr {
		return "", false
	}
	t := strings.TrimSpace(s)
	if t == "" {
		return "", false
	}
	return t, true
}
