package normalize

import (
	"fmt"
	"testing"

	"FishMoney/internal/domain/models"
)

func TestNormalizeStrictFastPath(t *testing.T) {
	in := map[string]any{
		"ticker":               "AAPL",
		"company_name":         "Apple Inc.",
		"current_price":        187.5,
		"currency":             "USD",
		"price_change_percent": "1.25%",
		"sentiment":            "Bullish",
		"analysis_summary":     "Strong quarter.",
		"key_news_headlines":   []any{"Record revenue"},
	}
	rec, ok := NormalizeAnalysisPayload(in, "aapl")
	if !ok {
		t.Fatalf("expected ok")
	}
	if rec.CompanyName != "Apple Inc." || rec.CurrentPrice != 187.5 {
		t.Fatalf("fast path mutated record: %+v", rec)
	}
	if rec.Sentiment != models.SentimentBullish {
		t.Fatalf("unexpected sentiment %v", rec.Sentiment)
	}
}

func TestNormalizeFencedWebhookText(t *testing.T) {
	raw := "```json\n{\"ticker\":\"tsla\",\"current_price\":\"245.30\",\"change_percent\":\"2.1\"}\n```"
	parsed, ok := ParsePossibleJSON(raw)
	if !ok {
		t.Fatalf("parse failed")
	}
	rec, ok := NormalizeAnalysisPayload(parsed, "tsla")
	if !ok {
		t.Fatalf("normalize failed")
	}
	if rec.Ticker != "TSLA" {
		t.Fatalf("unexpected ticker %q", rec.Ticker)
	}
	if rec.CurrentPrice != 245.3 {
		t.Fatalf("unexpected price %v", rec.CurrentPrice)
	}
	if rec.PriceChangePercent != "2.10%" {
		t.Fatalf("unexpected percent %q", rec.PriceChangePercent)
	}
	if rec.Sentiment != models.SentimentNeutral {
		t.Fatalf("unexpected sentiment %v", rec.Sentiment)
	}
	if rec.CompanyName != "TSLA Corp." {
		t.Fatalf("unexpected company %q", rec.CompanyName)
	}
}

func TestNormalizeEnvelopedArray(t *testing.T) {
	in := map[string]any{
		"data": map[string]any{
			"result": []any{map[string]any{
				"ticker":    "IBM",
				"sentiment": "bear",
				"summary":   "weak quarter",
				"headlines": []any{"H1", "H2"},
			}},
		},
		"status": float64(200),
	}
	rec, ok := NormalizeAnalysisPayload(in, "IBM")
	if !ok {
		t.Fatalf("normalize failed")
	}
	if rec.Sentiment != models.SentimentBearish {
		t.Fatalf("unexpected sentiment %v", rec.Sentiment)
	}
	if rec.AnalysisSummary != "weak quarter" {
		t.Fatalf("unexpected summary %q", rec.AnalysisSummary)
	}
	if len(rec.KeyNewsHeadlines) != 2 || rec.KeyNewsHeadlines[0] != "H1" {
		t.Fatalf("unexpected headlines %v", rec.KeyNewsHeadlines)
	}
}

func TestNormalizeSignalGate(t *testing.T) {
	// A bare ticker carries no signal; no record may be manufactured from
	// defaults alone.
	if _, ok := NormalizeAnalysisPayload(map[string]any{"ticker": "AAPL"}, "AAPL"); ok {
		t.Fatalf("expected gate to reject")
	}
}

func TestNormalizeNonObjectFails(t *testing.T) {
	if _, ok := NormalizeAnalysisPayload("just text", "AAPL"); ok {
		t.Fatalf("expected failure")
	}
	if _, ok := NormalizeAnalysisPayload(float64(3), "AAPL"); ok {
		t.Fatalf("expected failure")
	}
}

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(1.5), 1.5, true},
		{"245.30", 245.3, true},
		{"$1,234.50", 1234.50, true},
		{" 42 ", 42, true},
		{"-3.2", -3.2, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"-", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := CoerceNumber(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("CoerceNumber(%v) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCoercePercent(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{float64(1.5), "1.50%", true},
		{"1.5", "1.50%", true},
		{" 3.2 % ", "3.2%", true},
		{"-0.8%", "-0.8%", true},
		{"nope", "", false},
	}
	for _, c := range cases {
		got, ok := CoercePercent(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("CoercePercent(%v) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCoerceSentiment(t *testing.T) {
	cases := []struct {
		in   string
		want models.Sentiment
		ok   bool
	}{
		{"Bullish", models.SentimentBullish, true},
		{"bullish", models.SentimentBullish, true},
		{"BUY signal", models.SentimentBullish, true},
		{"bearish", models.SentimentBearish, true},
		{"going down", models.SentimentBearish, true},
		{"positive", models.SentimentBullish, true},
		{"hold for now", models.SentimentNeutral, true},
		{"purple", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := CoerceSentiment(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("CoerceSentiment(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
	if _, ok := CoerceSentiment(float64(1)); ok {
		t.Fatalf("expected failure for non-string")
	}
}

func TestCoerceHeadlinesCapAndEmpties(t *testing.T) {
	in := make([]any, 0, 7)
	for i := 1; i <= 7; i++ {
		in = append(in, map[string]any{"title": fmt.Sprintf("T%d", i)})
	}
	out, ok := CoerceHeadlines(in)
	if !ok {
		t.Fatalf("expected ok")
	}
	if len(out) != 5 || out[0] != "T1" || out[4] != "T5" {
		t.Fatalf("unexpected headlines %v", out)
	}

	mixed := []any{"", "  ", "real one", map[string]any{"title": ""}, map[string]any{"headline": "second"}}
	out, ok = CoerceHeadlines(mixed)
	if !ok || len(out) != 2 || out[0] != "real one" || out[1] != "second" {
		t.Fatalf("unexpected headlines %v", out)
	}
}

func TestCoerceHeadlinesStringAndNested(t *testing.T) {
	out, ok := CoerceHeadlines("single headline")
	if !ok || len(out) != 1 || out[0] != "single headline" {
		t.Fatalf("unexpected %v", out)
	}

	out, ok = CoerceHeadlines(`["a","b"]`)
	if !ok || len(out) != 2 {
		t.Fatalf("unexpected %v", out)
	}

	out, ok = CoerceHeadlines(map[string]any{"items": []any{"x"}})
	if !ok || len(out) != 1 || out[0] != "x" {
		t.Fatalf("unexpected %v", out)
	}

	if _, ok := CoerceHeadlines(nil); ok {
		t.Fatalf("expected failure")
	}
}

func TestValidateRecordInvariants(t *testing.T) {
	rec := models.FallbackRecord("AAPL")
	if err := ValidateRecord(rec); err != nil {
		t.Fatalf("fallback record should validate: %v", err)
	}

	bad := *rec
	bad.Ticker = "aapl"
	if err := ValidateRecord(&bad); err == nil {
		t.Fatalf("expected lowercase ticker rejection")
	}

	bad = *rec
	bad.PriceChangePercent = "1.5"
	if err := ValidateRecord(&bad); err == nil {
		t.Fatalf("expected percent-format rejection")
	}

	bad = *rec
	bad.KeyNewsHeadlines = nil
	if err := ValidateRecord(&bad); err == nil {
		t.Fatalf("expected empty headlines rejection")
	}
}
