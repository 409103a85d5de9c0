package models

import (
	"fmt"
	"strings"
	"time"
)

// Sentiment is the fixed direction label attached to an analysis.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

// AnalysisRecord is the strict output contract of the normalizer. JSON field
// names follow the n8n workflow response schema (snake_case).
type AnalysisRecord struct {
	Ticker             string    `json:"ticker" validate:"required"`
	CompanyName        string    `json:"company_name" validate:"required"`
	CurrentPrice       float64   `json:"current_price"`
	Currency           string    `json:"currency" validate:"required"`
	PriceChangePercent string    `json:"price_change_percent" validate:"required"`
	Sentiment          Sentiment `json:"sentiment" validate:"required,oneof=Bullish Bearish Neutral"`
	AnalysisSummary    string    `json:"analysis_summary" validate:"required"`
	KeyNewsHeadlines   []string  `json:"key_news_headlines" validate:"required,min=1,max=5,dive,required"`
}

// FallbackRecord builds the placeholder record used for audit logging when an
// analysis fails outright (webhook unreachable or payload unrecognizable).
func FallbackRecord(ticker string) *AnalysisRecord {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	return &AnalysisRecord{
		Ticker:             t,
		CompanyName:        fmt.Sprintf("%s Corp.", t),
		CurrentPrice:       0,
		Currency:           "USD",
		PriceChangePercent: "0.00%",
		Sentiment:          SentimentNeutral,
		AnalysisSummary:    fmt.Sprintf("Analysis for %s is currently unavailable. The analysis service could not be reached.", t),
		KeyNewsHeadlines:   []string{"No news available - analysis service unreachable."},
	}
}

// RecentAnalysis is one entry of the rolling recent-analyses list.
type RecentAnalysis struct {
	Record *AnalysisRecord `json:"record"`
	At     time.Time       `json:"at"`
}

// AnalysisLogEntry is one row of the audit trail.
type AnalysisLogEntry struct {
	Ticker     string          `json:"ticker"`
	OK         bool            `json:"ok"`
	Record     *AnalysisRecord `json:"record"`
	Diagnostic string          `json:"diagnostic,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
