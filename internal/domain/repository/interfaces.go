package repository

import (
	"context"

	"FishMoney/internal/domain/models"
)

// AnalysisSource fetches the raw analysis payload for a ticker from the
// external workflow webhook.
type AnalysisSource interface {
	FetchAnalysisPayload(ctx context.Context, ticker string) (string, error)
}

// AuditLog persists analysis outcomes. Writes are best-effort; callers never
// block a response on them.
type AuditLog interface {
	Log(ctx context.Context, entry *models.AnalysisLogEntry) error
	Health(ctx context.Context) error
	Close() error
}

// RecentTracker keeps a short rolling list of recently analyzed records.
type RecentTracker interface {
	Push(ctx context.Context, record *models.AnalysisRecord) error
	Recent(ctx context.Context, limit int) ([]*models.RecentAnalysis, error)
	Close() error
}

// Broadcaster pushes completed records to live listeners.
type Broadcaster interface {
	Publish(record *models.AnalysisRecord)
}

type Metrics interface {
	RecordAnalysis(outcome string)
	RecordWebhookAttempt(result string)
	RecordLastPrice(ticker string, price float64)
	RecordLatency(op string, seconds float64)
}
