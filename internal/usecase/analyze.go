package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FishMoney/internal/domain/models"
	drepo "FishMoney/internal/domain/repository"
	"FishMoney/internal/normalize"
	xlogger "FishMoney/pkg/logger"
)

const payloadPreviewLimit = 600

// Analyzer runs one ticker analysis end to end: fetch the raw webhook
// payload, normalize it, and dispatch the outcome to the audit trail, the
// recent tracker and the live broadcast. Every request is independent; no
// state is shared between concurrent analyses.
type Analyzer struct {
	source       drepo.AnalysisSource
	audit        drepo.AuditLog
	recent       drepo.RecentTracker
	broadcast    drepo.Broadcaster
	metrics      drepo.Metrics
	logger       *xlogger.Logger
	auditTimeout time.Duration
}

// NewAnalyzer creates an Analyzer. audit, recent, broadcast and metrics may be
// nil; the corresponding side effect is skipped.
func NewAnalyzer(
	source drepo.AnalysisSource,
	audit drepo.AuditLog,
	recent drepo.RecentTracker,
	broadcast drepo.Broadcaster,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
	auditTimeout time.Duration,
) *Analyzer {
	if auditTimeout <= 0 {
		auditTimeout = 5 * time.Second
	}
	return &Analyzer{
		source:       source,
		audit:        audit,
		recent:       recent,
		broadcast:    broadcast,
		metrics:      metrics,
		logger:       logger,
		auditTimeout: auditTimeout,
	}
}

// Analyze fetches and normalizes the analysis for ticker. On failure the
// caller gets an error while a fallback placeholder record is logged to the
// audit trail for observability.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (*models.AnalysisRecord, error) {
	start := time.Now()
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	raw, err := a.source.FetchAnalysisPayload(ctx, ticker)
	if err != nil {
		a.recordOutcome("transport_error")
		a.logOutcome(&models.AnalysisLogEntry{
			Ticker:     ticker,
			OK:         false,
			Record:     models.FallbackRecord(ticker),
			Diagnostic: err.Error(),
			CreatedAt:  time.Now(),
		})
		return nil, fmt.Errorf("fetch analysis for %s: %w", ticker, err)
	}

	parsed, ok := normalize.ParsePossibleJSON(raw)
	if !ok {
		return nil, a.failUnrecognized(ticker, raw)
	}
	record, ok := normalize.NormalizeAnalysisPayload(parsed, ticker)
	if !ok {
		return nil, a.failUnrecognized(ticker, raw)
	}

	a.recordOutcome("ok")
	if a.metrics != nil {
		a.metrics.RecordLastPrice(record.Ticker, record.CurrentPrice)
		a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	}
	if a.broadcast != nil {
		a.broadcast.Publish(record)
	}
	a.logOutcome(&models.AnalysisLogEntry{
		Ticker:    record.Ticker,
		OK:        true,
		Record:    record,
		CreatedAt: time.Now(),
	})
	return record, nil
}

func (a *Analyzer) failUnrecognized(ticker, raw string) error {
	a.recordOutcome("unrecognized")
	diag := fmt.Sprintf("unrecognized analysis payload for %s: %s", ticker, preview(raw))
	a.logOutcome(&models.AnalysisLogEntry{
		Ticker:     ticker,
		OK:         false,
		Record:     models.FallbackRecord(ticker),
		Diagnostic: diag,
		CreatedAt:  time.Now(),
	})
	return fmt.Errorf("%s", diag)
}

// logOutcome writes the audit entry and recent-list update without blocking
// the response. Failures are logged and swallowed.
func (a *Analyzer) logOutcome(entry *models.AnalysisLogEntry) {
	if a.audit == nil && (a.recent == nil || !entry.OK) {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.auditTimeout)
		defer cancel()

		if a.audit != nil {
			if err := a.audit.Log(ctx, entry); err != nil && a.logger != nil {
				a.logger.Warn("audit log write failed",
					xlogger.String("ticker", entry.Ticker),
					xlogger.Error(err),
				)
			}
		}
		if a.recent != nil && entry.OK {
			if err := a.recent.Push(ctx, entry.Record); err != nil && a.logger != nil {
				a.logger.Warn("recent tracker push failed",
					xlogger.String("ticker", entry.Ticker),
					xlogger.Error(err),
				)
			}
		}
	}()
}

func (a *Analyzer) recordOutcome(outcome string) {
	if a.metrics != nil {
		a.metrics.RecordAnalysis(outcome)
	}
}

func preview(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > payloadPreviewLimit {
		return s[:payloadPreviewLimit]
	}
	return s
}
