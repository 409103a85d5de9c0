package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"FishMoney/internal/domain/models"
	"FishMoney/internal/domain/repository"
	pkgkafka "FishMoney/pkg/kafka"
)

// ClickHouseAuditLog implements AuditLog backed by the analysis_log table.
type ClickHouseAuditLog struct {
	db    *sql.DB
	table string
}

// NewClickHouseAuditLog creates ClickHouse-backed audit storage.
func NewClickHouseAuditLog(db *sql.DB, table string) repository.AuditLog {
	return &ClickHouseAuditLog{db: db, table: table}
}

func (s *ClickHouseAuditLog) Log(ctx context.Context, entry *models.AnalysisLogEntry) error {
	if entry == nil {
		return fmt.Errorf("entry is nil")
	}
	record, err := json.Marshal(entry.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	ts := entry.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	ok := uint8(0)
	if entry.OK {
		ok = 1
	}
	q := fmt.Sprintf("INSERT INTO %s (ts, ticker, ok, record, diagnostic) VALUES (?, ?, ?, ?, ?)", s.table)
	_, err = s.db.ExecContext(ctx, q, ts, entry.Ticker, ok, string(record), entry.Diagnostic)
	return err
}

func (s *ClickHouseAuditLog) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseAuditLog) Close() error {
	return nil // Connection pool managed by pkg/clickhouse.
}

// KafkaAuditLog implements AuditLog by publishing entries to a topic, keyed by
// ticker for per-symbol ordering.
type KafkaAuditLog struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAuditLog creates Kafka-backed audit publishing.
func NewKafkaAuditLog(producer *pkgkafka.Producer, topic string) repository.AuditLog {
	return &KafkaAuditLog{producer: producer, topic: topic}
}

func (p *KafkaAuditLog) Log(ctx context.Context, entry *models.AnalysisLogEntry) error {
	if entry == nil {
		return fmt.Errorf("entry is nil")
	}
	return p.producer.Publish(ctx, p.topic, []byte(entry.Ticker), entry)
}

func (p *KafkaAuditLog) Health(ctx context.Context) error {
	return nil
}

func (p *KafkaAuditLog) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
