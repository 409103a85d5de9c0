package di

import (
	"context"
	"fmt"
	"time"

	"FishMoney/internal/domain/repository"
	"FishMoney/internal/handler/api"
	internalrepo "FishMoney/internal/repository"
	"FishMoney/internal/service/broadcast"
	"FishMoney/internal/service/n8n"
	"FishMoney/internal/usecase"
	pkgch "FishMoney/pkg/clickhouse"
	"FishMoney/pkg/config"
	pkgkafka "FishMoney/pkg/kafka"
	applogger "FishMoney/pkg/logger"
	"FishMoney/pkg/metrics"
	"FishMoney/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideAuditLog creates the audit trail sink selected by backend.type.
func ProvideAuditLog(cfg *config.Config) (repository.AuditLog, error) {
	switch cfg.Backend.Type {
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := client.InitSchema(ctx, []string{
			"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
			"CREATE TABLE IF NOT EXISTS " + cfg.ClickHouse.Database + ".analysis_log (ts DateTime, ticker String, ok UInt8, record String, diagnostic String) ENGINE=MergeTree ORDER BY (ticker, ts)",
		}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}

		return internalrepo.NewClickHouseAuditLog(client.DB(), cfg.ClickHouse.Database+".analysis_log"), nil

	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Kafka.BatchSize),
			pkgkafka.WithBatchBytes(cfg.Kafka.BatchBytes),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
			pkgkafka.WithAsync(cfg.Kafka.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaAuditLog(producer, cfg.Kafka.Topic), nil

	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Backend.Type)
	}
}

// ProvideRecentTracker creates the Redis-backed recent list, or nil when
// Redis is disabled.
func ProvideRecentTracker(cfg *config.Config) repository.RecentTracker {
	if !cfg.Redis.Enabled {
		return nil
	}
	return internalrepo.NewRedisRecentTracker(internalrepo.RedisRecentConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Key:      cfg.Redis.Key,
		Cap:      cfg.Redis.Cap,
	})
}

// ProvideBroadcastHub creates the WebSocket fan-out hub.
func ProvideBroadcastHub(l *applogger.Logger) *broadcast.Hub {
	return broadcast.NewHub(l)
}

// ProvideAnalysisSource creates the n8n webhook client.
func ProvideAnalysisSource(cfg *config.Config, l *applogger.Logger, m repository.Metrics) repository.AnalysisSource {
	return n8n.New(cfg.Webhook.URL, cfg.Webhook.Timeout, l, m)
}

// ProvideAnalyzer creates the analysis use case.
func ProvideAnalyzer(
	source repository.AnalysisSource,
	audit repository.AuditLog,
	recent repository.RecentTracker,
	hub *broadcast.Hub,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(source, audit, recent, hub, m, l, cfg.Webhook.AuditTimeout)
}

// ProvideAnalysisHandler creates the Echo HTTP handler.
func ProvideAnalysisHandler(
	l *applogger.Logger,
	analyzer *usecase.Analyzer,
	recent repository.RecentTracker,
	hub *broadcast.Hub,
	cfg *config.Config,
) *api.AnalysisEchoHandler {
	return api.NewAnalysisEchoHandler(l, analyzer, recent, hub, cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	handler *api.AnalysisEchoHandler,
	audit repository.AuditLog,
	recent repository.RecentTracker,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, handler, audit, recent, l)
}
