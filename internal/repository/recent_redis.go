package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FishMoney/internal/domain/models"
	"FishMoney/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const defaultRecentCap = 50

// RedisRecentTracker keeps the rolling recent-analyses list in a Redis list.
// It is never consulted before calling the webhook; it only feeds the
// recent-analyses endpoint and carries no caching semantics.
type RedisRecentTracker struct {
	cli *redis.Client
	key string
	cap int64
}

type RedisRecentConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Cap      int64
}

// NewRedisRecentTracker creates the tracker.
func NewRedisRecentTracker(cfg RedisRecentConfig) repository.RecentTracker {
	if cfg.Key == "" {
		cfg.Key = "fishmoney:recent"
	}
	if cfg.Cap <= 0 {
		cfg.Cap = defaultRecentCap
	}
	cli := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisRecentTracker{cli: cli, key: cfg.Key, cap: cfg.Cap}
}

func (t *RedisRecentTracker) Push(ctx context.Context, record *models.AnalysisRecord) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	b, err := json.Marshal(&models.RecentAnalysis{Record: record, At: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal recent entry: %w", err)
	}
	pipe := t.cli.Pipeline()
	pipe.LPush(ctx, t.key, b)
	pipe.LTrim(ctx, t.key, 0, t.cap-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (t *RedisRecentTracker) Recent(ctx context.Context, limit int) ([]*models.RecentAnalysis, error) {
	if limit <= 0 || int64(limit) > t.cap {
		limit = int(t.cap)
	}
	raws, err := t.cli.LRange(ctx, t.key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*models.RecentAnalysis, 0, len(raws))
	for _, raw := range raws {
		var entry models.RecentAnalysis
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue // skip rows written by older versions
		}
		out = append(out, &entry)
	}
	return out, nil
}

func (t *RedisRecentTracker) Close() error {
	return t.cli.Close()
}
