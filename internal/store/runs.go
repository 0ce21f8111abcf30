package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	runTTL     = 30 * 24 * time.Hour // 30 days
	runHistory = 100
)

// DispatchRun is the persisted record of one dispatcher invocation.
type DispatchRun struct {
	ID        int       `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Skipped   string    `json:"skipped,omitempty"`
	Attempted int       `json:"attempted"`
	Sent      int       `json:"sent"`
}

// RunStore keeps the recent dispatch-run history (Redis)
type RunStore interface {
	RecordRun(ctx context.Context, run DispatchRun) (DispatchRun, error)
	GetRuns(ctx context.Context, limit int) ([]DispatchRun, error)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(opts *redis.Options) *RedisStore {
	rdb := redis.NewClient(opts)
	return &RedisStore{client: rdb}
}

func (s *RedisStore) RecordRun(ctx context.Context, run DispatchRun) (DispatchRun, error) {
	// Generate ID
	id, err := s.client.Incr(ctx, "run:next_id").Result()
	if err != nil {
		return DispatchRun{}, err
	}
	run.ID = int(id)

	data, err := json.Marshal(run)
	if err != nil {
		return DispatchRun{}, err
	}

	key := fmt.Sprintf("run:%d", run.ID)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, runTTL)
	pipe.LPush(ctx, "runs", key)
	pipe.LTrim(ctx, "runs", 0, runHistory-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return DispatchRun{}, err
	}

	return run, nil
}

func (s *RedisStore) GetRuns(ctx context.Context, limit int) ([]DispatchRun, error) {
	if limit <= 0 || limit > runHistory {
		limit = runHistory
	}

	keys, err := s.client.LRange(ctx, "runs", 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	var runs []DispatchRun
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue // expired
		}
		if err != nil {
			return nil, err
		}

		var run DispatchRun
		if err := json.Unmarshal([]byte(data), &run); err != nil {
			continue
		}
		runs = append(runs, run)
	}

	return runs, nil
}
