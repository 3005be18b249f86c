package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/config"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
	"github.com/BinLe1988/youcreator.ai-sub001/internal/ports"
)

const executionTTL = 24 * time.Hour

// RedisExecutionCache keeps execution snapshots in Redis so status polls do
// not hit the database while a run is live.
type RedisExecutionCache struct {
	client *redis.Client
}

var _ ports.ExecutionCache = (*RedisExecutionCache)(nil)

func NewRedisExecutionCache(ctx context.Context, cfg config.RedisConfig) (*RedisExecutionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisExecutionCache{client: client}, nil
}

func (c *RedisExecutionCache) SetExecution(ctx context.Context, execution *domain.Execution) error {
	payload, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("marshal execution: %w", err)
	}
	return c.client.Set(ctx, executionKey(execution.ID), payload, executionTTL).Err()
}

func (c *RedisExecutionCache) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	payload, err := c.client.Get(ctx, executionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrExecutionNotFound
	}
	if err != nil {
		return nil, err
	}

	var execution domain.Execution
	if err := json.Unmarshal(payload, &execution); err != nil {
		return nil, fmt.Errorf("unmarshal execution %s: %w", id, err)
	}
	return &execution, nil
}

func (c *RedisExecutionCache) Close() error {
	return c.client.Close()
}

func executionKey(id string) string {
	return "execution:" + id
}
