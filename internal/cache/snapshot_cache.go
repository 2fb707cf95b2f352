package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prymal/inventory-metrics/internal/config"
	"github.com/prymal/inventory-metrics/internal/domain"
)

const (
	runRateSnapshotKey     = "snapshot:run_rate:latest"
	rawMaterialSnapshotKey = "snapshot:raw_material_status:latest"
)

// SnapshotCache caches the latest computed partitions for the read API.
type SnapshotCache interface {
	GetRunRate(ctx context.Context) ([]domain.RunRateMetric, bool, error)
	SetRunRate(ctx context.Context, rows []domain.RunRateMetric) error
	GetRawMaterials(ctx context.Context) ([]domain.RawMaterialStatus, bool, error)
	SetRawMaterials(ctx context.Context, rows []domain.RawMaterialStatus) error
	Invalidate(ctx context.Context) error
}

type redisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSnapshotCache struct{}

func NewSnapshotCache(cfg config.CacheConfig) (SnapshotCache, error) {
	if !cfg.Enabled {
		return &noopSnapshotCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSnapshotCache{client: client, ttl: ttl}, nil
}

func NewNoopSnapshotCache() SnapshotCache {
	return &noopSnapshotCache{}
}

func (c *redisSnapshotCache) GetRunRate(ctx context.Context) ([]domain.RunRateMetric, bool, error) {
	var rows []domain.RunRateMetric
	ok, err := c.get(ctx, runRateSnapshotKey, &rows)
	return rows, ok, err
}

func (c *redisSnapshotCache) SetRunRate(ctx context.Context, rows []domain.RunRateMetric) error {
	return c.set(ctx, runRateSnapshotKey, rows)
}

func (c *redisSnapshotCache) GetRawMaterials(ctx context.Context) ([]domain.RawMaterialStatus, bool, error) {
	var rows []domain.RawMaterialStatus
	ok, err := c.get(ctx, rawMaterialSnapshotKey, &rows)
	return rows, ok, err
}

func (c *redisSnapshotCache) SetRawMaterials(ctx context.Context, rows []domain.RawMaterialStatus) error {
	return c.set(ctx, rawMaterialSnapshotKey, rows)
}

func (c *redisSnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, runRateSnapshotKey, rawMaterialSnapshotKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisSnapshotCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode snapshot cache %s: %w", key, err)
	}
	return true, nil
}

func (c *redisSnapshotCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode snapshot cache %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (noopSnapshotCache) GetRunRate(ctx context.Context) ([]domain.RunRateMetric, bool, error) {
	return nil, false, nil
}

func (noopSnapshotCache) SetRunRate(ctx context.Context, rows []domain.RunRateMetric) error {
	return nil
}

func (noopSnapshotCache) GetRawMaterials(ctx context.Context) ([]domain.RawMaterialStatus, bool, error) {
	return nil, false, nil
}

func (noopSnapshotCache) SetRawMaterials(ctx context.Context, rows []domain.RawMaterialStatus) error {
	return nil
}

func (noopSnapshotCache) Invalidate(ctx context.Context) error {
	return nil
}
