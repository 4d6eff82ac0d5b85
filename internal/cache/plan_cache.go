package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fdcatalog/internal/config"
	"fdcatalog/internal/models"
)

// PlanCache is a read-through cache for plan snapshots (plan plus rules).
// A nil *PlanCache is valid and disables caching, so callers never branch
// on whether redis is configured.
type PlanCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func New(cfg config.RedisConfig, log *zap.Logger) *PlanCache {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PlanCache{client: client, ttl: ttl, log: log}
}

func planKey(id uint64) string {
	return fmt.Sprintf("fd:plan:%d", id)
}

// GetPlan returns the cached snapshot, or (nil, nil) on a miss.
func (c *PlanCache) GetPlan(ctx context.Context, id uint64) (*models.Plan, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, planKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var plan models.Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		// Stale or corrupt entry: drop it and treat as a miss.
		_ = c.client.Del(ctx, planKey(id)).Err()
		return nil, nil
	}
	return &plan, nil
}

func (c *PlanCache) SetPlan(ctx context.Context, plan *models.Plan) {
	if c == nil || c.client == nil || plan == nil {
		return
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, planKey(plan.ID), raw, c.ttl).Err(); err != nil && c.log != nil {
		c.log.Warn("plan cache set failed", zap.Uint64("plan_id", plan.ID), zap.Error(err))
	}
}

// Invalidate drops the snapshot after any write that touches the plan or
// its rules.
func (c *PlanCache) Invalidate(ctx context.Context, id uint64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, planKey(id)).Err(); err != nil && c.log != nil {
		c.log.Warn("plan cache invalidate failed", zap.Uint64("plan_id", id), zap.Error(err))
	}
}

func (c *PlanCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
