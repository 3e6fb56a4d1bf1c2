package service

import (
	"context"
	"encoding/json"
	"time"

	"screen_balance_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const dashboardKeyPrefix = "dashboard:"

// DashboardCache keeps rendered dashboards in Redis. A nil client turns every call into a no-op,
// so the engine runs unchanged without Redis.
type DashboardCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewDashboardCache(rdb *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{Redis: rdb, TTL: ttl}
}

func dashboardKey(userID, weekStart string) string {
	return dashboardKeyPrefix + userID + ":" + weekStart
}

func (c *DashboardCache) enabled() bool {
	return c != nil && c.Redis != nil && c.TTL > 0
}

// Get loads a cached dashboard into dst; ok is false on miss or any Redis failure.
func (c *DashboardCache) Get(ctx context.Context, userID, weekStart string, dst interface{}) bool {
	if !c.enabled() {
		return false
	}
	b, err := c.Redis.Get(ctx, dashboardKey(userID, weekStart)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("dashboard cache get failed", zap.String("userID", userID), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false
	}
	return true
}

func (c *DashboardCache) Set(ctx context.Context, userID, weekStart string, v interface{}) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, dashboardKey(userID, weekStart), b, c.TTL).Err(); err != nil {
		logger.Log.Warn("dashboard cache set failed", zap.String("userID", userID), zap.Error(err))
	}
}

// Invalidate drops every cached week of the user.
func (c *DashboardCache) Invalidate(ctx context.Context, userID string) {
	if !c.enabled() {
		return
	}
	pattern := dashboardKeyPrefix + userID + ":*"
	var cursor uint64
	for {
		keys, next, err := c.Redis.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			logger.Log.Warn("dashboard cache invalidate failed", zap.String("userID", userID), zap.Error(err))
			return
		}
		if len(keys) > 0 {
			if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
				logger.Log.Warn("dashboard cache delete failed", zap.String("userID", userID), zap.Error(err))
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
