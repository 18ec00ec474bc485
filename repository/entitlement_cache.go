package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/missionly/missionly-core/entitlement"
	"github.com/missionly/missionly-core/model"
)

// EntitlementCache memoizes resolved entitlements in redis, keyed by
// (user_id, plan_code, subscription_status). Correctness does not rest on
// the TTL: plan and subscription writes invalidate synchronously through the
// index sets below, so the very next resolve after a policy edit sees the
// new values. The TTL is only there to bound orphaned keys.
type EntitlementCache struct {
	client *redis.Client
	ttl    time.Duration
}

const entitlementCacheTTL = time.Hour

func NewEntitlementCache(client *redis.Client) *EntitlementCache {
	return &EntitlementCache{client: client, ttl: entitlementCacheTTL}
}

func entryKey(userID uint, planCode, subStatus string) string {
	return fmt.Sprintf("ent:user:%d:%s:%s", userID, planCode, subStatus)
}

func userIndexKey(userID uint) string {
	return fmt.Sprintf("ent:idx:user:%d", userID)
}

func planIndexKey(code string) string {
	return fmt.Sprintf("ent:idx:plan:%s", code)
}

func (c *EntitlementCache) Get(ctx context.Context, userID uint, planCode, subStatus string) (*entitlement.Entitlement, bool) {
	raw, err := c.client.Get(ctx, entryKey(userID, planCode, subStatus)).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.Warnf("entitlement cache read failed: %v", err)
		}
		return nil, false
	}

	var ent entitlement.Entitlement
	if err := json.Unmarshal([]byte(raw), &ent); err != nil {
		logrus.Warnf("entitlement cache entry corrupt, dropping: %v", err)
		return nil, false
	}
	return &ent, true
}

func (c *EntitlementCache) Set(ctx context.Context, userID uint, planCode, subStatus string, ent entitlement.Entitlement) {
	raw, err := json.Marshal(ent)
	if err != nil {
		logrus.Warnf("entitlement cache encode failed: %v", err)
		return
	}

	key := entryKey(userID, planCode, subStatus)
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, raw, c.ttl)
	pipe.SAdd(ctx, userIndexKey(userID), key)
	pipe.Expire(ctx, userIndexKey(userID), c.ttl)
	pipe.SAdd(ctx, planIndexKey(planCode), key)
	pipe.Expire(ctx, planIndexKey(planCode), c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logrus.Warnf("entitlement cache write failed: %v", err)
	}
}

// InvalidateUser drops every cached entitlement for one user; called on
// subscription transitions (payment success, expiry, cancellation).
func (c *EntitlementCache) InvalidateUser(ctx context.Context, userID uint) {
	c.invalidateIndex(ctx, userIndexKey(userID))
}

// InvalidatePlan drops every cached entitlement resolved from one plan code;
// called after admin plan edits. Over-broad across roles sharing the code,
// which is safe: a spurious miss just resolves fresh.
func (c *EntitlementCache) InvalidatePlan(ctx context.Context, code model.PlanCode) {
	c.invalidateIndex(ctx, planIndexKey(string(code)))
}

func (c *EntitlementCache) invalidateIndex(ctx context.Context, indexKey string) {
	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil && err != redis.Nil {
		logrus.Warnf("entitlement cache invalidation read failed: %v", err)
		return
	}

	keys = append(keys, indexKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logrus.Warnf("entitlement cache invalidation failed: %v", err)
	}
}
