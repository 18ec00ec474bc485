package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionly/missionly-core/entitlement"
	"github.com/missionly/missionly-core/model"
)

func setupCache(t *testing.T) *EntitlementCache {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewEntitlementCache(client)
}

func intPtr(v int) *int { return &v }

func premiumEntitlement() entitlement.Entitlement {
	return entitlement.Entitlement{
		AccessLevel: entitlement.AccessPremium,
		PlanCode:    "PREMIUM",
		PlanFeatures: entitlement.PlanFeatures{
			CanViewUrgentMissions: true,
			MaxActiveApplications: intPtr(10),
		},
	}
}

func TestEntitlementCacheRoundTrip(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx, 1, "PREMIUM", "active")
	assert.False(t, ok)

	cache.Set(ctx, 1, "PREMIUM", "active", premiumEntitlement())

	got, ok := cache.Get(ctx, 1, "PREMIUM", "active")
	require.True(t, ok)
	assert.Equal(t, entitlement.AccessPremium, got.AccessLevel)
	assert.True(t, got.CanViewUrgentMissions)
	require.NotNil(t, got.MaxActiveApplications)
	assert.Equal(t, 10, *got.MaxActiveApplications)
}

func TestEntitlementCacheKeySeparation(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	cache.Set(ctx, 1, "PREMIUM", "active", premiumEntitlement())

	// Same user, different subscription status: different key, must miss.
	_, ok := cache.Get(ctx, 1, "PREMIUM", "none")
	assert.False(t, ok)

	_, ok = cache.Get(ctx, 2, "PREMIUM", "active")
	assert.False(t, ok)
}

func TestInvalidateUserDropsAllUserEntries(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	cache.Set(ctx, 1, "PREMIUM", "active", premiumEntitlement())
	cache.Set(ctx, 1, "BASIC", "none", entitlement.Restricted(entitlement.AccessBasic))
	cache.Set(ctx, 2, "PREMIUM", "active", premiumEntitlement())

	cache.InvalidateUser(ctx, 1)

	_, ok := cache.Get(ctx, 1, "PREMIUM", "active")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 1, "BASIC", "none")
	assert.False(t, ok)

	// Other users untouched.
	_, ok = cache.Get(ctx, 2, "PREMIUM", "active")
	assert.True(t, ok)
}

func TestInvalidatePlanDropsEveryAffectedUser(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	cache.Set(ctx, 1, "PREMIUM", "active", premiumEntitlement())
	cache.Set(ctx, 2, "PREMIUM", "active", premiumEntitlement())
	cache.Set(ctx, 3, "BASIC", "none", entitlement.Restricted(entitlement.AccessBasic))

	cache.InvalidatePlan(ctx, model.PlanPremium)

	_, ok := cache.Get(ctx, 1, "PREMIUM", "active")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 2, "PREMIUM", "active")
	assert.False(t, ok)

	_, ok = cache.Get(ctx, 3, "BASIC", "none")
	assert.True(t, ok)
}

type staticPlanSource struct {
	features entitlement.PlanFeatures
}

func (s *staticPlanSource) Features(_ context.Context, _ entitlement.Role, _ string) (*entitlement.PlanFeatures, error) {
	f := s.features
	return &f, nil
}

type registryPlanSource struct {
	plans map[string]entitlement.PlanFeatures
}

func (s *registryPlanSource) Features(_ context.Context, _ entitlement.Role, code string) (*entitlement.PlanFeatures, error) {
	f, ok := s.plans[code]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// A resolution that fell back to BASIC because the subscription carries an
// unknown code must not be served stale after a BASIC plan edit; such
// resolutions bypass the cache entirely.
func TestUnknownPlanFallbackSeesBasicEdits(t *testing.T) {
	cache := setupCache(t)
	source := &registryPlanSource{plans: map[string]entitlement.PlanFeatures{
		"BASIC": {MissionViewDelayHours: 48},
	}}
	resolver := entitlement.NewResolver(source, cache)

	caller := entitlement.Caller{
		UserID:    1,
		Role:      entitlement.RoleWorker,
		Validated: true,
		Subscription: &entitlement.SubscriptionInfo{
			PlanCode:  "GOLD",
			Active:    true,
			StartDate: time.Now().Add(-time.Hour),
			EndDate:   time.Now().Add(time.Hour),
		},
	}

	first := resolver.Resolve(context.Background(), caller)
	assert.Equal(t, 48, first.MissionViewDelayHours)

	source.plans["BASIC"] = entitlement.PlanFeatures{MissionViewDelayHours: 0}
	cache.InvalidatePlan(context.Background(), model.PlanBasic)

	second := resolver.Resolve(context.Background(), caller)
	assert.Equal(t, 0, second.MissionViewDelayHours)
}

// A plan edit must be visible to the very next resolution, not after a TTL:
// the write path invalidates synchronously and the resolver re-reads the
// registry.
func TestPlanEditPropagatesToNextResolve(t *testing.T) {
	cache := setupCache(t)
	source := &staticPlanSource{features: entitlement.PlanFeatures{CanViewUrgentMissions: true}}
	resolver := entitlement.NewResolver(source, cache)

	caller := entitlement.Caller{
		UserID:    1,
		Role:      entitlement.RoleWorker,
		Validated: true,
		Subscription: &entitlement.SubscriptionInfo{
			PlanCode:  "PREMIUM",
			Active:    true,
			StartDate: time.Now().Add(-time.Hour),
			EndDate:   time.Now().Add(time.Hour),
		},
	}

	first := resolver.Resolve(context.Background(), caller)
	assert.True(t, first.CanViewUrgentMissions)

	// Admin flips the flag and the registry invalidates before returning.
	source.features.CanViewUrgentMissions = false
	cache.InvalidatePlan(context.Background(), model.PlanPremium)

	second := resolver.Resolve(context.Background(), caller)
	assert.False(t, second.CanViewUrgentMissions)
}
