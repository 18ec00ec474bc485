package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanSource struct {
	plans map[string]*PlanFeatures
	err   error
}

func (f *fakePlanSource) Features(_ context.Context, role Role, code string) (*PlanFeatures, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plans[string(role)+"/"+code], nil
}

func intPtr(v int) *int { return &v }

func basicWorkerFeatures() *PlanFeatures {
	return &PlanFeatures{
		MaxActiveApplications: intPtr(3),
		MissionViewDelayHours: 48,
	}
}

func premiumWorkerFeatures() *PlanFeatures {
	return &PlanFeatures{
		CanViewUrgentMissions: true,
		CanViewFullProfiles:   true,
		HasAutoMatching:       true,
	}
}

func newTestResolver(plans map[string]*PlanFeatures) *Resolver {
	return NewResolver(&fakePlanSource{plans: plans}, nil)
}

func activeSub(code string) *SubscriptionInfo {
	return &SubscriptionInfo{
		PlanCode:  code,
		Active:    true,
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
	}
}

func TestResolveNotValidatedFailsClosed(t *testing.T) {
	r := newTestResolver(map[string]*PlanFeatures{
		"WORKER/BASIC":   basicWorkerFeatures(),
		"WORKER/PREMIUM": premiumWorkerFeatures(),
	})

	// Even with a premium subscription on file, an unvalidated caller gets
	// nothing.
	ent := r.Resolve(context.Background(), Caller{
		UserID:       1,
		Role:         RoleWorker,
		Validated:    false,
		Subscription: activeSub("PREMIUM"),
	})

	assert.Equal(t, AccessNotValidated, ent.AccessLevel)
	assert.False(t, ent.CanViewUrgentMissions)
	assert.False(t, ent.CanViewFullProfiles)
	assert.False(t, ent.CanPostUrgent)
	assert.False(t, ent.CanSearchWorkers)
	require.NotNil(t, ent.MaxActiveApplications)
	assert.Equal(t, 0, *ent.MaxActiveApplications)
	require.NotNil(t, ent.MaxActiveMissions)
	assert.Equal(t, 0, *ent.MaxActiveMissions)
}

func TestResolveOtherRoleIsUnlimited(t *testing.T) {
	r := newTestResolver(nil)

	ent := r.Resolve(context.Background(), Caller{UserID: 1, Role: "ADMIN", Validated: true})

	assert.Equal(t, AccessOther, ent.AccessLevel)
	assert.True(t, ent.CanViewUrgentMissions)
	assert.True(t, ent.CanSearchWorkers)
	assert.Nil(t, ent.MaxActiveApplications)
	assert.Nil(t, ent.MaxActiveMissions)
}

func TestResolveNoSubscriptionFallsBackToBasic(t *testing.T) {
	r := newTestResolver(map[string]*PlanFeatures{
		"WORKER/BASIC": basicWorkerFeatures(),
	})

	ent := r.Resolve(context.Background(), Caller{UserID: 1, Role: RoleWorker, Validated: true})

	assert.Equal(t, AccessBasic, ent.AccessLevel)
	assert.Equal(t, "BASIC", ent.PlanCode)
	assert.Equal(t, 48, ent.MissionViewDelayHours)
}

func TestResolveExpiredSubscriptionRevertsToBasic(t *testing.T) {
	r := newTestResolver(map[string]*PlanFeatures{
		"WORKER/BASIC":   basicWorkerFeatures(),
		"WORKER/PREMIUM": premiumWorkerFeatures(),
	})

	ent := r.Resolve(context.Background(), Caller{
		UserID:    1,
		Role:      RoleWorker,
		Validated: true,
		Subscription: &SubscriptionInfo{
			PlanCode:  "PREMIUM",
			Active:    true,
			StartDate: time.Now().Add(-60 * 24 * time.Hour),
			EndDate:   time.Now().Add(-24 * time.Hour),
		},
	})

	assert.Equal(t, AccessBasic, ent.AccessLevel)
	assert.Equal(t, "BASIC", ent.PlanCode)
}

func TestResolveActivePremiumSubscription(t *testing.T) {
	r := newTestResolver(map[string]*PlanFeatures{
		"WORKER/BASIC":   basicWorkerFeatures(),
		"WORKER/PREMIUM": premiumWorkerFeatures(),
	})

	ent := r.Resolve(context.Background(), Caller{
		UserID:       1,
		Role:         RoleWorker,
		Validated:    true,
		Subscription: activeSub("PREMIUM"),
	})

	assert.Equal(t, AccessPremium, ent.AccessLevel)
	assert.True(t, ent.CanViewUrgentMissions)
	assert.Nil(t, ent.MaxActiveApplications)
}

func TestResolveLegacySubscriberOverride(t *testing.T) {
	r := newTestResolver(map[string]*PlanFeatures{
		"WORKER/BASIC": basicWorkerFeatures(),
	})

	// No subscription row, only the migrated legacy flag: access level is
	// premium while flags and limits come from the resolved plan.
	ent := r.Resolve(context.Background(), Caller{
		UserID:           1,
		Role:             RoleWorker,
		Validated:        true,
		LegacySubscriber: true,
	})

	assert.Equal(t, AccessPremium, ent.AccessLevel)
	assert.Equal(t, "BASIC", ent.PlanCode)
}

func TestResolveUnknownPlanFailsClosedToBasic(t *testing.T) {
	r := newTestResolver(map[string]*PlanFeatures{
		"WORKER/BASIC": basicWorkerFeatures(),
	})

	ent := r.Resolve(context.Background(), Caller{
		UserID:       1,
		Role:         RoleWorker,
		Validated:    true,
		Subscription: activeSub("GOLD"),
	})

	assert.Equal(t, AccessBasic, ent.AccessLevel)
	assert.Equal(t, "BASIC", ent.PlanCode)
	assert.False(t, ent.CanViewUrgentMissions)
	require.NotNil(t, ent.MaxActiveApplications)
	assert.Equal(t, 3, *ent.MaxActiveApplications)
}

func TestResolveLookupErrorNeverGrantsPremium(t *testing.T) {
	now := time.Now()
	urgent := []MissionItem{missionAged(now, 1, true)}

	callers := []Caller{
		{UserID: 1, Role: RoleWorker, Validated: true, LegacySubscriber: true},
		{UserID: 2, Role: RoleWorker, Validated: true, Subscription: activeSub("PREMIUM")},
	}

	// A broken plan registry must clamp a premium caller down to BASIC;
	// failing open would turn a config error into full visibility.
	r := NewResolver(&fakePlanSource{err: assert.AnError}, nil)
	for _, caller := range callers {
		ent := r.Resolve(context.Background(), caller)

		assert.Equal(t, AccessBasic, ent.AccessLevel)
		out := RedactMissions(urgent, ent, now)
		assert.Equal(t, VisibilityRedacted, out[0].Level)
	}
}

func TestResolveMissingBasicWithPremiumSignalFailsClosed(t *testing.T) {
	r := newTestResolver(map[string]*PlanFeatures{})

	ent := r.Resolve(context.Background(), Caller{
		UserID:           1,
		Role:             RoleWorker,
		Validated:        true,
		LegacySubscriber: true,
	})

	assert.Equal(t, AccessBasic, ent.AccessLevel)
	require.NotNil(t, ent.MaxActiveApplications)
	assert.Equal(t, 0, *ent.MaxActiveApplications)
}

func TestResolveMissingBasicPlanFailsClosed(t *testing.T) {
	r := newTestResolver(map[string]*PlanFeatures{})

	ent := r.Resolve(context.Background(), Caller{UserID: 1, Role: RoleEstablishment, Validated: true})

	assert.Equal(t, AccessBasic, ent.AccessLevel)
	assert.False(t, ent.CanPostUrgent)
	assert.False(t, ent.CanSearchWorkers)
	require.NotNil(t, ent.MaxActiveMissions)
	assert.Equal(t, 0, *ent.MaxActiveMissions)
}

type fakeCache struct {
	entries map[string]Entitlement
	sets    int
}

func cacheKey(userID uint, planCode, subStatus string) string {
	return string(rune(userID)) + planCode + subStatus
}

func (f *fakeCache) Get(_ context.Context, userID uint, planCode, subStatus string) (*Entitlement, bool) {
	ent, ok := f.entries[cacheKey(userID, planCode, subStatus)]
	if !ok {
		return nil, false
	}
	return &ent, true
}

func (f *fakeCache) Set(_ context.Context, userID uint, planCode, subStatus string, ent Entitlement) {
	f.entries[cacheKey(userID, planCode, subStatus)] = ent
	f.sets++
}

func TestResolveUsesCache(t *testing.T) {
	source := &fakePlanSource{plans: map[string]*PlanFeatures{
		"WORKER/BASIC": basicWorkerFeatures(),
	}}
	cache := &fakeCache{entries: map[string]Entitlement{}}
	r := NewResolver(source, cache)

	caller := Caller{UserID: 7, Role: RoleWorker, Validated: true}

	first := r.Resolve(context.Background(), caller)
	assert.Equal(t, 1, cache.sets)

	// Second resolution hits the cache even if the source breaks.
	source.err = assert.AnError
	second := r.Resolve(context.Background(), caller)
	assert.Equal(t, first, second)
}

func TestResolveNeverCachesRestricted(t *testing.T) {
	cache := &fakeCache{entries: map[string]Entitlement{}}
	r := NewResolver(&fakePlanSource{}, cache)

	r.Resolve(context.Background(), Caller{UserID: 7, Role: RoleWorker, Validated: false})

	assert.Equal(t, 0, cache.sets)
}
