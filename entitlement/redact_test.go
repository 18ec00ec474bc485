package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMission struct {
	urgent  bool
	created time.Time
}

func (m testMission) Urgent() bool        { return m.urgent }
func (m testMission) PostedAt() time.Time { return m.created }

func missionAged(now time.Time, hours int, urgent bool) MissionItem {
	return testMission{urgent: urgent, created: now.Add(-time.Duration(hours) * time.Hour)}
}

func basicEntitlement() Entitlement {
	return Entitlement{
		AccessLevel: AccessBasic,
		PlanCode:    "BASIC",
		PlanFeatures: PlanFeatures{
			MaxActiveApplications: intPtr(3),
			MissionViewDelayHours: 48,
		},
	}
}

func premiumEntitlement() Entitlement {
	return Entitlement{
		AccessLevel: AccessPremium,
		PlanCode:    "PREMIUM",
		PlanFeatures: PlanFeatures{
			CanViewUrgentMissions: true,
			CanViewFullProfiles:   true,
		},
	}
}

func TestRedactMissionsUrgentGate(t *testing.T) {
	now := time.Now()
	items := []MissionItem{missionAged(now, 72, true)}

	out := RedactMissions(items, basicEntitlement(), now)

	require.Len(t, out, 1)
	assert.Equal(t, VisibilityRedacted, out[0].Level)
	assert.Equal(t, ReasonUrgentPremiumOnly, out[0].Reason)
}

func TestRedactMissionsRecencyGate(t *testing.T) {
	now := time.Now()
	items := []MissionItem{missionAged(now, 10, false)}

	out := RedactMissions(items, basicEntitlement(), now)

	require.Len(t, out, 1)
	assert.Equal(t, VisibilityRedacted, out[0].Level)
	assert.Equal(t, ReasonRecentMissionPremiumOnly, out[0].Reason)
}

func TestRedactMissionsBasicLimit(t *testing.T) {
	now := time.Now()
	var items []MissionItem
	for i := 0; i < BasicVisibleMissions+2; i++ {
		items = append(items, missionAged(now, 72, false))
	}

	out := RedactMissions(items, basicEntitlement(), now)

	require.Len(t, out, len(items))
	for i := 0; i < BasicVisibleMissions; i++ {
		assert.Equal(t, VisibilityFull, out[i].Level, "item %d", i)
	}
	for i := BasicVisibleMissions; i < len(items); i++ {
		assert.Equal(t, VisibilityRedacted, out[i].Level, "item %d", i)
		assert.Equal(t, ReasonBasicLimitReached, out[i].Reason, "item %d", i)
	}
}

func TestRedactMissionsGateOrderUrgentBeforeRecency(t *testing.T) {
	now := time.Now()
	// Urgent and recent: the urgent gate wins, rules are first match.
	items := []MissionItem{missionAged(now, 10, true)}

	out := RedactMissions(items, basicEntitlement(), now)

	assert.Equal(t, ReasonUrgentPremiumOnly, out[0].Reason)
}

func TestRedactMissionsRedactedItemsDontConsumeLimit(t *testing.T) {
	now := time.Now()
	items := []MissionItem{
		missionAged(now, 72, true), // urgent, redacted
		missionAged(now, 72, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
	}

	out := RedactMissions(items, basicEntitlement(), now)

	assert.Equal(t, VisibilityRedacted, out[0].Level)
	for i := 1; i < 4; i++ {
		assert.Equal(t, VisibilityFull, out[i].Level, "item %d", i)
	}
}

func TestRedactMissionsHiddenForNotValidated(t *testing.T) {
	now := time.Now()
	items := []MissionItem{
		missionAged(now, 72, false),
		missionAged(now, 10, true),
	}

	out := RedactMissions(items, Restricted(AccessNotValidated), now)

	require.Len(t, out, len(items))
	for _, v := range out {
		assert.Equal(t, VisibilityHidden, v.Level)
	}
}

func TestRedactMissionsPremiumAndOtherSeeEverything(t *testing.T) {
	now := time.Now()
	items := []MissionItem{
		missionAged(now, 72, true),
		missionAged(now, 1, false),
		missionAged(now, 200, false),
		missionAged(now, 200, false),
		missionAged(now, 200, false),
		missionAged(now, 200, false),
	}

	for _, ent := range []Entitlement{premiumEntitlement(), Unlimited()} {
		out := RedactMissions(items, ent, now)
		for i, v := range out {
			assert.Equal(t, VisibilityFull, v.Level, "item %d for %s", i, ent.AccessLevel)
		}
	}
}

func TestRedactMissionsIdempotent(t *testing.T) {
	now := time.Now()
	items := []MissionItem{
		missionAged(now, 72, true),
		missionAged(now, 10, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
	}
	ent := basicEntitlement()

	first := RedactMissions(items, ent, now)
	second := RedactMissions(items, ent, now)

	assert.Equal(t, first, second)
}

func TestRedactMissionsCountStability(t *testing.T) {
	now := time.Now()
	items := []MissionItem{
		missionAged(now, 72, true),
		missionAged(now, 10, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
	}

	basic := RedactMissions(items, basicEntitlement(), now)
	premium := RedactMissions(items, premiumEntitlement(), now)

	// Same collection size for every caller; only the tags differ.
	assert.Equal(t, len(premium), len(basic))
}

func TestRedactMissionsMonotonicity(t *testing.T) {
	now := time.Now()
	items := []MissionItem{
		missionAged(now, 72, true),
		missionAged(now, 10, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
		missionAged(now, 72, false),
	}

	// Upgrading the access level must never make any single item less
	// visible than before.
	basicOut := RedactMissions(items, basicEntitlement(), now)
	premiumOut := RedactMissions(items, premiumEntitlement(), now)

	for i := range items {
		assert.False(t, premiumOut[i].MoreRestrictiveThan(basicOut[i]),
			"item %d regressed from %s to %s", i, basicOut[i].Level, premiumOut[i].Level)
	}
}

func TestRedactWorkersLockedWithoutFullProfiles(t *testing.T) {
	out := RedactWorkers(3, basicEntitlement())

	require.Len(t, out, 3)
	for _, v := range out {
		assert.Equal(t, VisibilityRedacted, v.Level)
		assert.Equal(t, ReasonProfilePremiumOnly, v.Reason)
	}
}

func TestRedactWorkersFullWithFlag(t *testing.T) {
	ent := basicEntitlement()
	ent.CanViewFullProfiles = true

	out := RedactWorkers(2, ent)

	for _, v := range out {
		assert.Equal(t, VisibilityFull, v.Level)
	}
}

func TestRedactWorkersHiddenForNotValidated(t *testing.T) {
	out := RedactWorkers(2, Restricted(AccessNotValidated))

	for _, v := range out {
		assert.Equal(t, VisibilityHidden, v.Level)
	}
}
