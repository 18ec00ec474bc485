// Package entitlement is the authoritative decision engine for what a caller
// of the marketplace may see and do. Handlers resolve an Entitlement fresh on
// every request and pass it to the redaction and quota helpers; nothing in
// this package reads plans or subscriptions directly, and nothing here is
// cached implicitly.
package entitlement

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type AccessLevel string

const (
	AccessOther        AccessLevel = "OTHER"
	AccessNotValidated AccessLevel = "NOT_VALIDATED"
	AccessBasic        AccessLevel = "BASIC"
	AccessPremium      AccessLevel = "PREMIUM"
)

type Role string

const (
	RoleWorker        Role = "WORKER"
	RoleEstablishment Role = "ESTABLISHMENT"
)

const basicPlanCode = "BASIC"

// PlanFeatures is the typed flag/limit bag of one resolved plan. Nil limits
// mean unlimited; zero-value means everything denied.
type PlanFeatures struct {
	// Worker side
	MaxActiveApplications *int
	CanViewUrgentMissions bool
	CanViewFullProfiles   bool
	HasAutoMatching       bool
	MissionViewDelayHours int

	// Establishment side
	MaxActiveMissions       *int
	CanPostUrgent           bool
	CanSearchWorkers        bool
	UrgentMissionFeePercent int
}

// Entitlement is the request-scoped result of resolution. It is the only
// structure the redaction engine and quota enforcer consume.
type Entitlement struct {
	AccessLevel AccessLevel
	PlanCode    string
	PlanFeatures
}

// SubscriptionInfo is the slice of a subscription record resolution needs.
type SubscriptionInfo struct {
	PlanCode  string
	Active    bool
	StartDate time.Time
	EndDate   time.Time
}

// Current reports whether the subscription grants anything right now.
func (s *SubscriptionInfo) Current(now time.Time) bool {
	return s != nil && s.Active && !now.Before(s.StartDate) && now.Before(s.EndDate)
}

// Caller is the resolved identity of the current request, supplied by the
// auth layer. AccessLevel is always derived from it, never from client input.
type Caller struct {
	UserID           uint
	Role             Role
	Validated        bool
	Subscription     *SubscriptionInfo
	LegacySubscriber bool
}

// PlanSource supplies plan feature bags by (role, code). Not found is
// (nil, nil); the resolver fails closed on it.
type PlanSource interface {
	Features(ctx context.Context, role Role, code string) (*PlanFeatures, error)
}

// Cache optionally memoizes resolved entitlements between requests. The key
// embeds user, plan code and subscription status, and every plan or
// subscription write must invalidate synchronously; a miss is always safe.
type Cache interface {
	Get(ctx context.Context, userID uint, planCode, subStatus string) (*Entitlement, bool)
	Set(ctx context.Context, userID uint, planCode, subStatus string, ent Entitlement)
}

type Resolver struct {
	plans PlanSource
	cache Cache
	now   func() time.Time
}

func NewResolver(plans PlanSource, cache Cache) *Resolver {
	return &Resolver{plans: plans, cache: cache, now: time.Now}
}

// Unlimited is the entitlement of internal callers (admins, back office):
// every flag on, every limit absent.
func Unlimited() Entitlement {
	return Entitlement{
		AccessLevel: AccessOther,
		PlanFeatures: PlanFeatures{
			CanViewUrgentMissions: true,
			CanViewFullProfiles:   true,
			HasAutoMatching:       true,
			CanPostUrgent:         true,
			CanSearchWorkers:      true,
		},
	}
}

// Restricted is the fail-closed entitlement: every flag false, every limit
// zero. Used for non-validated callers and for configuration anomalies.
func Restricted(level AccessLevel) Entitlement {
	zero := 0
	return Entitlement{
		AccessLevel: level,
		PlanFeatures: PlanFeatures{
			MaxActiveApplications: &zero,
			MaxActiveMissions:     &zero,
		},
	}
}

// Resolve computes the caller's effective entitlement for this request.
//
// Resolution order: non-marketplace roles short-circuit to OTHER; callers
// whose identity is not validated get the restricted entitlement regardless
// of any subscription on file; otherwise the active subscription's plan is
// merged in, falling back to the role's BASIC plan when there is none or it
// has lapsed. Unknown plan codes and a missing BASIC plan fail closed, never
// open.
func (r *Resolver) Resolve(ctx context.Context, caller Caller) Entitlement {
	if caller.Role != RoleWorker && caller.Role != RoleEstablishment {
		return Unlimited()
	}

	if !caller.Validated {
		return Restricted(AccessNotValidated)
	}

	now := r.now()
	planCode := basicPlanCode
	subStatus := "none"
	premium := caller.LegacySubscriber

	if caller.Subscription.Current(now) {
		planCode = caller.Subscription.PlanCode
		subStatus = "active"
		if planCode != basicPlanCode {
			premium = true
		}
	}

	level := AccessBasic
	if premium {
		level = AccessPremium
	}

	if r.cache != nil {
		if ent, ok := r.cache.Get(ctx, caller.UserID, planCode, subStatus); ok {
			return *ent
		}
	}

	// Config failures below always clamp to BASIC. A premium signal on the
	// caller must never survive a lookup error: the PREMIUM level would
	// short-circuit redaction to FULL.
	fellBack := false
	features, err := r.plans.Features(ctx, caller.Role, planCode)
	if err != nil {
		logrus.WithField("plan_code", planCode).Errorf("plan lookup failed, failing closed: %v", err)
		return Restricted(AccessBasic)
	}
	if features == nil && planCode != basicPlanCode {
		logrus.WithField("plan_code", planCode).Warn("subscription references unknown plan, resolving as BASIC")
		features, err = r.plans.Features(ctx, caller.Role, basicPlanCode)
		if err != nil {
			logrus.Errorf("basic plan lookup failed, failing closed: %v", err)
			return Restricted(AccessBasic)
		}
		level = AccessBasic
		planCode = basicPlanCode
		fellBack = true
	}
	if features == nil {
		logrus.WithField("role", caller.Role).Error("no BASIC plan configured for role, failing closed")
		return Restricted(AccessBasic)
	}

	ent := Entitlement{
		AccessLevel:  level,
		PlanCode:     planCode,
		PlanFeatures: *features,
	}

	// Fallback resolutions are never cached: the entry would be indexed
	// under the subscription's unknown code, so a later BASIC plan edit
	// could not invalidate it.
	if r.cache != nil && !fellBack {
		r.cache.Set(ctx, caller.UserID, planCode, subStatus, ent)
	}

	return ent
}
