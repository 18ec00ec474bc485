package handler

import (
	"context"
	"strconv"

	"github.com/missionly/missionly-core/entitlement"
	"github.com/missionly/missionly-core/model"
	"github.com/missionly/missionly-core/repository"
)

// callerResolver assembles the entitlement.Caller for the current request
// from the user and subscription records, then resolves it. Handlers call
// this once per request; nothing entitlement-related is trusted from the
// token or from anything the client previously received.
type callerResolver struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
	resolver *entitlement.Resolver
}

func newCallerResolver(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository, resolver *entitlement.Resolver) *callerResolver {
	return &callerResolver{userRepo: userRepo, subRepo: subRepo, resolver: resolver}
}

func (r *callerResolver) resolve(ctx context.Context, claims jwtClaims) (entitlement.Entitlement, *model.User, error) {
	user, err := r.userRepo.FindByID(ctx, claims.ID)
	if err != nil {
		return entitlement.Entitlement{}, nil, err
	}
	if user == nil {
		// Deleted account with a live token; treat as not validated.
		return entitlement.Restricted(entitlement.AccessNotValidated), nil, nil
	}

	caller := entitlement.Caller{
		UserID:           user.ID,
		Role:             entitlement.Role(user.Role),
		Validated:        user.ValidationStatus == model.ValidationValidated,
		LegacySubscriber: user.LegacySubscriber,
	}

	if user.Role == model.RoleWorker || user.Role == model.RoleEstablishment {
		sub, err := r.subRepo.FindActiveByUserID(ctx, user.ID)
		if err != nil {
			return entitlement.Entitlement{}, nil, err
		}
		if sub != nil {
			caller.Subscription = &entitlement.SubscriptionInfo{
				PlanCode:  string(sub.PlanCode),
				Active:    sub.Status == model.SubscriptionActive,
				StartDate: sub.StartDate,
				EndDate:   sub.EndDate,
			}
		}
	}

	return r.resolver.Resolve(ctx, caller), user, nil
}

// Helper function to convert string ID to uint
func parseUintID(idStr string) (uint, error) {
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
