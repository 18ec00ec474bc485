package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/missionly/missionly-core/entitlement"
	"github.com/missionly/missionly-core/model"
)

var (
	ErrDuplicateActivePlan = errors.New("an active plan with this code already exists for the role")
	ErrBasicPlanRequired   = errors.New("role would be left without an active BASIC plan")
	ErrBasicPlanProtected  = errors.New("the BASIC plan cannot be deleted")
)

// PlanInvalidator is notified synchronously after every successful plan
// mutation, before the call returns, so no stale entitlement survives a
// policy edit.
type PlanInvalidator interface {
	InvalidatePlan(ctx context.Context, code model.PlanCode)
}

type PlanRepository interface {
	GetPlan(ctx context.Context, role model.UserRole, code model.PlanCode) (*model.Plan, error)
	ListActive(ctx context.Context, role model.UserRole) ([]*model.Plan, error)
	Upsert(ctx context.Context, plan *model.Plan) error
	Delete(ctx context.Context, role model.UserRole, code model.PlanCode) error

	// Features adapts the registry to the resolver's PlanSource contract.
	Features(ctx context.Context, role entitlement.Role, code string) (*entitlement.PlanFeatures, error)
}

type planRepository struct {
	db          *gorm.DB
	invalidator PlanInvalidator
}

func NewPlanRepository(db *gorm.DB, invalidator PlanInvalidator) PlanRepository {
	return &planRepository{db: db, invalidator: invalidator}
}

// GetPlan prefers the active row but falls back to an inactive one so that
// subscribers grandfathered onto a retired plan still resolve correctly.
// Only ListActive feeds new subscriptions.
func (r *planRepository) GetPlan(ctx context.Context, role model.UserRole, code model.PlanCode) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).
		Where("target_role = ? AND code = ?", role, code).
		Order("is_active DESC, updated_at DESC").
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) ListActive(ctx context.Context, role model.UserRole) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).
		Where("target_role = ? AND is_active = ?", role, true).
		Order("price_monthly ASC").
		Find(&plans).Error
	return plans, err
}

// Upsert creates or replaces the plan for (target_role, code) inside one
// transaction. The invariant checks run against the post-write state, so
// concurrent edits to the same pair serialize on the row lock and cannot
// leave a role without an active BASIC plan or with two active rows for one
// code.
func (r *planRepository) Upsert(ctx context.Context, plan *model.Plan) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Plan
		err := tx.Where("target_role = ? AND code = ?", plan.TargetRole, plan.Code).
			First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			plan.ID = existing.ID
			plan.CreatedAt = existing.CreatedAt
		}

		if err := tx.Save(plan).Error; err != nil {
			return err
		}

		return checkPlanInvariants(tx, plan.TargetRole)
	})
	if err != nil {
		return err
	}

	if r.invalidator != nil {
		r.invalidator.InvalidatePlan(ctx, plan.Code)
	}
	return nil
}

func (r *planRepository) Delete(ctx context.Context, role model.UserRole, code model.PlanCode) error {
	if code == model.PlanBasic {
		return ErrBasicPlanProtected
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_role = ? AND code = ?", role, code).
			Delete(&model.Plan{}).Error; err != nil {
			return err
		}
		return checkPlanInvariants(tx, role)
	})
	if err != nil {
		return err
	}

	if r.invalidator != nil {
		r.invalidator.InvalidatePlan(ctx, code)
	}
	return nil
}

func checkPlanInvariants(tx *gorm.DB, role model.UserRole) error {
	var basicCount int64
	if err := tx.Model(&model.Plan{}).
		Where("target_role = ? AND code = ? AND is_active = ?", role, model.PlanBasic, true).
		Count(&basicCount).Error; err != nil {
		return err
	}
	if basicCount == 0 {
		return ErrBasicPlanRequired
	}

	var dup int64
	err := tx.Model(&model.Plan{}).
		Select("count(*)").
		Where("target_role = ? AND is_active = ?", role, true).
		Group("code").
		Having("count(*) > 1").
		Limit(1).
		Scan(&dup).Error
	if err != nil {
		return err
	}
	if dup > 1 {
		return ErrDuplicateActivePlan
	}

	return nil
}

func (r *planRepository) Features(ctx context.Context, role entitlement.Role, code string) (*entitlement.PlanFeatures, error) {
	plan, err := r.GetPlan(ctx, model.UserRole(role), model.PlanCode(code))
	if err != nil || plan == nil {
		return nil, err
	}

	return &entitlement.PlanFeatures{
		MaxActiveApplications:   plan.MaxActiveApplications,
		CanViewUrgentMissions:   plan.CanViewUrgentMissions,
		CanViewFullProfiles:     plan.CanViewFullProfiles,
		HasAutoMatching:         plan.HasAutoMatching,
		MissionViewDelayHours:   plan.MissionViewDelayHours,
		MaxActiveMissions:       plan.MaxActiveMissions,
		CanPostUrgent:           plan.CanPostUrgent,
		CanSearchWorkers:        plan.CanSearchWorkers,
		UrgentMissionFeePercent: plan.UrgentMissionFeePercent,
	}, nil
}
