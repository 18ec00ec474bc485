package model

import (
	"time"

	"gorm.io/gorm"
)

type PlanCode string

const (
	PlanBasic   PlanCode = "BASIC"
	PlanPremium PlanCode = "PREMIUM"
	PlanPro     PlanCode = "PRO"
)

// Plan is an admin-defined, priced tier of features and limits for one role.
// Flags and limits are typed columns, parsed and validated on write; nothing
// downstream should ever have to decode a JSON bag per read.
type Plan struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Code         PlanCode `json:"code" gorm:"type:varchar(20);not null;index:idx_role_code"`
	TargetRole   UserRole `json:"target_role" gorm:"type:varchar(20);not null;index:idx_role_code"`
	Name         string   `json:"name" gorm:"not null"`
	Description  string   `json:"description"`
	PriceMonthly int      `json:"price_monthly" gorm:"not null"` // minor currency units (cents)
	TrialDays    int      `json:"trial_days" gorm:"not null;default:0"`
	IsActive     bool     `json:"is_active" gorm:"not null;default:true"`

	// Worker flags/limits. Nil limit = unlimited.
	MaxActiveApplications *int `json:"max_active_applications"`
	CanViewUrgentMissions bool `json:"can_view_urgent_missions" gorm:"default:false"`
	CanViewFullProfiles   bool `json:"can_view_full_profiles" gorm:"default:false"`
	HasAutoMatching       bool `json:"has_auto_matching" gorm:"default:false"`
	MissionViewDelayHours int  `json:"mission_view_delay_hours" gorm:"default:0"`

	// Establishment flags/limits.
	MaxActiveMissions       *int `json:"max_active_missions"`
	CanPostUrgent           bool `json:"can_post_urgent" gorm:"default:false"`
	CanSearchWorkers        bool `json:"can_search_workers" gorm:"default:false"`
	UrgentMissionFeePercent int  `json:"urgent_mission_fee_percent" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type UpsertPlanRequest struct {
	Code         PlanCode `json:"code" validate:"required,oneof=BASIC PREMIUM PRO"`
	TargetRole   UserRole `json:"target_role" validate:"required,oneof=WORKER ESTABLISHMENT"`
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	PriceMonthly int      `json:"price_monthly" validate:"min=0"`
	TrialDays    int      `json:"trial_days" validate:"min=0"`
	IsActive     *bool    `json:"is_active"`

	MaxActiveApplications *int `json:"max_active_applications"`
	CanViewUrgentMissions bool `json:"can_view_urgent_missions"`
	CanViewFullProfiles   bool `json:"can_view_full_profiles"`
	HasAutoMatching       bool `json:"has_auto_matching"`
	MissionViewDelayHours int  `json:"mission_view_delay_hours" validate:"min=0"`

	MaxActiveMissions       *int `json:"max_active_missions"`
	CanPostUrgent           bool `json:"can_post_urgent"`
	CanSearchWorkers        bool `json:"can_search_workers"`
	UrgentMissionFeePercent int  `json:"urgent_mission_fee_percent" validate:"min=0,max=100"`
}

// ToPlan maps the admin request onto a Plan row. IsActive defaults to true
// when omitted so a plain upsert never silently retires a plan.
func (r *UpsertPlanRequest) ToPlan() Plan {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return Plan{
		Code:                    r.Code,
		TargetRole:              r.TargetRole,
		Name:                    r.Name,
		Description:             r.Description,
		PriceMonthly:            r.PriceMonthly,
		TrialDays:               r.TrialDays,
		IsActive:                active,
		MaxActiveApplications:   r.MaxActiveApplications,
		CanViewUrgentMissions:   r.CanViewUrgentMissions,
		CanViewFullProfiles:     r.CanViewFullProfiles,
		HasAutoMatching:         r.HasAutoMatching,
		MissionViewDelayHours:   r.MissionViewDelayHours,
		MaxActiveMissions:       r.MaxActiveMissions,
		CanPostUrgent:           r.CanPostUrgent,
		CanSearchWorkers:        r.CanSearchWorkers,
		UrgentMissionFeePercent: r.UrgentMissionFeePercent,
	}
}
