package model

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/missionly/missionly-core/entitlement"
)

type MissionStatus string

const (
	MissionOpen   MissionStatus = "OPEN"
	MissionFilled MissionStatus = "FILLED"
	MissionClosed MissionStatus = "CLOSED"
)

type Mission struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	EstablishmentID uint          `json:"establishment_id" gorm:"not null;index"`
	Title           string        `json:"title" gorm:"not null"`
	Description     string        `json:"description" gorm:"type:text"`
	City            string        `json:"city" gorm:"not null"`
	Speciality      string        `json:"speciality"`
	SalaryMin       int           `json:"salary_min" gorm:"not null;default:0"` // minor currency units
	SalaryMax       int           `json:"salary_max" gorm:"not null;default:0"`
	IsUrgent        bool          `json:"is_urgent" gorm:"default:false"`
	// UrgentFeePercent is copied from the establishment's plan when the mission
	// is created. Later plan edits must not change the fee on existing missions.
	UrgentFeePercent int            `json:"urgent_fee_percent" gorm:"default:0"`
	Status           MissionStatus  `json:"status" gorm:"type:varchar(20);not null;default:'OPEN'"`
	StartsAt         *time.Time     `json:"starts_at"`
	Establishment    Establishment  `json:"-" gorm:"foreignKey:EstablishmentID"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// Urgent and PostedAt satisfy entitlement.MissionItem.
func (m *Mission) Urgent() bool        { return m.IsUrgent }
func (m *Mission) PostedAt() time.Time { return m.CreatedAt }

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationWithdrawn ApplicationStatus = "WITHDRAWN"
)

// Active reports whether the application still counts against the worker's
// quota. Terminal statuses free the slot.
func (s ApplicationStatus) Active() bool {
	return s == ApplicationPending || s == ApplicationAccepted
}

type Application struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	MissionID uint              `json:"mission_id" gorm:"not null;index"`
	WorkerID  uint              `json:"worker_id" gorm:"not null;index"`
	Status    ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	Message   string            `json:"message" gorm:"type:text"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `json:"deleted_at" gorm:"index"`
}

type CreateMissionRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	City        string  `json:"city" validate:"required"`
	Speciality  string  `json:"speciality"`
	SalaryMin   float64 `json:"salary_min" validate:"min=0"`
	SalaryMax   float64 `json:"salary_max" validate:"min=0"`
	IsUrgent    bool    `json:"is_urgent"`
	StartsAt    *string `json:"starts_at"`
}

type ApplyRequest struct {
	Message string `json:"message"`
}

// MissionResponse is the redacted-aware DTO. Visibility is computed per
// request by the entitlement engine; a redacted mission keeps its identifying
// metadata (title, establishment name, city, salary ceiling) and blanks free
// text and exact figures. Hidden missions expose nothing, not even their ID.
type MissionResponse struct {
	ID                string  `json:"id,omitempty"`
	Title             string  `json:"title,omitempty"`
	Description       string  `json:"description,omitempty"`
	City              string  `json:"city,omitempty"`
	Speciality        string  `json:"speciality,omitempty"`
	EstablishmentName string  `json:"establishment_name,omitempty"`
	SalaryMin         float64 `json:"salary_min,omitempty"`
	SalaryMax         float64 `json:"salary_max,omitempty"`
	IsUrgent          bool    `json:"is_urgent"`
	Status            string  `json:"status,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
	Visibility        string  `json:"visibility"`
	RedactionReason   string  `json:"redaction_reason,omitempty"`
}

func (m *Mission) ToMissionResponse(v entitlement.Visibility) MissionResponse {
	resp := MissionResponse{Visibility: string(v.Level)}
	if v.Level == entitlement.VisibilityHidden {
		return resp
	}

	resp.ID = strconv.FormatUint(uint64(m.ID), 10)
	resp.Title = m.Title
	resp.City = m.City
	resp.EstablishmentName = m.Establishment.Name
	resp.SalaryMax = centsToUnits(m.SalaryMax)
	resp.IsUrgent = m.IsUrgent
	resp.CreatedAt = m.CreatedAt.Format(time.RFC3339)

	if v.Level == entitlement.VisibilityRedacted {
		resp.RedactionReason = string(v.Reason)
		return resp
	}

	resp.Description = m.Description
	resp.Speciality = m.Speciality
	resp.SalaryMin = centsToUnits(m.SalaryMin)
	resp.Status = string(m.Status)
	return resp
}

// MissionFeedResponse keeps the total stable across access levels; only the
// per-item visibility tags differ between a BASIC and a PREMIUM caller.
type MissionFeedResponse struct {
	Missions []MissionResponse `json:"missions"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// Helper function to convert minor currency units to display units
func centsToUnits(cents int) float64 {
	return float64(cents) / 100.0
}
