package model

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription binds a user to a plan for a validity window. At most one
// ACTIVE row per user; expiry flips status instead of deleting history.
type Subscription struct {
	ID        uint               `json:"id" gorm:"primaryKey"`
	UserID    uint               `json:"user_id" gorm:"not null;index"`
	PlanCode  PlanCode           `json:"plan_code" gorm:"type:varchar(20);not null"`
	Status    SubscriptionStatus `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	StartDate time.Time          `json:"start_date" gorm:"not null"`
	EndDate   time.Time          `json:"end_date" gorm:"not null"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	DeletedAt gorm.DeletedAt     `json:"deleted_at" gorm:"index"`
}

// IsCurrent reports whether the subscription grants anything at the given
// instant: ACTIVE status and inside the validity window.
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s.Status == SubscriptionActive && !now.Before(s.StartDate) && now.Before(s.EndDate)
}

type SubscribeRequest struct {
	PlanCode PlanCode `json:"plan_code" validate:"required,oneof=BASIC PREMIUM PRO"`
}

// PaymentEventRequest is the provider-agnostic shape of a payment webhook.
// Actual provider integration lives outside this service; whatever relays
// the webhook translates it into one of these.
type PaymentEventRequest struct {
	UserID   uint     `json:"user_id" validate:"required"`
	PlanCode PlanCode `json:"plan_code" validate:"required,oneof=BASIC PREMIUM PRO"`
	Event    string   `json:"event" validate:"required,oneof=payment_succeeded payment_failed subscription_expired"`
	Months   int      `json:"months" validate:"min=0"`
}

type SubscriptionResponse struct {
	PlanCode  PlanCode           `json:"plan_code"`
	Status    SubscriptionStatus `json:"status"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
}

func (s *Subscription) ToSubscriptionResponse() SubscriptionResponse {
	return SubscriptionResponse{
		PlanCode:  s.PlanCode,
		Status:    s.Status,
		StartDate: s.StartDate.Format(time.RFC3339),
		EndDate:   s.EndDate.Format(time.RFC3339),
	}
}
