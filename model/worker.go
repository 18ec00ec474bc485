package model

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/missionly/missionly-core/entitlement"
)

type WorkerProfile struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"not null;uniqueIndex"`
	Title        string         `json:"title" gorm:"not null"`
	Bio          string         `json:"bio" gorm:"type:text"`
	City         string         `json:"city" gorm:"not null"`
	Phone        string         `json:"phone"`
	Specialities string         `json:"specialities"` // comma separated
	User         User           `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type UpdateWorkerProfileRequest struct {
	Title        *string `json:"title,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	City         *string `json:"city,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Specialities *string `json:"specialities,omitempty"`
}

// WorkerCardResponse is a single search result. A locked card exposes only
// the name-initial avatar, title and city; bio, contact and the full
// speciality list require the full-profiles flag on the caller's plan.
type WorkerCardResponse struct {
	ID           string   `json:"id"`
	AvatarLetter string   `json:"avatar_letter"`
	Name         string   `json:"name,omitempty"`
	Title        string   `json:"title"`
	City         string   `json:"city"`
	Bio          string   `json:"bio,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Email        string   `json:"email,omitempty"`
	Specialities []string `json:"specialities,omitempty"`
	IsLocked     bool     `json:"is_locked"`
}

type WorkerSearchResponse struct {
	Workers []WorkerCardResponse `json:"workers"`
	Total   int64                `json:"total"`
	// Echoed so the client can render the upsell banner without re-deriving
	// entitlements from data it was never sent.
	Subscription struct {
		CanViewFullProfiles bool `json:"canViewFullProfiles"`
	} `json:"subscription"`
}

func (w *WorkerProfile) ToWorkerCardResponse(v entitlement.Visibility) WorkerCardResponse {
	resp := WorkerCardResponse{
		ID:           strconv.FormatUint(uint64(w.ID), 10),
		AvatarLetter: firstLetter(w.User.Name),
		Title:        w.Title,
		City:         w.City,
		IsLocked:     v.Level != entitlement.VisibilityFull,
	}

	if v.Level != entitlement.VisibilityFull {
		return resp
	}

	resp.Name = w.User.Name
	resp.Bio = w.Bio
	resp.Phone = w.Phone
	resp.Email = w.User.Email
	if w.Specialities != "" {
		resp.Specialities = strings.Split(w.Specialities, ",")
	}
	return resp
}

func firstLetter(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "?"
	}
	return strings.ToUpper(trimmed[:1])
}
