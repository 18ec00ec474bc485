package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleWorker        UserRole = "WORKER"
	RoleEstablishment UserRole = "ESTABLISHMENT"
	RoleAdmin         UserRole = "ADMIN"
)

type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "PENDING"
	ValidationValidated ValidationStatus = "VALIDATED"
	ValidationRejected  ValidationStatus = "REJECTED"
)

type User struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	Email            string           `json:"email" gorm:"not null;uniqueIndex"`
	Password         string           `json:"password,omitempty" gorm:"not null"`
	Name             string           `json:"name" gorm:"not null"`
	Role             UserRole         `json:"role" gorm:"type:varchar(20);not null"`
	ValidationStatus ValidationStatus `json:"validation_status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	// LegacySubscriber mirrors the old billing system's premium marker. Retired
	// accounts migrated before subscriptions existed carry it instead of a
	// Subscription row. Treated as a premium override during resolution.
	LegacySubscriber bool           `json:"legacy_subscriber" gorm:"default:false"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type RegisterRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     UserRole `json:"role" validate:"required,oneof=WORKER ESTABLISHMENT"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
	User  User   `json:"user"`
}

type ValidateUserRequest struct {
	Status ValidationStatus `json:"status" validate:"required,oneof=VALIDATED REJECTED"`
}
