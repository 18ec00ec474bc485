package model

import (
	"time"

	"gorm.io/gorm"
)

type Establishment struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;uniqueIndex"`
	Name      string         `json:"name" gorm:"not null"`
	Address   string         `json:"address"`
	City      string         `json:"city" gorm:"not null"`
	Phone     string         `json:"phone"`
	Website   string         `json:"website"`
	Logo      string         `json:"logo" gorm:"type:text"` // cloudinary URL
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type UpdateEstablishmentRequest struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Website *string `json:"website,omitempty"`
}

type EstablishmentResponse struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Logo    string `json:"logo"`
}

func (e *Establishment) ToEstablishmentResponse() EstablishmentResponse {
	return EstablishmentResponse{
		Name:    e.Name,
		Address: e.Address,
		City:    e.City,
		Phone:   e.Phone,
		Website: e.Website,
		Logo:    e.Logo,
	}
}
