package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/missionly/missionly-core/model"
)

type EstablishmentRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*model.Establishment, error)
	Create(ctx context.Context, establishment *model.Establishment) error
	Update(ctx context.Context, establishment *model.Establishment) error
}

type establishmentRepository struct {
	db *gorm.DB
}

func NewEstablishmentRepository(db *gorm.DB) EstablishmentRepository {
	return &establishmentRepository{db: db}
}

func (r *establishmentRepository) FindByUserID(ctx context.Context, userID uint) (*model.Establishment, error) {
	var establishment model.Establishment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&establishment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no profile yet
		}
		return nil, err
	}
	return &establishment, nil
}

func (r *establishmentRepository) Create(ctx context.Context, establishment *model.Establishment) error {
	return r.db.WithContext(ctx).Create(establishment).Error
}

func (r *establishmentRepository) Update(ctx context.Context, establishment *model.Establishment) error {
	return r.db.WithContext(ctx).Save(establishment).Error
}
