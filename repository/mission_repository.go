package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/missionly/missionly-core/model"
)

// MissionFilter narrows the feed query. Zero values mean no filter; the
// ordering is always most recent first and is never rearranged downstream.
type MissionFilter struct {
	City       string
	Speciality string
	Page       int
	PageSize   int
}

type MissionRepository interface {
	List(ctx context.Context, filter MissionFilter) ([]*model.Mission, int64, error)
	FindByID(ctx context.Context, id uint) (*model.Mission, error)
	Create(ctx context.Context, mission *model.Mission) error
	CountActiveByEstablishment(ctx context.Context, establishmentID uint) (int64, error)
}

type missionRepository struct {
	db *gorm.DB
}

func NewMissionRepository(db *gorm.DB) MissionRepository {
	return &missionRepository{db: db}
}

func (r *missionRepository) List(ctx context.Context, filter MissionFilter) ([]*model.Mission, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Mission{}).
		Where("status = ?", model.MissionOpen)

	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Speciality != "" {
		query = query.Where("speciality = ?", filter.Speciality)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var missions []*model.Mission
	err := query.
		Preload("Establishment").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&missions).Error
	return missions, total, err
}

func (r *missionRepository) FindByID(ctx context.Context, id uint) (*model.Mission, error) {
	var mission model.Mission
	err := r.db.WithContext(ctx).Preload("Establishment").First(&mission, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mission, nil
}

func (r *missionRepository) Create(ctx context.Context, mission *model.Mission) error {
	// The establishment row is owned elsewhere; never written through the
	// association.
	return r.db.WithContext(ctx).Omit("Establishment").Create(mission).Error
}

func (r *missionRepository) CountActiveByEstablishment(ctx context.Context, establishmentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Mission{}).
		Where("establishment_id = ? AND status = ?", establishmentID, model.MissionOpen).
		Count(&count).Error
	return count, err
}
