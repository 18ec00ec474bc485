package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/missionly/missionly-core/model"
)

type WorkerFilter struct {
	City       string
	Speciality string
	Page       int
	PageSize   int
}

type WorkerRepository interface {
	Search(ctx context.Context, filter WorkerFilter) ([]*model.WorkerProfile, int64, error)
	FindByUserID(ctx context.Context, userID uint) (*model.WorkerProfile, error)
	Upsert(ctx context.Context, profile *model.WorkerProfile) error
}

type workerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) WorkerRepository {
	return &workerRepository{db: db}
}

// Search only surfaces validated workers. Redaction of the results is the
// entitlement engine's job; the query itself is identical for every caller
// so totals stay stable across plans.
func (r *workerRepository) Search(ctx context.Context, filter WorkerFilter) ([]*model.WorkerProfile, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.WorkerProfile{}).
		Joins("JOIN users ON users.id = worker_profiles.user_id").
		Where("users.validation_status = ?", model.ValidationValidated)

	if filter.City != "" {
		query = query.Where("worker_profiles.city = ?", filter.City)
	}
	if filter.Speciality != "" {
		query = query.Where("worker_profiles.specialities LIKE ?", "%"+filter.Speciality+"%")
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

	var workers []*model.WorkerProfile
	err := query.
		Preload("User").
		Order("worker_profiles.updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&workers).Error
	return workers, total, err
}

func (r *workerRepository) FindByUserID(ctx context.Context, userID uint) (*model.WorkerProfile, error) {
	var profile model.WorkerProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *workerRepository) Upsert(ctx context.Context, profile *model.WorkerProfile) error {
	if profile.ID == 0 {
		return r.db.WithContext(ctx).Create(profile).Error
	}
	return r.db.WithContext(ctx).Save(profile).Error
}
