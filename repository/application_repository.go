package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/missionly/missionly-core/model"
)

var ErrAlreadyApplied = errors.New("worker already applied to this mission")

type ApplicationRepository interface {
	Create(ctx context.Context, application *model.Application) error
	CountActiveByWorker(ctx context.Context, workerID uint) (int64, error)
	Withdraw(ctx context.Context, workerID, missionID uint) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, application *model.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&model.Application{}).
			Where("worker_id = ? AND mission_id = ? AND status IN ?",
				application.WorkerID, application.MissionID,
				[]model.ApplicationStatus{model.ApplicationPending, model.ApplicationAccepted}).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyApplied
		}

		return tx.Create(application).Error
	})
}

// CountActiveByWorker counts non-terminal applications; this is the number
// the application quota is enforced against.
func (r *applicationRepository) CountActiveByWorker(ctx context.Context, workerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("worker_id = ? AND status IN ?", workerID,
			[]model.ApplicationStatus{model.ApplicationPending, model.ApplicationAccepted}).
		Count(&count).Error
	return count, err
}

func (r *applicationRepository) Withdraw(ctx context.Context, workerID, missionID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("worker_id = ? AND mission_id = ? AND status = ?",
			workerID, missionID, model.ApplicationPending).
		Update("status", model.ApplicationWithdrawn).Error
}
