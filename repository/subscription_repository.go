package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/missionly/missionly-core/model"
)

// UserInvalidator drops any cached entitlement for a user, synchronously,
// before the mutating call returns.
type UserInvalidator interface {
	InvalidateUser(ctx context.Context, userID uint)
}

type SubscriptionRepository interface {
	FindActiveByUserID(ctx context.Context, userID uint) (*model.Subscription, error)
	Subscribe(ctx context.Context, sub *model.Subscription) error
	Cancel(ctx context.Context, userID uint) error
	Expire(ctx context.Context, userID uint) error
}

type subscriptionRepository struct {
	db          *gorm.DB
	invalidator UserInvalidator
}

func NewSubscriptionRepository(db *gorm.DB, invalidator UserInvalidator) SubscriptionRepository {
	return &subscriptionRepository{db: db, invalidator: invalidator}
}

// FindActiveByUserID returns the user's current ACTIVE subscription. A row
// whose end date has passed is flipped to EXPIRED on the way out rather than
// returned, so the caller's plan reverts to BASIC without deleting history.
func (r *subscriptionRepository) FindActiveByUserID(ctx context.Context, userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if time.Now().After(sub.EndDate) {
		if err := r.transition(ctx, userID, model.SubscriptionExpired); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &sub, nil
}

// Subscribe creates the new ACTIVE subscription, replacing any current one
// inside the same transaction so the at-most-one-ACTIVE invariant holds.
func (r *subscriptionRepository) Subscribe(ctx context.Context, sub *model.Subscription) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Subscription{}).
			Where("user_id = ? AND status = ?", sub.UserID, model.SubscriptionActive).
			Update("status", model.SubscriptionCancelled).Error; err != nil {
			return err
		}

		sub.Status = model.SubscriptionActive
		return tx.Create(sub).Error
	})
	if err != nil {
		return err
	}

	if r.invalidator != nil {
		r.invalidator.InvalidateUser(ctx, sub.UserID)
	}
	return nil
}

func (r *subscriptionRepository) Cancel(ctx context.Context, userID uint) error {
	return r.transition(ctx, userID, model.SubscriptionCancelled)
}

func (r *subscriptionRepository) Expire(ctx context.Context, userID uint) error {
	return r.transition(ctx, userID, model.SubscriptionExpired)
}

func (r *subscriptionRepository) transition(ctx context.Context, userID uint, status model.SubscriptionStatus) error {
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
		Update("status", status).Error
	if err != nil {
		return err
	}

	if r.invalidator != nil {
		r.invalidator.InvalidateUser(ctx, userID)
	}
	return nil
}
