package repository

import (
	"context"
	"errors"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ThresholdRepository struct {
	DB *gorm.DB
}

func NewThresholdRepository(db *gorm.DB) *ThresholdRepository {
	return &ThresholdRepository{DB: db}
}

// CreateIfAbsent inserts the crossing unless one already exists for (user, app, date, kind).
func (r *ThresholdRepository) CreateIfAbsent(ctx context.Context, n *model.ThresholdNotification) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(n)
	if res.Error != nil {
		return false, util.ClassifyStoreError("ThresholdRepository.CreateIfAbsent", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// FindByUser lists crossings of one user; an empty date means all dates.
func (r *ThresholdRepository) FindByUser(ctx context.Context, userID, date string) ([]model.ThresholdNotification, error) {
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if date != "" {
		q = q.Where("date = ?", date)
	}

	var items []model.ThresholdNotification
	if err := q.Order("crossed_at ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, util.ClassifyStoreError("ThresholdRepository.FindByUser", err)
	}
	return items, nil
}

func (r *ThresholdRepository) Acknowledge(ctx context.Context, userID string, id uint, at time.Time) (*model.ThresholdNotification, error) {
	var n model.ThresholdNotification
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFoundError("notification")
	}
	if err != nil {
		return nil, util.ClassifyStoreError("ThresholdRepository.Acknowledge", err)
	}
	if n.AcknowledgedAt != nil {
		return &n, nil
	}

	if err := r.DB.WithContext(ctx).Model(&n).Update("acknowledged_at", at).Error; err != nil {
		return nil, util.ClassifyStoreError("ThresholdRepository.Acknowledge", err)
	}
	n.AcknowledgedAt = &at
	return &n, nil
}
