package repository

import (
	"context"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) FindByUser(ctx context.Context, userID string) ([]model.EarnedBadge, error) {
	var badges []model.EarnedBadge
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("earned_at ASC").Order("id ASC").Find(&badges).Error
	if err != nil {
		return nil, util.ClassifyStoreError("BadgeRepository.FindByUser", err)
	}
	return badges, nil
}

// CreateIfAbsent inserts the badge unless (user, badge) already exists. created reports
// whether this call wrote the row; an existing row is left untouched.
func (r *BadgeRepository) CreateIfAbsent(ctx context.Context, badge *model.EarnedBadge) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(badge)
	if res.Error != nil {
		return false, util.ClassifyStoreError("BadgeRepository.CreateIfAbsent", res.Error)
	}
	return res.RowsAffected == 1, nil
}
