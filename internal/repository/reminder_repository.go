package repository

import (
	"context"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReminderRepository struct {
	DB *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{DB: db}
}

func (r *ReminderRepository) FindByUser(ctx context.Context, userID string) ([]model.ReminderSetting, error) {
	var items []model.ReminderSetting
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, util.ClassifyStoreError("ReminderRepository.FindByUser", err)
	}
	return items, nil
}

func (r *ReminderRepository) UpsertAll(ctx context.Context, items []model.ReminderSetting) error {
	if len(items) == 0 {
		return nil
	}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "message", "time", "updated_at"}),
	}).Create(&items).Error
	return util.ClassifyStoreError("ReminderRepository.UpsertAll", err)
}
