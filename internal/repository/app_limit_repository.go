package repository

import (
	"context"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppLimitRepository struct {
	DB *gorm.DB
}

func NewAppLimitRepository(db *gorm.DB) *AppLimitRepository {
	return &AppLimitRepository{DB: db}
}

func (r *AppLimitRepository) FindByUser(ctx context.Context, userID string) ([]model.AppLimitConfig, error) {
	var configs []model.AppLimitConfig
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("app_id ASC").Find(&configs).Error
	if err != nil {
		return nil, util.ClassifyStoreError("AppLimitRepository.FindByUser", err)
	}
	return configs, nil
}

func (r *AppLimitRepository) FindEnabled(ctx context.Context, userID string) ([]model.AppLimitConfig, error) {
	var configs []model.AppLimitConfig
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND enabled = ?", userID, true).
		Order("app_id ASC").
		Find(&configs).Error
	if err != nil {
		return nil, util.ClassifyStoreError("AppLimitRepository.FindEnabled", err)
	}
	return configs, nil
}

// UpsertAll writes every config in one transaction; either all apps are saved or none.
func (r *AppLimitRepository) UpsertAll(ctx context.Context, configs []model.AppLimitConfig) error {
	if len(configs) == 0 {
		return nil
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "app_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "daily_limit_minutes", "daily_open_limit", "updated_at"}),
		}).Create(&configs).Error
	})
	return util.ClassifyStoreError("AppLimitRepository.UpsertAll", err)
}
