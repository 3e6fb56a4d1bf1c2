package repository

import (
	"context"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"

	"gorm.io/gorm"
)

type DailyUsageRepository struct {
	DB *gorm.DB
}

func NewDailyUsageRepository(db *gorm.DB) *DailyUsageRepository {
	return &DailyUsageRepository{DB: db}
}

// ReplaceDay swaps the user's rows for one date in a single transaction, so readers see
// either the old roll-up or the new one, never a partial sum.
func (r *DailyUsageRepository) ReplaceDay(ctx context.Context, userID, date string, rows []model.DailyUsage) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND date = ?", userID, date).Delete(&model.DailyUsage{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	return util.ClassifyStoreError("DailyUsageRepository.ReplaceDay", err)
}

func (r *DailyUsageRepository) FindByDate(ctx context.Context, userID, date string) ([]model.DailyUsage, error) {
	var rows []model.DailyUsage
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("app_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, util.ClassifyStoreError("DailyUsageRepository.FindByDate", err)
	}
	return rows, nil
}

// FindByDates returns all rows of the given dates, ordered by date then app.
func (r *DailyUsageRepository) FindByDates(ctx context.Context, userID string, dates []string) ([]model.DailyUsage, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	var rows []model.DailyUsage
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date IN ?", userID, dates).
		Order("date ASC").Order("app_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, util.ClassifyStoreError("DailyUsageRepository.FindByDates", err)
	}
	return rows, nil
}
