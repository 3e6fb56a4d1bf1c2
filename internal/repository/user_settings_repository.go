package repository

import (
	"context"
	"errors"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserSettingsRepository struct {
	DB *gorm.DB
}

func NewUserSettingsRepository(db *gorm.DB) *UserSettingsRepository {
	return &UserSettingsRepository{DB: db}
}

// Find returns nil without error when the user never saved settings.
func (r *UserSettingsRepository) Find(ctx context.Context, userID string) (*model.UserSettings, error) {
	var s model.UserSettings
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, util.ClassifyStoreError("UserSettingsRepository.Find", err)
	}
	return &s, nil
}

// Save upserts the settings. With resetRollups the user's DailyUsage rows are dropped in the
// same transaction, so every day is re-derived under the new day boundaries.
func (r *UserSettingsRepository) Save(ctx context.Context, s *model.UserSettings, resetRollups bool) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"timezone", "updated_at"}),
		}).Create(s).Error
		if err != nil || !resetRollups {
			return err
		}
		return tx.Where("user_id = ?", s.UserID).Delete(&model.DailyUsage{}).Error
	})
	return util.ClassifyStoreError("UserSettingsRepository.Save", err)
}
