package service

import (
	"context"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/util"
)

type UserSettingsService struct {
	SettingsRepo *repository.UserSettingsRepository
	Cache        *DashboardCache
	Options      *EngineOptions
}

func NewUserSettingsService(settingsRepo *repository.UserSettingsRepository, cache *DashboardCache, opts *EngineOptions) *UserSettingsService {
	return &UserSettingsService{SettingsRepo: settingsRepo, Cache: cache, Options: opts}
}

// Get returns the stored settings, or the engine default for a user who never saved any.
func (s *UserSettingsService) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	settings, err := s.SettingsRepo.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return &model.UserSettings{UserID: userID, Timezone: s.Options.DefaultLocation.String()}, nil
	}
	return settings, nil
}

// Location is the timezone that defines the user's calendar days.
func (s *UserSettingsService) Location(ctx context.Context, userID string) (*time.Location, error) {
	settings, err := s.SettingsRepo.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.Timezone == "" {
		return s.Options.DefaultLocation, nil
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		// 存储的时区已失效时回退到默认时区
		return s.Options.DefaultLocation, nil
	}
	return loc, nil
}

// UpdateTimezone changes the user's day boundaries. When the effective zone changes, stored
// DailyUsage rows are dropped with the settings write; the next pass re-derives each day
// from the event log under the new zone.
func (s *UserSettingsService) UpdateTimezone(ctx context.Context, userID, timezone string) (*model.UserSettings, error) {
	if timezone == "" {
		return nil, util.NewValidationError("timezone", "is required")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, util.NewValidationError("timezone", "is not a known IANA zone")
	}

	current, err := s.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	moved := current.String() != timezone

	settings := &model.UserSettings{UserID: userID, Timezone: timezone, UpdatedAt: s.Options.now()}
	if err := s.SettingsRepo.Save(ctx, settings, moved); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, userID)
	return settings, nil
}
