package service

import (
	"context"
	"sort"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/util"
	"screen_balance_backend/pkg/logger"

	"go.uber.org/zap"
)

const maxDailyLimitMinutes = 24 * 60

type AppLimitService struct {
	LimitRepo *repository.AppLimitRepository
	Cache     *DashboardCache
	Options   *EngineOptions
}

func NewAppLimitService(limitRepo *repository.AppLimitRepository, cache *DashboardCache, opts *EngineOptions) *AppLimitService {
	return &AppLimitService{LimitRepo: limitRepo, Cache: cache, Options: opts}
}

type AppLimitView struct {
	AppID             string `json:"app_id"`
	Enabled           bool   `json:"enabled"`
	DailyLimitMinutes int    `json:"daily_limit_minutes"`
	DailyOpenLimit    int    `json:"daily_open_limit"`
}

// AppSettingInput is one entry of the limit editor's payload.
type AppSettingInput struct {
	Enabled    bool `json:"enabled"`
	DailyLimit *int `json:"dailyLimit"`
	OpenLimit  *int `json:"openLimit"`
}

// List returns the user's saved limits, with the default catalog filling in apps never saved.
func (s *AppLimitService) List(ctx context.Context, userID string) ([]AppLimitView, error) {
	saved, err := s.LimitRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make(map[string]AppLimitView, len(saved)+len(model.DefaultAppCatalog))
	for _, d := range model.DefaultAppCatalog {
		views[d.AppID] = toAppLimitView(d)
	}
	for _, c := range saved {
		views[c.AppID] = toAppLimitView(c)
	}

	out := make([]AppLimitView, 0, len(views))
	for _, v := range views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	return out, nil
}

// Save validates every entry first and then writes them all in one transaction.
func (s *AppLimitService) Save(ctx context.Context, userID string, settings map[string]AppSettingInput) error {
	if len(settings) == 0 {
		return util.NewValidationError("appSettings", "must contain at least one app")
	}

	configs := make([]model.AppLimitConfig, 0, len(settings))
	for appID, in := range settings {
		if err := ValidateIdentifier("appSettings."+appID, appID); err != nil {
			return err
		}
		cfg := model.AppLimitConfig{UserID: userID, AppID: appID, Enabled: in.Enabled}
		if def, ok := defaultLimit(appID); ok {
			cfg.DailyLimitMinutes = def.DailyLimitMinutes
			cfg.DailyOpenLimit = def.DailyOpenLimit
		}
		if in.DailyLimit != nil {
			cfg.DailyLimitMinutes = *in.DailyLimit
		}
		if in.OpenLimit != nil {
			cfg.DailyOpenLimit = *in.OpenLimit
		}

		if cfg.DailyLimitMinutes < 0 || cfg.DailyLimitMinutes > maxDailyLimitMinutes {
			return util.NewValidationError("appSettings."+appID+".dailyLimit", "must be between 0 and 1440 minutes")
		}
		if cfg.DailyOpenLimit < 0 {
			return util.NewValidationError("appSettings."+appID+".openLimit", "must not be negative")
		}
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].AppID < configs[j].AppID })

	err := util.WithRetry(ctx, nil, "AppLimitService.Save", func() error {
		return s.LimitRepo.UpsertAll(ctx, configs)
	})
	if err != nil {
		return err
	}

	s.Cache.Invalidate(ctx, userID)
	logger.Log.Info("app limits saved", zap.String("userID", userID), zap.Int("apps", len(configs)))
	return nil
}

func defaultLimit(appID string) (model.AppLimitConfig, bool) {
	for _, d := range model.DefaultAppCatalog {
		if d.AppID == appID {
			return d, true
		}
	}
	return model.AppLimitConfig{}, false
}

func toAppLimitView(c model.AppLimitConfig) AppLimitView {
	return AppLimitView{
		AppID:             c.AppID,
		Enabled:           c.Enabled,
		DailyLimitMinutes: c.DailyLimitMinutes,
		DailyOpenLimit:    c.DailyOpenLimit,
	}
}
