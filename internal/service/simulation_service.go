package service

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/util"
	"screen_balance_backend/pkg/logger"

	"go.uber.org/zap"
)

const ActionSimulateWeek = "simulate_week"

// SimulationService seeds synthetic usage so a fresh install has a week to show.
// It is a bootstrap helper, not part of the aggregation contract.
type SimulationService struct {
	Events     *EventStore
	Aggregator *DailyAggregator
	LimitRepo  *repository.AppLimitRepository
	Settings   *UserSettingsService
	Cache      *DashboardCache
	Options    *EngineOptions
}

func NewSimulationService(
	events *EventStore,
	aggregator *DailyAggregator,
	limitRepo *repository.AppLimitRepository,
	settings *UserSettingsService,
	cache *DashboardCache,
	opts *EngineOptions,
) *SimulationService {
	return &SimulationService{
		Events:     events,
		Aggregator: aggregator,
		LimitRepo:  limitRepo,
		Settings:   settings,
		Cache:      cache,
		Options:    opts,
	}
}

type SimulationResult struct {
	Days   int `json:"days"`
	Events int `json:"events"`
}

// SimulateWeek writes one event per app for the past six days and today. The values are
// derived from the user and the day, so the same day always gets the same numbers.
func (s *SimulationService) SimulateWeek(ctx context.Context, userID, action string) (*SimulationResult, error) {
	if action != ActionSimulateWeek {
		return nil, util.NewValidationError("action", "must be simulate_week")
	}

	apps, err := s.LimitRepo.FindEnabled(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		apps = model.DefaultAppCatalog
	}

	loc, err := s.Settings.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.Options.now().In(loc)
	today := util.StartOfDay(now, loc)

	result := &SimulationResult{Days: 7}
	for offset := 6; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		rng := dayRand(userID, util.DayKey(day))

		for _, app := range apps {
			limit := app.DailyLimitMinutes
			if limit <= 0 {
				limit = 60
			}
			minutes := 5 + rng.IntN(limit+limit/3)
			opens := 1 + rng.IntN(max(app.DailyOpenLimit, 4))
			at := day.Add(time.Duration(8+rng.IntN(14))*time.Hour + time.Duration(rng.IntN(60))*time.Minute)
			if at.After(now) {
				at = now
			}

			event := &model.UsageEvent{
				UserID:          userID,
				AppID:           app.AppID,
				Timestamp:       at,
				DurationSeconds: int64(minutes) * 60,
				OpenCountDelta:  int64(opens),
				Source:          model.SourceSimulation,
			}
			if err := s.Events.Record(ctx, event); err != nil {
				return nil, err
			}
			result.Events++
		}
	}

	if err := s.Aggregator.AggregateRange(ctx, userID, today.AddDate(0, 0, -6), 7); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, userID)

	logger.Log.Info("simulated usage week",
		zap.String("userID", userID),
		zap.Int("events", result.Events))
	return result, nil
}

func dayRand(userID, date string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(date))
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}
