package service

import (
	"context"
	"testing"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/testutils"

	"gorm.io/gorm"
)

// testEngine wires every service against a fresh in-memory database and a pinned clock.
type testEngine struct {
	db   *gorm.DB
	now  time.Time
	opts *EngineOptions

	limitRepo     *repository.AppLimitRepository
	dailyRepo     *repository.DailyUsageRepository
	badgeRepo     *repository.BadgeRepository
	thresholdRepo *repository.ThresholdRepository

	events     *EventStore
	settings   *UserSettingsService
	aggregator *DailyAggregator
	builder    *WeeklySummaryBuilder
	badges     *BadgeEngine
	notifier   *ThresholdNotifier
	appLimits  *AppLimitService
	usage      *UsageService
	dashboard  *DashboardService
	reminders  *ReminderService
	simulation *SimulationService
}

func newTestEngine(t *testing.T, now time.Time) *testEngine {
	t.Helper()

	e := &testEngine{db: testutils.NewTestDB(t), now: now}
	e.opts = &EngineOptions{
		ClockSkew:          2 * time.Minute,
		DefaultLocation:    time.UTC,
		MondayHistoryWeeks: 4,
		// small pages so multi-page reads are exercised
		QueryPageSize: 2,
		Now:           func() time.Time { return e.now },
	}

	eventRepo := repository.NewUsageEventRepository(e.db)
	e.dailyRepo = repository.NewDailyUsageRepository(e.db)
	e.limitRepo = repository.NewAppLimitRepository(e.db)
	e.badgeRepo = repository.NewBadgeRepository(e.db)
	e.thresholdRepo = repository.NewThresholdRepository(e.db)
	settingsRepo := repository.NewUserSettingsRepository(e.db)
	reminderRepo := repository.NewReminderRepository(e.db)

	cache := NewDashboardCache(nil, 0)
	e.events = NewEventStore(eventRepo, e.opts)
	e.settings = NewUserSettingsService(settingsRepo, cache, e.opts)
	e.aggregator = NewDailyAggregator(e.events, e.dailyRepo, e.settings, e.opts)
	e.builder = NewWeeklySummaryBuilder(e.dailyRepo, e.aggregator, e.events, e.settings, e.opts)
	e.badges = NewBadgeEngine(e.badgeRepo, e.limitRepo, e.builder, e.opts)
	e.notifier = NewThresholdNotifier(e.limitRepo, e.dailyRepo, e.thresholdRepo, reminderRepo, nil, e.opts)
	e.appLimits = NewAppLimitService(e.limitRepo, cache, e.opts)
	e.usage = NewUsageService(e.events, e.aggregator, e.notifier, e.settings, cache)
	e.dashboard = NewDashboardService(e.aggregator, e.builder, e.badges, e.settings, cache, e.opts)
	e.reminders = NewReminderService(reminderRepo)
	e.simulation = NewSimulationService(e.events, e.aggregator, e.limitRepo, e.settings, cache, e.opts)
	return e
}

func (e *testEngine) record(t *testing.T, userID, appID string, at time.Time, seconds, opens int64) {
	t.Helper()
	err := e.events.Record(context.Background(), &model.UsageEvent{
		UserID:          userID,
		AppID:           appID,
		Timestamp:       at,
		DurationSeconds: seconds,
		OpenCountDelta:  opens,
	})
	if err != nil {
		t.Fatalf("Record(%s, %s, %v): %v", userID, appID, at, err)
	}
}

// recordWeek writes one event per day at noon UTC, skipping days with zero hours.
func (e *testEngine) recordWeek(t *testing.T, userID string, monday time.Time, hours []float64) {
	t.Helper()
	for i, h := range hours {
		if h == 0 {
			continue
		}
		at := monday.AddDate(0, 0, i).Add(12 * time.Hour)
		e.record(t, userID, "instagram", at, int64(h*3600+0.5), 1)
	}
}

func intPtr(v int) *int {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}
