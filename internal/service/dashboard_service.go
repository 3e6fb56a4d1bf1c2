package service

import (
	"context"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"
	"screen_balance_backend/pkg/logger"
	"screen_balance_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const TimeframeWeek = "week"

// DashboardService runs one user's pass: aggregate, summarize, evaluate badges.
type DashboardService struct {
	Aggregator *DailyAggregator
	Builder    *WeeklySummaryBuilder
	Badges     *BadgeEngine
	Settings   *UserSettingsService
	Cache      *DashboardCache
	Options    *EngineOptions
}

func NewDashboardService(
	aggregator *DailyAggregator,
	builder *WeeklySummaryBuilder,
	badges *BadgeEngine,
	settings *UserSettingsService,
	cache *DashboardCache,
	opts *EngineOptions,
) *DashboardService {
	return &DashboardService{
		Aggregator: aggregator,
		Builder:    builder,
		Badges:     badges,
		Settings:   settings,
		Cache:      cache,
		Options:    opts,
	}
}

type DashboardQuery struct {
	Timeframe string `form:"timeframe"`
	WeekStart string `form:"weekStart"`
}

type DashboardSummary struct {
	TotalHours        float64 `json:"totalHours"`
	DailyAverageHours float64 `json:"dailyAverageHours"`
	PeakDay           string  `json:"peakDay"`
	PeakDayHours      float64 `json:"peakDayHours"`
}

type BadgeView struct {
	ID       model.BadgeID `json:"id"`
	EarnedAt time.Time     `json:"earnedAt"`
}

type Dashboard struct {
	WeekStart      string           `json:"weekStart"`
	Summary        DashboardSummary `json:"summary"`
	DailyBreakdown []model.DayHours `json:"dailyBreakdown"`
	Badges         []BadgeView      `json:"badges"`
}

func (s *DashboardService) GetDashboard(ctx context.Context, userID string, q DashboardQuery) (*Dashboard, error) {
	if q.Timeframe != "" && q.Timeframe != TimeframeWeek {
		return nil, util.NewValidationError("timeframe", "only \"week\" is supported")
	}

	loc, err := s.Settings.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	weekStart := util.WeekStart(s.Options.now().In(loc), loc)
	if q.WeekStart != "" {
		weekStart, err = util.ParseDay(q.WeekStart, loc)
		if err != nil {
			return nil, util.NewValidationError("weekStart", "must be YYYY-MM-DD")
		}
	}

	var cached Dashboard
	if s.Cache.Get(ctx, userID, util.DayKey(weekStart), &cached) {
		return &cached, nil
	}
	return s.compute(ctx, userID, weekStart)
}

// Recompute re-aggregates the trailing seven days and refreshes the current week, skipping
// the cache.
func (s *DashboardService) Recompute(ctx context.Context, userID string) (*Dashboard, error) {
	loc, err := s.Settings.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.Options.now().In(loc)
	if err := s.Aggregator.AggregateRange(ctx, userID, today.AddDate(0, 0, -6), 7); err != nil {
		return nil, err
	}
	return s.compute(ctx, userID, util.WeekStart(today, loc))
}

func (s *DashboardService) compute(ctx context.Context, userID string, weekStart time.Time) (*Dashboard, error) {
	ctx, span := tracing.StartSpan(ctx, "DashboardService.compute", userID)
	defer span.End()
	span.SetAttributes(attribute.String("week.start", util.DayKey(weekStart)))

	if weekStart.Weekday() != time.Monday {
		return nil, util.NewInvalidRangeError("week start %s is a %s, not a Monday",
			util.DayKey(weekStart), weekStart.Weekday())
	}

	// 上周日结束后才能判定周末徽章，所以先补评上一周
	if _, err := s.evaluateWeek(ctx, userID, weekStart.AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	series, err := s.evaluateWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}

	held, err := s.Badges.Earned(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := series.Summary
	dashboard := &Dashboard{
		WeekStart: summary.WeekStart,
		Summary: DashboardSummary{
			TotalHours:        summary.TotalHours,
			DailyAverageHours: summary.DailyAverageHours,
			PeakDay:           summary.PeakDay,
			PeakDayHours:      summary.PeakDayHours,
		},
		DailyBreakdown: summary.DailyBreakdown,
		Badges:         make([]BadgeView, 0, len(held)),
	}
	for _, b := range held {
		dashboard.Badges = append(dashboard.Badges, BadgeView{ID: b.BadgeID, EarnedAt: b.EarnedAt})
	}

	s.Cache.Set(ctx, userID, summary.WeekStart, dashboard)
	return dashboard, nil
}

// evaluateWeek builds the week and runs the badge rules over it, in that order.
func (s *DashboardService) evaluateWeek(ctx context.Context, userID string, weekStart time.Time) (*WeekSeries, error) {
	series, err := s.Builder.BuildSeries(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	eval, err := s.Badges.Evaluate(ctx, userID, series)
	if err != nil {
		return nil, err
	}
	if len(eval.NewlyEarned) > 0 {
		// other cached weeks list badges too
		s.Cache.Invalidate(ctx, userID)
		logger.Log.Debug("dashboard pass earned badges",
			zap.String("userID", userID),
			zap.String("weekStart", series.Summary.WeekStart),
			zap.Int("count", len(eval.NewlyEarned)))
	}
	return series, nil
}
