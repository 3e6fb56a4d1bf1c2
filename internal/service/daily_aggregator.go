package service

import (
	"context"
	"sort"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/util"
	"screen_balance_backend/pkg/logger"
	"screen_balance_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// DailyAggregator folds one calendar day of events into per-app DailyUsage rows.
type DailyAggregator struct {
	Events    *EventStore
	DailyRepo *repository.DailyUsageRepository
	Settings  *UserSettingsService
	Options   *EngineOptions
}

func NewDailyAggregator(events *EventStore, dailyRepo *repository.DailyUsageRepository, settings *UserSettingsService, opts *EngineOptions) *DailyAggregator {
	return &DailyAggregator{Events: events, DailyRepo: dailyRepo, Settings: settings, Options: opts}
}

// Aggregate recomputes the rows of the calendar day named by day (its year, month and day
// fields; the clock part and location are ignored). The result depends only on the stored
// events, so running it again without new events yields the same rows.
func (a *DailyAggregator) Aggregate(ctx context.Context, userID string, day time.Time) ([]model.DailyUsage, error) {
	loc, err := a.Settings.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	return a.aggregateIn(ctx, userID, day, loc)
}

func (a *DailyAggregator) aggregateIn(ctx context.Context, userID string, day time.Time, loc *time.Location) ([]model.DailyUsage, error) {
	start := time.Now()
	defer func() {
		monitoring.AggregationDuration.Observe(time.Since(start).Seconds())
	}()

	from, to := util.DayBounds(day, loc)
	date := util.DayKey(from)

	byApp := make(map[string]*model.DailyUsage)
	for event, err := range a.Events.Query(ctx, userID, from, to, "") {
		if err != nil {
			// 中途失败直接丢弃部分结果，不写库
			return nil, err
		}
		row, ok := byApp[event.AppID]
		if !ok {
			row = &model.DailyUsage{UserID: userID, Date: date, AppID: event.AppID}
			byApp[event.AppID] = row
		}
		row.TotalSeconds += event.DurationSeconds
		row.OpenCount += event.OpenCountDelta
		row.EventCount++
	}

	rows := make([]model.DailyUsage, 0, len(byApp))
	for _, row := range byApp {
		// corrections may overshoot; a day never goes below zero
		row.TotalSeconds = max(row.TotalSeconds, 0)
		row.OpenCount = max(row.OpenCount, 0)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AppID < rows[j].AppID })

	err := util.WithRetry(ctx, nil, "DailyAggregator.Aggregate", func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return a.DailyRepo.ReplaceDay(ctx, userID, date, rows)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Debug("aggregated day",
		zap.String("userID", userID),
		zap.String("date", date),
		zap.Int("apps", len(rows)))
	return rows, nil
}

// AggregateRange re-aggregates the days [first, first+days).
func (a *DailyAggregator) AggregateRange(ctx context.Context, userID string, first time.Time, days int) error {
	loc, err := a.Settings.Location(ctx, userID)
	if err != nil {
		return err
	}
	day := util.StartOfDay(first, loc)
	for i := 0; i < days; i++ {
		if _, err := a.aggregateIn(ctx, userID, day.AddDate(0, 0, i), loc); err != nil {
			return err
		}
	}
	return nil
}
