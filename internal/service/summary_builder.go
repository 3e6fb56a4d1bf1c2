package service

import (
	"context"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/util"
)

// DaySeries is one calendar day of a user's usage as the badge rules see it.
type DaySeries struct {
	Date       string
	Seconds    int64
	EventCount int64
	Apps       map[string]int64
	// Complete is true once the day has ended in the user's timezone.
	Complete bool
	// Tracked is true for complete days on or after the user's first event.
	Tracked bool
}

func (d DaySeries) Hours() float64 {
	return util.SecondsToHours(d.Seconds)
}

// WeekSeries is the week behind a WeeklySummary plus the context multi-day rules need.
type WeekSeries struct {
	Summary   *model.WeeklySummary
	WeekStart time.Time
	Location  *time.Location
	// FirstEventDay is empty for a user without events.
	FirstEventDay string
	Previous      DaySeries
	Days          [7]DaySeries
}

type WeeklySummaryBuilder struct {
	DailyRepo  *repository.DailyUsageRepository
	Aggregator *DailyAggregator
	Events     *EventStore
	Settings   *UserSettingsService
	Options    *EngineOptions
}

func NewWeeklySummaryBuilder(dailyRepo *repository.DailyUsageRepository, aggregator *DailyAggregator, events *EventStore, settings *UserSettingsService, opts *EngineOptions) *WeeklySummaryBuilder {
	return &WeeklySummaryBuilder{
		DailyRepo:  dailyRepo,
		Aggregator: aggregator,
		Events:     events,
		Settings:   settings,
		Options:    opts,
	}
}

// Build returns the summary of the week starting on weekStart, which must be a Monday.
func (b *WeeklySummaryBuilder) Build(ctx context.Context, userID string, weekStart time.Time) (*model.WeeklySummary, error) {
	series, err := b.BuildSeries(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	return series.Summary, nil
}

func (b *WeeklySummaryBuilder) BuildSeries(ctx context.Context, userID string, weekStart time.Time) (*WeekSeries, error) {
	if weekStart.Weekday() != time.Monday {
		return nil, util.NewInvalidRangeError("week start %s is a %s, not a Monday",
			weekStart.Format(util.DateFormat), weekStart.Weekday())
	}

	loc, err := b.Settings.Location(ctx, userID)
	if err != nil {
		return nil, err
	}
	monday := util.StartOfDay(weekStart, loc)

	first, hasEvents, err := b.Events.FirstEventAt(ctx, userID)
	if err != nil {
		return nil, err
	}
	firstDay := ""
	if hasEvents {
		firstDay = util.DayKey(first.In(loc))
	}

	days := make([]time.Time, 8)
	days[0] = monday.AddDate(0, 0, -1)
	for i := 0; i < 7; i++ {
		days[i+1] = monday.AddDate(0, 0, i)
	}
	loaded, err := b.loadDays(ctx, userID, days, loc, firstDay)
	if err != nil {
		return nil, err
	}

	series := &WeekSeries{
		WeekStart:     monday,
		Location:      loc,
		FirstEventDay: firstDay,
		Previous:      loaded[0],
	}
	copy(series.Days[:], loaded[1:])
	series.Summary = summarize(userID, monday, series.Days)
	return series, nil
}

// MondayHistory returns the hours of up to n Mondays before the series' week, newest first,
// skipping Mondays before the user's first event.
func (b *WeeklySummaryBuilder) MondayHistory(ctx context.Context, userID string, series *WeekSeries, n int) ([]float64, error) {
	if n <= 0 || series.FirstEventDay == "" {
		return nil, nil
	}

	var mondays []time.Time
	for i := 1; i <= n; i++ {
		m := series.WeekStart.AddDate(0, 0, -7*i)
		if util.DayKey(m) < series.FirstEventDay {
			break
		}
		mondays = append(mondays, m)
	}
	if len(mondays) == 0 {
		return nil, nil
	}

	loaded, err := b.loadDays(ctx, userID, mondays, series.Location, series.FirstEventDay)
	if err != nil {
		return nil, err
	}
	hours := make([]float64, len(loaded))
	for i, d := range loaded {
		hours[i] = d.Hours()
	}
	return hours, nil
}

// loadDays reads the stored roll-ups of the given days, aggregating past days that have none.
func (b *WeeklySummaryBuilder) loadDays(ctx context.Context, userID string, days []time.Time, loc *time.Location, firstDay string) ([]DaySeries, error) {
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = util.DayKey(d)
	}

	rows, err := b.DailyRepo.FindByDates(ctx, userID, keys)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string][]model.DailyUsage, len(keys))
	for _, row := range rows {
		byDate[row.Date] = append(byDate[row.Date], row)
	}

	now := b.Options.now()
	out := make([]DaySeries, len(days))
	for i, d := range days {
		start, end := util.DayBounds(d, loc)
		dayRows, ok := byDate[keys[i]]
		if !ok && !start.After(now) {
			dayRows, err = b.Aggregator.aggregateIn(ctx, userID, d, loc)
			if err != nil {
				return nil, err
			}
		}

		ds := DaySeries{Date: keys[i], Apps: make(map[string]int64, len(dayRows))}
		for _, row := range dayRows {
			ds.Seconds += row.TotalSeconds
			ds.EventCount += row.EventCount
			ds.Apps[row.AppID] += row.TotalSeconds
		}
		ds.Complete = !end.After(now)
		ds.Tracked = ds.Complete && firstDay != "" && keys[i] >= firstDay
		out[i] = ds
	}
	return out, nil
}

func summarize(userID string, monday time.Time, days [7]DaySeries) *model.WeeklySummary {
	summary := &model.WeeklySummary{
		UserID:         userID,
		WeekStart:      util.DayKey(monday),
		DailyBreakdown: make([]model.DayHours, 7),
		PeakDay:        util.WeekdayLabels[0],
	}

	var rawTotal float64
	for i, d := range days {
		hours := util.Round1(d.Hours())
		rawTotal += d.Hours()
		summary.DailyBreakdown[i] = model.DayHours{Date: d.Date, Hours: hours}
		// strict > keeps the earliest day on ties
		if hours > summary.PeakDayHours {
			summary.PeakDay = util.WeekdayLabels[i]
			summary.PeakDayHours = hours
		}
	}
	summary.TotalHours = util.Round1(rawTotal)
	summary.DailyAverageHours = util.Round1(summary.TotalHours / 7)
	return summary
}
