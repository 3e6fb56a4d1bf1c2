package service

import (
	"context"
	"math"
	"testing"
	"time"

	"screen_balance_backend/internal/util"
)

var week = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC) // a Monday

func TestWeeklySummaryBuilder_Scenario(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))
	hours := []float64{3.2, 6.2, 4.1, 3.8, 4.5, 2.1, 4.6}
	e.recordWeek(t, "u1", week, hours)

	summary, err := e.builder.Build(context.Background(), "u1", week)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if summary.TotalHours != 28.5 {
		t.Errorf("TotalHours = %v, want 28.5", summary.TotalHours)
	}
	if summary.DailyAverageHours != 4.1 {
		t.Errorf("DailyAverageHours = %v, want 4.1", summary.DailyAverageHours)
	}
	if summary.PeakDay != "Tue" || summary.PeakDayHours != 6.2 {
		t.Errorf("peak = %s %v, want Tue 6.2", summary.PeakDay, summary.PeakDayHours)
	}
	if summary.WeekStart != "2025-01-06" {
		t.Errorf("WeekStart = %s", summary.WeekStart)
	}

	if len(summary.DailyBreakdown) != 7 {
		t.Fatalf("breakdown has %d entries", len(summary.DailyBreakdown))
	}
	var sum, peak float64
	for i, d := range summary.DailyBreakdown {
		if want := util.DayKey(week.AddDate(0, 0, i)); d.Date != want {
			t.Errorf("breakdown[%d].Date = %s, want %s", i, d.Date, want)
		}
		if d.Hours != hours[i] {
			t.Errorf("breakdown[%d].Hours = %v, want %v", i, d.Hours, hours[i])
		}
		sum += d.Hours
		peak = math.Max(peak, d.Hours)
	}
	if math.Abs(sum-summary.TotalHours) > 0.05*7 {
		t.Errorf("sum of breakdown %v drifts from total %v", sum, summary.TotalHours)
	}
	if peak != summary.PeakDayHours {
		t.Errorf("PeakDayHours %v != max breakdown %v", summary.PeakDayHours, peak)
	}
}

func TestWeeklySummaryBuilder_RejectsNonMonday(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))

	_, err := e.builder.Build(context.Background(), "u1", week.AddDate(0, 0, 1))
	if !util.IsInvalidRange(err) {
		t.Fatalf("expected InvalidRangeError, got %v", err)
	}
}

func TestWeeklySummaryBuilder_ZeroFillsMissingDays(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))
	e.recordWeek(t, "u1", week, []float64{2, 2, 0, 2, 2, 2, 2})

	series, err := e.builder.BuildSeries(context.Background(), "u1", week)
	if err != nil {
		t.Fatalf("BuildSeries: %v", err)
	}
	summary := series.Summary
	if len(summary.DailyBreakdown) != 7 {
		t.Fatalf("breakdown has %d entries", len(summary.DailyBreakdown))
	}
	if summary.DailyBreakdown[2].Hours != 0 || summary.DailyBreakdown[2].Date != "2025-01-08" {
		t.Errorf("Wednesday = %+v, want zero hours on 2025-01-08", summary.DailyBreakdown[2])
	}
	if series.Days[2].EventCount != 0 {
		t.Errorf("Wednesday event count = %d", series.Days[2].EventCount)
	}
}

func TestWeeklySummaryBuilder_PeakTieAndEmptyWeek(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	empty, err := e.builder.Build(ctx, "nobody", week)
	if err != nil {
		t.Fatalf("Build empty: %v", err)
	}
	if empty.PeakDay != "Mon" || empty.PeakDayHours != 0 || empty.TotalHours != 0 {
		t.Errorf("empty week = %+v", empty)
	}

	e.recordWeek(t, "u1", week, []float64{1, 3, 2, 3, 0, 0, 3})
	tied, err := e.builder.Build(ctx, "u1", week)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tied.PeakDay != "Tue" || tied.PeakDayHours != 3 {
		t.Errorf("tie should go to the earliest day, got %s %v", tied.PeakDay, tied.PeakDayHours)
	}
}

func TestWeeklySummaryBuilder_MarksIncompleteDays(t *testing.T) {
	// Thursday afternoon of the week
	e := newTestEngine(t, time.Date(2025, 1, 9, 15, 0, 0, 0, time.UTC))
	e.recordWeek(t, "u1", week, []float64{1, 1, 1, 1})

	series, err := e.builder.BuildSeries(context.Background(), "u1", week)
	if err != nil {
		t.Fatalf("BuildSeries: %v", err)
	}
	for i, d := range series.Days {
		wantComplete := i < 3
		if d.Complete != wantComplete || d.Tracked != wantComplete {
			t.Errorf("day %d complete=%v tracked=%v, want %v", i, d.Complete, d.Tracked, wantComplete)
		}
	}
	if series.Previous.Tracked {
		t.Error("the Sunday before the first event must not be tracked")
	}
}
