package service

import (
	"testing"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"
)

// seriesOf builds a fully tracked week from per-day seconds, all on instagram.
func seriesOf(prev int64, days ...int64) *WeekSeries {
	s := &WeekSeries{
		Previous: DaySeries{Seconds: prev, EventCount: 1, Complete: true, Tracked: true},
	}
	var d7 [7]DaySeries
	for i := range d7 {
		var sec int64
		if i < len(days) {
			sec = days[i]
		}
		d7[i] = DaySeries{
			Seconds:    sec,
			EventCount: 1,
			Apps:       map[string]int64{"instagram": sec},
			Complete:   true,
			Tracked:    true,
		}
	}
	s.Days = d7
	s.Summary = summarize("u1", week, d7)
	return s
}

func TestBadgeRules_CatalogIsComplete(t *testing.T) {
	for _, id := range model.BadgeCatalog {
		if _, ok := RuleFor(id); !ok {
			t.Errorf("badge %s has no rule", id)
		}
	}
}

func TestMindfulMonday(t *testing.T) {
	h := int64(3600)
	tests := []struct {
		name    string
		series  *WeekSeries
		history []float64
		want    bool
	}{
		{"below history average", seriesOf(0, 2*h, 5*h), []float64{3, 4}, true},
		{"equal to history average", seriesOf(0, 3*h, 5*h), []float64{3, 3}, false},
		{"above history average", seriesOf(0, 5*h, 1*h), []float64{1, 2}, false},
		{"no history, below week average", seriesOf(0, 1*h, 5*h, 5*h, 5*h, 5*h, 5*h, 5*h), nil, true},
		{"no history, above week average", seriesOf(0, 6*h, 1*h), nil, false},
		{"empty week", seriesOf(0), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mindfulMonday(&RuleInput{Series: tt.series, MondayHistory: tt.history})
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	untracked := seriesOf(0, 0, 5*h)
	untracked.Days[0].Tracked = false
	if mindfulMonday(&RuleInput{Series: untracked, MondayHistory: []float64{4}}) {
		t.Error("an untracked Monday must not earn the badge")
	}
}

func TestWeekendWarrior(t *testing.T) {
	limits := []model.AppLimitConfig{
		{AppID: "instagram", Enabled: true, DailyLimitMinutes: 60},
		{AppID: "youtube", Enabled: true, DailyLimitMinutes: 30},
		{AppID: "tiktok", Enabled: false, DailyLimitMinutes: 600},
	}
	// aggregate limit is 90 minutes = 5400s

	tests := []struct {
		name     string
		sat, sun int64
		limits   []model.AppLimitConfig
		want     bool
	}{
		{"both below", 5000, 5399, limits, true},
		{"sunday at limit", 5000, 5400, limits, false},
		{"saturday above", 6000, 100, limits, false},
		{"no enabled limits", 0, 0, limits[2:], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seriesOf(0, 1, 1, 1, 1, 1, tt.sat, tt.sun)
			if got := weekendWarrior(&RuleInput{Series: s, Limits: tt.limits}); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	s := seriesOf(0, 1, 1, 1, 1, 1, 10, 10)
	s.Days[6].Complete, s.Days[6].Tracked = false, false
	if weekendWarrior(&RuleInput{Series: s, Limits: limits}) {
		t.Error("a Sunday still in progress must not earn the badge")
	}
}

func TestConsistentCheckin(t *testing.T) {
	s := seriesOf(0, 1, 1, 1, 1, 1, 1, 1)
	if !consistentCheckin(&RuleInput{Series: s}) {
		t.Error("seven days with events should earn the badge")
	}

	s.Days[2].EventCount = 0
	if consistentCheckin(&RuleInput{Series: s}) {
		t.Error("a missed Wednesday must not earn the badge")
	}

	// events that net to zero still count as a check-in
	s = seriesOf(0, 1, 1, 0, 1, 1, 1, 1)
	if !consistentCheckin(&RuleInput{Series: s}) {
		t.Error("a day with events but zero seconds is still a check-in")
	}
}

func TestDigitalDetox(t *testing.T) {
	limits := []model.AppLimitConfig{
		{AppID: "instagram", Enabled: true, DailyLimitMinutes: 60},
		{AppID: "youtube", Enabled: true, DailyLimitMinutes: 0},
		{AppID: "tiktok", Enabled: false, DailyLimitMinutes: 1},
	}

	over := seriesOf(0, 3601, 3601, 3601, 3601, 3601, 3601, 3601)
	if digitalDetox(&RuleInput{Series: over, Limits: limits}) {
		t.Error("every day over the limit must not earn the badge")
	}

	atLimit := seriesOf(0, 3601, 3600, 3601, 3601, 3601, 3601, 3601)
	if !digitalDetox(&RuleInput{Series: atLimit, Limits: limits}) {
		t.Error("a day exactly at the limit is within it")
	}

	if digitalDetox(&RuleInput{Series: atLimit, Limits: limits[1:]}) {
		t.Error("without a time-limited enabled app the badge cannot be earned")
	}

	untracked := seriesOf(0, 3601, 0, 3601, 3601, 3601, 3601, 3601)
	untracked.Days[1].Tracked = false
	if digitalDetox(&RuleInput{Series: untracked, Limits: limits}) {
		t.Error("an untracked day must not count")
	}
}

func TestDownwardTrend(t *testing.T) {
	tests := []struct {
		name string
		prev int64
		days []int64
		want bool
	}{
		{"starts on previous sunday", 10, []int64{9, 8, 7, 9, 9, 9, 9}, true},
		{"inside the week", 1, []int64{9, 9, 8, 7, 6, 9, 9}, true},
		{"plateau breaks the run", 10, []int64{9, 9, 8, 7, 9, 9, 9}, false},
		{"only two decreases", 5, []int64{4, 3, 3, 3, 3, 3, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := downwardTrend(&RuleInput{Series: seriesOf(tt.prev, tt.days...)}); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	s := seriesOf(10, 9, 8, 7)
	s.Days[2].Tracked = false
	if downwardTrend(&RuleInput{Series: s}) {
		t.Error("an untracked day must break the run")
	}
}

func TestSummarizeLabels(t *testing.T) {
	s := seriesOf(0, 0, 0, 0, 0, 0, 7200)
	if s.Summary.PeakDay != util.WeekdayLabels[5] {
		t.Errorf("PeakDay = %s, want Sat", s.Summary.PeakDay)
	}
}
