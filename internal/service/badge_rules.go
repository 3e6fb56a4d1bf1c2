package service

import (
	"screen_balance_backend/internal/model"
)

// RuleInput is everything a badge rule may look at. Rules never touch the store.
type RuleInput struct {
	Series *WeekSeries
	// Limits holds the user's enabled app limits.
	Limits []model.AppLimitConfig
	// MondayHistory holds the hours of earlier tracked Mondays, newest first.
	MondayHistory []float64
}

type BadgeRule func(in *RuleInput) bool

var badgeRules = map[model.BadgeID]BadgeRule{
	model.BadgeMindfulMonday:     mindfulMonday,
	model.BadgeWeekendWarrior:    weekendWarrior,
	model.BadgeConsistentCheckin: consistentCheckin,
	model.BadgeDigitalDetox:      digitalDetox,
	model.BadgeDownwardTrend:     downwardTrend,
}

// RuleFor returns the rule bound to a catalog badge.
func RuleFor(id model.BadgeID) (BadgeRule, bool) {
	rule, ok := badgeRules[id]
	return rule, ok
}

// Monday below the average of earlier Mondays, or below the week's own average without history.
func mindfulMonday(in *RuleInput) bool {
	monday := in.Series.Days[0]
	if !monday.Tracked {
		return false
	}
	if len(in.MondayHistory) == 0 {
		return in.Series.Summary.DailyBreakdown[0].Hours < in.Series.Summary.DailyAverageHours
	}

	var sum float64
	for _, h := range in.MondayHistory {
		sum += h
	}
	return monday.Hours() < sum/float64(len(in.MondayHistory))
}

// Saturday and Sunday each below the sum of the enabled apps' daily limits.
func weekendWarrior(in *RuleInput) bool {
	var limitMinutes int64
	for _, l := range in.Limits {
		if l.Enabled {
			limitMinutes += int64(l.DailyLimitMinutes)
		}
	}
	if limitMinutes <= 0 {
		return false
	}

	limit := limitMinutes * 60
	for _, d := range in.Series.Days[5:] {
		if !d.Tracked || d.Seconds >= limit {
			return false
		}
	}
	return true
}

func consistentCheckin(in *RuleInput) bool {
	for _, d := range in.Series.Days {
		if d.EventCount == 0 {
			return false
		}
	}
	return true
}

// A whole day with every time-limited app within its limit.
func digitalDetox(in *RuleInput) bool {
	var limited []model.AppLimitConfig
	for _, l := range in.Limits {
		if l.Enabled && l.DailyLimitMinutes > 0 {
			limited = append(limited, l)
		}
	}
	if len(limited) == 0 {
		return false
	}

	for _, d := range in.Series.Days {
		if !d.Tracked {
			continue
		}
		within := true
		for _, l := range limited {
			if d.Apps[l.AppID] > int64(l.DailyLimitMinutes)*60 {
				within = false
				break
			}
		}
		if within {
			return true
		}
	}
	return false
}

// Three day-over-day decreases in a row, starting as early as the Sunday before the week.
func downwardTrend(in *RuleInput) bool {
	days := make([]DaySeries, 0, 8)
	days = append(days, in.Series.Previous)
	days = append(days, in.Series.Days[:]...)

	run := 0
	for i := 1; i < len(days); i++ {
		prev, cur := days[i-1], days[i]
		if prev.Tracked && cur.Tracked && cur.Seconds < prev.Seconds {
			run++
			if run >= 3 {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}
