package util

import (
	"math"
	"time"
)

var WeekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// StartOfDay returns midnight of t's calendar day in loc. The calendar fields of t are
// taken as-is; its own location is ignored.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayBounds returns [start, end) of the calendar day named by t, in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, start.AddDate(0, 0, 1)
}

func DayKey(t time.Time) string {
	return t.Format(DateFormat)
}

func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, loc)
}

// WeekStart returns the Monday on or before t's calendar day.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, -WeekdayIndex(day))
}

// WeekdayIndex maps Monday..Sunday to 0..6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func SecondsToHours(seconds int64) float64 {
	return float64(seconds) / 3600
}
