package model

// DayHours is one entry of the weekly bar chart.
type DayHours struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// WeeklySummary is derived from DailyUsage on every request and never stored as a source of truth.
type WeeklySummary struct {
	UserID            string     `json:"-"`
	WeekStart         string     `json:"weekStart"`
	TotalHours        float64    `json:"totalHours"`
	DailyAverageHours float64    `json:"dailyAverageHours"`
	PeakDay           string     `json:"peakDay"`
	PeakDayHours      float64    `json:"peakDayHours"`
	DailyBreakdown    []DayHours `json:"dailyBreakdown"`
}
