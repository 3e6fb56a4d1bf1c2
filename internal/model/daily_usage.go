package model

import "time"

// DailyUsage is the per-(user, day, app) roll-up of usage events. Date is the calendar day
// in the user's timezone, formatted as util.DateFormat.
type DailyUsage struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID       string    `gorm:"size:64;not null;uniqueIndex:idx_daily_usage_user_date_app,priority:1" json:"userId"`
	Date         string    `gorm:"size:10;not null;uniqueIndex:idx_daily_usage_user_date_app,priority:2" json:"date"`
	AppID        string    `gorm:"size:64;not null;uniqueIndex:idx_daily_usage_user_date_app,priority:3" json:"appId"`
	TotalSeconds int64     `gorm:"not null;default:0" json:"totalSeconds"`
	OpenCount    int64     `gorm:"not null;default:0" json:"openCount"`
	EventCount   int64     `gorm:"not null;default:0" json:"eventCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (DailyUsage) TableName() string {
	return "daily_usages"
}
