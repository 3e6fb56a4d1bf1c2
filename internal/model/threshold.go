package model

import "time"

type ThresholdKind string

const (
	ThresholdTimeLimit ThresholdKind = "time_limit"
	ThresholdOpenLimit ThresholdKind = "open_limit"
)

// ThresholdNotification records the first crossing of one limit for one app on one day.
// The unique key is what makes the signal edge-triggered.
type ThresholdNotification struct {
	ID             uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         string        `gorm:"size:64;not null;uniqueIndex:idx_threshold_user_app_date_kind,priority:1" json:"userId"`
	AppID          string        `gorm:"size:64;not null;uniqueIndex:idx_threshold_user_app_date_kind,priority:2" json:"appId"`
	Date           string        `gorm:"size:10;not null;uniqueIndex:idx_threshold_user_app_date_kind,priority:3" json:"date"`
	Kind           ThresholdKind `gorm:"size:16;not null;uniqueIndex:idx_threshold_user_app_date_kind,priority:4" json:"kind"`
	LimitValue     int64         `gorm:"not null" json:"limit"`
	ObservedValue  int64         `gorm:"not null" json:"observed"`
	CrossedAt      time.Time     `gorm:"not null" json:"crossedAt"`
	AcknowledgedAt *time.Time    `json:"acknowledgedAt,omitempty"`
}

func (ThresholdNotification) TableName() string {
	return "threshold_notifications"
}
