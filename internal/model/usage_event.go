package model

import "time"

type EventKind string

const (
	EventKindUsage      EventKind = "usage"
	EventKindCorrection EventKind = "correction"
)

const (
	SourceTracking   = "tracking"
	SourceSimulation = "simulation"
)

// UsageEvent 是一次原始的应用使用记录，写入后不可修改
type UsageEvent struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string    `gorm:"size:64;not null;index:idx_usage_events_user_ts,priority:1" json:"userId"`
	AppID           string    `gorm:"size:64;not null;index" json:"appId"`
	Timestamp       time.Time `gorm:"not null;index:idx_usage_events_user_ts,priority:2" json:"timestamp"`
	DurationSeconds int64     `gorm:"not null;default:0" json:"durationSeconds"`
	OpenCountDelta  int64     `gorm:"not null;default:0" json:"openCountDelta"`
	Kind            EventKind `gorm:"size:16;not null;default:usage" json:"kind"`
	Source          string    `gorm:"size:32" json:"source"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (UsageEvent) TableName() string {
	return "usage_events"
}
