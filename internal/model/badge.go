package model

import "time"

type BadgeID string

const (
	BadgeMindfulMonday     BadgeID = "mindfulMonday"
	BadgeWeekendWarrior    BadgeID = "weekendWarrior"
	BadgeConsistentCheckin BadgeID = "consistentCheckin"
	BadgeDigitalDetox      BadgeID = "digitalDetox"
	BadgeDownwardTrend     BadgeID = "downwardTrend"
)

// BadgeCatalog lists every badge in evaluation order.
var BadgeCatalog = []BadgeID{
	BadgeMindfulMonday,
	BadgeWeekendWarrior,
	BadgeConsistentCheckin,
	BadgeDigitalDetox,
	BadgeDownwardTrend,
}

// EarnedBadge 每个 (user, badge) 最多一行，获得后永不删除
type EarnedBadge struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_earned_badge_user_badge,priority:1" json:"-"`
	BadgeID   BadgeID   `gorm:"size:32;not null;uniqueIndex:idx_earned_badge_user_badge,priority:2" json:"id"`
	EarnedAt  time.Time `gorm:"not null" json:"earnedAt"`
	WeekStart string    `gorm:"size:10" json:"weekStart,omitempty"`
}

func (EarnedBadge) TableName() string {
	return "earned_badges"
}
