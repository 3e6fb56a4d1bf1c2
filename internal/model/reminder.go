package model

type ReminderType string

const (
	ReminderMorning   ReminderType = "morning"
	ReminderEvening   ReminderType = "evening"
	ReminderThreshold ReminderType = "threshold"
)

// ReminderSetting 提醒偏好，实际推送由外部提醒服务完成
type ReminderSetting struct {
	BaseModel
	UserID  string       `gorm:"size:64;not null;uniqueIndex:idx_reminder_user_type,priority:1" json:"-"`
	Type    ReminderType `gorm:"size:16;not null;uniqueIndex:idx_reminder_user_type,priority:2" json:"type"`
	Enabled bool         `gorm:"not null" json:"enabled"`
	Message string       `gorm:"size:255" json:"message"`
	// Time is "HH:MM" in the user's timezone; empty for the threshold reminder.
	Time string `gorm:"size:5" json:"time,omitempty"`
}

func (ReminderSetting) TableName() string {
	return "reminder_settings"
}

func DefaultReminders() []ReminderSetting {
	return []ReminderSetting{
		{Type: ReminderMorning, Enabled: true, Message: "Good morning! Set your intention for mindful screen time today.", Time: "08:00"},
		{Type: ReminderEvening, Enabled: true, Message: "Time to wind down. How was your screen time today?", Time: "22:00"},
		{Type: ReminderThreshold, Enabled: true, Message: "You have reached your limit for this app today."},
	}
}
