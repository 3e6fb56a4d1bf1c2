package model

import "time"

type UserSettings struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"userId"`
	Timezone  string    `gorm:"size:64;not null" json:"timezone"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}
