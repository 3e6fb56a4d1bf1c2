package model

// AppLimitConfig 用户对单个应用的限制配置；0 表示该项不限制
type AppLimitConfig struct {
	BaseModel
	UserID            string `gorm:"size:64;not null;uniqueIndex:idx_app_limit_user_app,priority:1" json:"-"`
	AppID             string `gorm:"size:64;not null;uniqueIndex:idx_app_limit_user_app,priority:2" json:"app_id"`
	Enabled           bool   `gorm:"not null;default:false" json:"enabled"`
	DailyLimitMinutes int    `gorm:"not null;default:0" json:"daily_limit_minutes"`
	DailyOpenLimit    int    `gorm:"not null;default:0" json:"daily_open_limit"`
}

func (AppLimitConfig) TableName() string {
	return "app_limit_configs"
}

// DefaultAppCatalog is the set of apps the client offers before the user saves anything.
var DefaultAppCatalog = []AppLimitConfig{
	{AppID: "instagram", DailyLimitMinutes: 60, DailyOpenLimit: 10},
	{AppID: "facebook", DailyLimitMinutes: 45, DailyOpenLimit: 8},
	{AppID: "twitter", DailyLimitMinutes: 30, DailyOpenLimit: 15},
	{AppID: "tiktok", DailyLimitMinutes: 90, DailyOpenLimit: 20},
	{AppID: "youtube", DailyLimitMinutes: 120, DailyOpenLimit: 12},
	{AppID: "linkedin", DailyLimitMinutes: 30, DailyOpenLimit: 5},
	{AppID: "twitch", DailyLimitMinutes: 180, DailyOpenLimit: 6},
	{AppID: "kick", DailyLimitMinutes: 120, DailyOpenLimit: 8},
}
