package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Engine    EngineConfig    `mapstructure:"engine"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	MigrateOnly bool   `mapstructure:"-"`
	FilePath    string `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	// Path is the SQLite file used when Driver is "sqlite".
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Required bool   `mapstructure:"required"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// EngineConfig tunes aggregation, badge evaluation and threshold signalling.
type EngineConfig struct {
	DefaultTimezone          string `mapstructure:"default_timezone"`
	ClockSkewSeconds         int    `mapstructure:"clock_skew_seconds"`
	MondayHistoryWeeks       int    `mapstructure:"monday_history_weeks"`
	QueryPageSize            int    `mapstructure:"query_page_size"`
	CacheTTLSeconds          int    `mapstructure:"cache_ttl_seconds"`
	RecomputeIntervalMinutes int    `mapstructure:"recompute_interval_minutes"`
	RecomputeConcurrency     int    `mapstructure:"recompute_concurrency"`
	ThresholdChannel         string `mapstructure:"threshold_channel"`
	DefaultUserID            string `mapstructure:"default_user_id"`
}

func (e EngineConfig) ClockSkew() time.Duration {
	return time.Duration(e.ClockSkewSeconds) * time.Second
}

func (e EngineConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLSeconds) * time.Second
}

func (e EngineConfig) RecomputeInterval() time.Duration {
	return time.Duration(e.RecomputeIntervalMinutes) * time.Minute
}

// Default returns the configuration used when no file overrides a key.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Mode: "debug"},
		Database: DatabaseConfig{
			Driver:    "sqlite",
			Host:      "127.0.0.1",
			Port:      3306,
			Charset:   "utf8mb4",
			ParseTime: true,
			Path:      "data/screen_balance.db",
		},
		Redis:     RedisConfig{Host: "127.0.0.1", Port: 6379},
		RateLimit: RateLimitConfig{MaxRequests: 600, WindowMinutes: 1},
		Log: LogConfig{
			Level:      "info",
			Path:       "logs/app.log",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Engine: EngineConfig{
			DefaultTimezone:          "UTC",
			ClockSkewSeconds:         120,
			MondayHistoryWeeks:       4,
			QueryPageSize:            500,
			CacheTTLSeconds:          300,
			RecomputeIntervalMinutes: 60,
			RecomputeConcurrency:     4,
			ThresholdChannel:         "threshold_crossed",
			DefaultUserID:            "local",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.charset", d.Database.Charset)
	v.SetDefault("database.parsetime", d.Database.ParseTime)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)
	v.SetDefault("rate_limit.max_requests", d.RateLimit.MaxRequests)
	v.SetDefault("rate_limit.window_minutes", d.RateLimit.WindowMinutes)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("engine.default_timezone", d.Engine.DefaultTimezone)
	v.SetDefault("engine.clock_skew_seconds", d.Engine.ClockSkewSeconds)
	v.SetDefault("engine.monday_history_weeks", d.Engine.MondayHistoryWeeks)
	v.SetDefault("engine.query_page_size", d.Engine.QueryPageSize)
	v.SetDefault("engine.cache_ttl_seconds", d.Engine.CacheTTLSeconds)
	v.SetDefault("engine.recompute_interval_minutes", d.Engine.RecomputeIntervalMinutes)
	v.SetDefault("engine.recompute_concurrency", d.Engine.RecomputeConcurrency)
	v.SetDefault("engine.threshold_channel", d.Engine.ThresholdChannel)
	v.SetDefault("engine.default_user_id", d.Engine.DefaultUserID)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SCREEN_BALANCE")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.path", "DATABASE_PATH")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时使用默认值 + 环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.FilePath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode)
	}
	if _, err := time.LoadLocation(c.Engine.DefaultTimezone); err != nil {
		return fmt.Errorf("engine.default_timezone %q: %w", c.Engine.DefaultTimezone, err)
	}
	if c.Engine.ClockSkewSeconds < 0 {
		return fmt.Errorf("engine.clock_skew_seconds must not be negative")
	}
	if c.Engine.QueryPageSize <= 0 {
		return fmt.Errorf("engine.query_page_size must be positive")
	}
	if c.Engine.RecomputeConcurrency <= 0 {
		return fmt.Errorf("engine.recompute_concurrency must be positive")
	}
	if c.Database.Driver != "mysql" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && c.JWT.Required && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	return nil
}
