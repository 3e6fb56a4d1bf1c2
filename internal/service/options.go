package service

import (
	"time"

	"screen_balance_backend/internal/config"
)

// EngineOptions are the knobs shared by the aggregation and evaluation services.
type EngineOptions struct {
	ClockSkew          time.Duration
	DefaultLocation    *time.Location
	MondayHistoryWeeks int
	QueryPageSize      int
	CacheTTL           time.Duration
	ThresholdChannel   string
	// Now is the engine clock; tests pin it.
	Now func() time.Time
}

func NewEngineOptions(cfg config.EngineConfig) (*EngineOptions, error) {
	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		return nil, err
	}
	return &EngineOptions{
		ClockSkew:          cfg.ClockSkew(),
		DefaultLocation:    loc,
		MondayHistoryWeeks: cfg.MondayHistoryWeeks,
		QueryPageSize:      cfg.QueryPageSize,
		CacheTTL:           cfg.CacheTTL(),
		ThresholdChannel:   cfg.ThresholdChannel,
		Now:                time.Now,
	}, nil
}

func (o *EngineOptions) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
