package service

import (
	"context"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"
	"screen_balance_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	ActionAppOpened  = "app_opened"
	ActionTimeSpent  = "time_spent"
	ActionCorrection = "correction"
)

type TrackRequest struct {
	Action          string     `json:"action" binding:"required"`
	AppID           string     `json:"appId" binding:"required"`
	DurationSeconds *int64     `json:"durationSeconds"`
	OpenCount       *int64     `json:"openCount"`
	Timestamp       *time.Time `json:"timestamp"`
}

type TrackResult struct {
	Event      model.UsageEvent              `json:"event"`
	Thresholds []model.ThresholdNotification `json:"thresholds"`
}

// UsageService is the ingestion pipeline: record, re-aggregate the event's day, check limits.
type UsageService struct {
	Events     *EventStore
	Aggregator *DailyAggregator
	Notifier   *ThresholdNotifier
	Settings   *UserSettingsService
	Cache      *DashboardCache
}

func NewUsageService(events *EventStore, aggregator *DailyAggregator, notifier *ThresholdNotifier, settings *UserSettingsService, cache *DashboardCache) *UsageService {
	return &UsageService{
		Events:     events,
		Aggregator: aggregator,
		Notifier:   notifier,
		Settings:   settings,
		Cache:      cache,
	}
}

func (s *UsageService) Track(ctx context.Context, userID string, req TrackRequest) (*TrackResult, error) {
	event := &model.UsageEvent{UserID: userID, AppID: req.AppID, Source: model.SourceTracking}
	if req.Timestamp != nil {
		event.Timestamp = *req.Timestamp
	}

	var err error
	switch req.Action {
	case ActionAppOpened:
		event.OpenCountDelta = 1
		if req.OpenCount != nil {
			event.OpenCountDelta = *req.OpenCount
		}
		if req.DurationSeconds != nil {
			event.DurationSeconds = *req.DurationSeconds
		}
		err = s.Events.Record(ctx, event)
	case ActionTimeSpent:
		if req.DurationSeconds == nil || *req.DurationSeconds <= 0 {
			return nil, util.NewValidationError("durationSeconds", "must be positive for time_spent")
		}
		event.DurationSeconds = *req.DurationSeconds
		err = s.Events.Record(ctx, event)
	case ActionCorrection:
		if req.DurationSeconds != nil {
			event.DurationSeconds = *req.DurationSeconds
		}
		if req.OpenCount != nil {
			event.OpenCountDelta = *req.OpenCount
		}
		err = s.Events.RecordCorrection(ctx, event)
	default:
		return nil, util.NewValidationError("action", "unsupported action "+req.Action)
	}
	if err != nil {
		return nil, err
	}

	result := &TrackResult{Event: *event}
	result.Thresholds = s.settle(ctx, event)
	return result, nil
}

// settle re-derives the event's day. The event is already stored, so failures here are only
// logged; the next dashboard pass or recompute run repairs the roll-up.
func (s *UsageService) settle(ctx context.Context, event *model.UsageEvent) []model.ThresholdNotification {
	defer s.Cache.Invalidate(ctx, event.UserID)

	loc, err := s.Settings.Location(ctx, event.UserID)
	if err != nil {
		logger.Log.Warn("load user timezone failed", zap.String("userID", event.UserID), zap.Error(err))
		return nil
	}
	day := event.Timestamp.In(loc)

	if _, err := s.Aggregator.aggregateIn(ctx, event.UserID, day, loc); err != nil {
		logger.Log.Warn("aggregate after ingest failed",
			zap.String("userID", event.UserID),
			zap.String("date", util.DayKey(day)),
			zap.Error(err))
		return nil
	}

	fired, err := s.Notifier.CheckThresholds(ctx, event.UserID, day)
	if err != nil {
		logger.Log.Warn("threshold check failed",
			zap.String("userID", event.UserID),
			zap.String("date", util.DayKey(day)),
			zap.Error(err))
	}
	return fired
}
