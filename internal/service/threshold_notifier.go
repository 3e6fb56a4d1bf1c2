package service

import (
	"context"
	"encoding/json"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/util"
	"screen_balance_backend/pkg/logger"
	"screen_balance_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ThresholdNotifier records the first crossing of each per-app limit per day. It only leaves
// records behind; delivering them is the reminder collaborator's job.
type ThresholdNotifier struct {
	LimitRepo     *repository.AppLimitRepository
	DailyRepo     *repository.DailyUsageRepository
	ThresholdRepo *repository.ThresholdRepository
	ReminderRepo  *repository.ReminderRepository
	Redis         *redis.Client
	Options       *EngineOptions
}

func NewThresholdNotifier(
	limitRepo *repository.AppLimitRepository,
	dailyRepo *repository.DailyUsageRepository,
	thresholdRepo *repository.ThresholdRepository,
	reminderRepo *repository.ReminderRepository,
	rdb *redis.Client,
	opts *EngineOptions,
) *ThresholdNotifier {
	return &ThresholdNotifier{
		LimitRepo:     limitRepo,
		DailyRepo:     dailyRepo,
		ThresholdRepo: thresholdRepo,
		ReminderRepo:  reminderRepo,
		Redis:         rdb,
		Options:       opts,
	}
}

// CheckThresholds compares the day's roll-up with every enabled limit and returns the crossings
// that fired in this call. A crossing already recorded for the day never fires again, even if
// usage dropped below the limit in between.
func (n *ThresholdNotifier) CheckThresholds(ctx context.Context, userID string, day time.Time) ([]model.ThresholdNotification, error) {
	limits, err := n.LimitRepo.FindEnabled(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(limits) == 0 {
		return nil, nil
	}

	date := util.DayKey(day)
	rows, err := n.DailyRepo.FindByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	usage := make(map[string]model.DailyUsage, len(rows))
	for _, row := range rows {
		usage[row.AppID] = row
	}

	now := n.Options.now().UTC()
	var fired []model.ThresholdNotification
	for _, l := range limits {
		row, ok := usage[l.AppID]
		if !ok {
			continue
		}

		var candidates []model.ThresholdNotification
		if limit := int64(l.DailyLimitMinutes) * 60; limit > 0 && row.TotalSeconds >= limit {
			candidates = append(candidates, model.ThresholdNotification{
				Kind: model.ThresholdTimeLimit, LimitValue: limit, ObservedValue: row.TotalSeconds,
			})
		}
		if limit := int64(l.DailyOpenLimit); limit > 0 && row.OpenCount >= limit {
			candidates = append(candidates, model.ThresholdNotification{
				Kind: model.ThresholdOpenLimit, LimitValue: limit, ObservedValue: row.OpenCount,
			})
		}

		for _, c := range candidates {
			c.UserID = userID
			c.AppID = l.AppID
			c.Date = date
			c.CrossedAt = now

			created, err := n.ThresholdRepo.CreateIfAbsent(ctx, &c)
			if err != nil {
				return fired, err
			}
			if !created {
				continue
			}
			fired = append(fired, c)
			monitoring.ThresholdsCrossed.WithLabelValues(string(c.Kind)).Inc()
			logger.Log.Info("threshold crossed",
				zap.String("userID", userID),
				zap.String("appID", c.AppID),
				zap.String("kind", string(c.Kind)),
				zap.Int64("limit", c.LimitValue),
				zap.Int64("observed", c.ObservedValue))
		}
	}

	if len(fired) > 0 {
		n.publish(ctx, userID, fired)
	}
	return fired, nil
}

func (n *ThresholdNotifier) List(ctx context.Context, userID, date string) ([]model.ThresholdNotification, error) {
	if date != "" {
		if _, err := util.ParseDay(date, time.UTC); err != nil {
			return nil, util.NewValidationError("date", "must be YYYY-MM-DD")
		}
	}
	return n.ThresholdRepo.FindByUser(ctx, userID, date)
}

func (n *ThresholdNotifier) Acknowledge(ctx context.Context, userID string, id uint) (*model.ThresholdNotification, error) {
	return n.ThresholdRepo.Acknowledge(ctx, userID, id, n.Options.now().UTC())
}

// publish hands fresh crossings to the reminder collaborator over Redis pub/sub when the user
// keeps threshold reminders on. The stored records stay the source of truth either way.
func (n *ThresholdNotifier) publish(ctx context.Context, userID string, fired []model.ThresholdNotification) {
	if n.Redis == nil || n.Options.ThresholdChannel == "" {
		return
	}

	enabled, err := n.thresholdReminderEnabled(ctx, userID)
	if err != nil {
		logger.Log.Warn("load reminder settings failed", zap.String("userID", userID), zap.Error(err))
		return
	}
	if !enabled {
		return
	}

	for _, f := range fired {
		payload, err := json.Marshal(f)
		if err != nil {
			continue
		}
		if err := n.Redis.Publish(ctx, n.Options.ThresholdChannel, payload).Err(); err != nil {
			logger.Log.Warn("publish threshold crossing failed",
				zap.String("userID", userID),
				zap.String("appID", f.AppID),
				zap.Error(err))
		}
	}
}

func (n *ThresholdNotifier) thresholdReminderEnabled(ctx context.Context, userID string) (bool, error) {
	items, err := n.ReminderRepo.FindByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.Type == model.ReminderThreshold {
			return item.Enabled, nil
		}
	}
	// 用户没保存过提醒设置时默认开启
	return true, nil
}
