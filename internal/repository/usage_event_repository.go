package repository

import (
	"context"
	"errors"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageEventRepository struct {
	DB *gorm.DB
}

func NewUsageEventRepository(db *gorm.DB) *UsageEventRepository {
	return &UsageEventRepository{DB: db}
}

// EventFilter selects events of one user in [From, To), optionally for one app.
type EventFilter struct {
	UserID string
	From   time.Time
	To     time.Time
	AppID  string
}

// EventCursor is the (timestamp, id) position of the last event already read.
type EventCursor struct {
	Timestamp time.Time
	ID        string
}

// Create 追加一条事件；没有更新和删除接口。
// 按 id 幂等：连接断开后重试时，已提交的同一事件不会报主键冲突
func (r *UsageEventRepository) Create(ctx context.Context, event *model.UsageEvent) error {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(event).Error
	return util.ClassifyStoreError("UsageEventRepository.Create", err)
}

// ListPage returns up to limit events ordered by (timestamp, id), strictly after cursor.
func (r *UsageEventRepository) ListPage(ctx context.Context, f EventFilter, after *EventCursor, limit int) ([]model.UsageEvent, error) {
	q := r.DB.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", f.UserID, f.From.UTC(), f.To.UTC())
	if f.AppID != "" {
		q = q.Where("app_id = ?", f.AppID)
	}
	if after != nil {
		ts := after.Timestamp.UTC()
		q = q.Where("(timestamp > ? OR (timestamp = ? AND id > ?))", ts, ts, after.ID)
	}

	var events []model.UsageEvent
	err := q.Order("timestamp ASC").Order("id ASC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, util.ClassifyStoreError("UsageEventRepository.ListPage", err)
	}
	return events, nil
}

// FirstEventAt returns the timestamp of the user's earliest event; ok is false when the
// user has none.
func (r *UsageEventRepository) FirstEventAt(ctx context.Context, userID string) (time.Time, bool, error) {
	var event model.UsageEvent
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp ASC").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, util.ClassifyStoreError("UsageEventRepository.FirstEventAt", err)
	}
	return event.Timestamp, true, nil
}

// DistinctUserIDs lists every user that has recorded at least one event.
func (r *UsageEventRepository) DistinctUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).
		Model(&model.UsageEvent{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, util.ClassifyStoreError("UsageEventRepository.DistinctUserIDs", err)
	}
	return ids, nil
}
