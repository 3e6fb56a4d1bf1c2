package service

import (
	"context"
	"iter"
	"regexp"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/util"
	"screen_balance_backend/pkg/monitoring"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.:@-]{1,64}$`)

// EventStore is the append-only log of usage events.
type EventStore struct {
	EventRepo *repository.UsageEventRepository
	Options   *EngineOptions
}

func NewEventStore(eventRepo *repository.UsageEventRepository, opts *EngineOptions) *EventStore {
	return &EventStore{EventRepo: eventRepo, Options: opts}
}

// Record validates and appends a usage event. Nothing is stored when validation fails.
func (s *EventStore) Record(ctx context.Context, event *model.UsageEvent) error {
	event.Kind = model.EventKindUsage
	if event.DurationSeconds < 0 {
		return util.NewValidationError("duration_seconds", "must not be negative")
	}
	if event.OpenCountDelta < 0 {
		return util.NewValidationError("open_count_delta", "must not be negative")
	}
	return s.append(ctx, event)
}

// RecordCorrection appends a compensating event. Negative deltas are allowed here and only here.
func (s *EventStore) RecordCorrection(ctx context.Context, event *model.UsageEvent) error {
	event.Kind = model.EventKindCorrection
	return s.append(ctx, event)
}

func (s *EventStore) append(ctx context.Context, event *model.UsageEvent) error {
	if err := ValidateIdentifier("user_id", event.UserID); err != nil {
		return err
	}
	if err := ValidateIdentifier("app_id", event.AppID); err != nil {
		return err
	}
	if event.DurationSeconds == 0 && event.OpenCountDelta == 0 {
		return util.NewValidationError("event", "carries neither duration nor opens")
	}

	now := s.Options.now()
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	if event.Timestamp.After(now.Add(s.Options.ClockSkew)) {
		return util.NewValidationError("timestamp", "is in the future")
	}

	// 统一存 UTC，毫秒精度（MySQL datetime(3)）
	event.Timestamp = event.Timestamp.UTC().Truncate(time.Millisecond)
	if event.ID == "" {
		event.ID = model.GenerateUUID()
	}
	if event.Source == "" {
		event.Source = model.SourceTracking
	}

	err := util.WithRetry(ctx, nil, "EventStore.Record", func() error {
		return s.EventRepo.Create(ctx, event)
	})
	if err != nil {
		return err
	}

	monitoring.EventsRecorded.WithLabelValues(string(event.Kind), event.Source).Inc()
	return nil
}

// Query returns the user's events in [from, to) ordered by timestamp. The sequence is lazy:
// pages are fetched as the caller ranges over it, and ranging again starts a fresh read.
// An empty appID matches every app.
func (s *EventStore) Query(ctx context.Context, userID string, from, to time.Time, appID string) iter.Seq2[model.UsageEvent, error] {
	filter := repository.EventFilter{UserID: userID, From: from, To: to, AppID: appID}
	pageSize := s.Options.QueryPageSize
	if pageSize <= 0 {
		pageSize = 500
	}

	return func(yield func(model.UsageEvent, error) bool) {
		var cursor *repository.EventCursor
		for {
			var page []model.UsageEvent
			err := util.WithRetry(ctx, nil, "EventStore.Query", func() error {
				var err error
				page, err = s.EventRepo.ListPage(ctx, filter, cursor, pageSize)
				return err
			})
			if err != nil {
				yield(model.UsageEvent{}, err)
				return
			}

			for _, event := range page {
				if !yield(event, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			last := page[len(page)-1]
			cursor = &repository.EventCursor{Timestamp: last.Timestamp, ID: last.ID}
		}
	}
}

// FirstEventAt returns when the user's history starts; ok is false for a user without events.
func (s *EventStore) FirstEventAt(ctx context.Context, userID string) (time.Time, bool, error) {
	return s.EventRepo.FirstEventAt(ctx, userID)
}

func (s *EventStore) DistinctUsers(ctx context.Context) ([]string, error) {
	return s.EventRepo.DistinctUserIDs(ctx)
}

func ValidateIdentifier(field, value string) error {
	if value == "" {
		return util.NewValidationError(field, "is required")
	}
	if !identifierPattern.MatchString(value) {
		return util.NewValidationError(field, "contains unsupported characters")
	}
	return nil
}
