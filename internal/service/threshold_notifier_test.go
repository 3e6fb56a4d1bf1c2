package service

import (
	"context"
	"testing"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"
)

func TestThresholdNotifier_FiresOncePerDay(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	err := e.appLimits.Save(ctx, "u1", map[string]AppSettingInput{
		"instagram": {Enabled: true, DailyLimit: intPtr(60), OpenLimit: intPtr(0)},
	})
	if err != nil {
		t.Fatalf("Save limits: %v", err)
	}

	track := func(action string, seconds int64) *TrackResult {
		t.Helper()
		res, err := e.usage.Track(ctx, "u1", TrackRequest{Action: action, AppID: "instagram", DurationSeconds: int64Ptr(seconds)})
		if err != nil {
			t.Fatalf("Track(%s, %d): %v", action, seconds, err)
		}
		return res
	}

	if res := track(ActionTimeSpent, 59*60); len(res.Thresholds) != 0 {
		t.Fatalf("59 minutes must not cross a 60 minute limit: %+v", res.Thresholds)
	}

	e.now = e.now.Add(time.Minute)
	res := track(ActionTimeSpent, 2*60)
	if len(res.Thresholds) != 1 {
		t.Fatalf("expected exactly one crossing, got %+v", res.Thresholds)
	}
	crossing := res.Thresholds[0]
	if crossing.Kind != model.ThresholdTimeLimit || crossing.ObservedValue != 61*60 || crossing.LimitValue != 3600 {
		t.Errorf("crossing = %+v", crossing)
	}
	if crossing.Date != "2025-01-08" || !crossing.CrossedAt.Equal(e.now) {
		t.Errorf("crossing recorded on %s at %v", crossing.Date, crossing.CrossedAt)
	}

	// dropping below and crossing again the same day stays silent
	if res := track(ActionCorrection, -600); len(res.Thresholds) != 0 {
		t.Errorf("correction fired %+v", res.Thresholds)
	}
	if res := track(ActionTimeSpent, 900); len(res.Thresholds) != 0 {
		t.Errorf("second crossing on the same day fired %+v", res.Thresholds)
	}

	stored, err := e.notifier.List(ctx, "u1", "2025-01-08")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("expected one stored crossing, got %d", len(stored))
	}
}

func TestThresholdNotifier_OpenLimit(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	err := e.appLimits.Save(ctx, "u1", map[string]AppSettingInput{
		"youtube": {Enabled: true, DailyLimit: intPtr(0), OpenLimit: intPtr(2)},
	})
	if err != nil {
		t.Fatalf("Save limits: %v", err)
	}

	first, err := e.usage.Track(ctx, "u1", TrackRequest{Action: ActionAppOpened, AppID: "youtube"})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if len(first.Thresholds) != 0 {
		t.Fatalf("first open fired %+v", first.Thresholds)
	}

	second, err := e.usage.Track(ctx, "u1", TrackRequest{Action: ActionAppOpened, AppID: "youtube"})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if len(second.Thresholds) != 1 || second.Thresholds[0].Kind != model.ThresholdOpenLimit || second.Thresholds[0].ObservedValue != 2 {
		t.Errorf("second open = %+v", second.Thresholds)
	}
}

func TestThresholdNotifier_DisabledAppNeverFires(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	err := e.appLimits.Save(ctx, "u1", map[string]AppSettingInput{
		"tiktok": {Enabled: false, DailyLimit: intPtr(1)},
	})
	if err != nil {
		t.Fatalf("Save limits: %v", err)
	}
	res, err := e.usage.Track(ctx, "u1", TrackRequest{Action: ActionTimeSpent, AppID: "tiktok", DurationSeconds: int64Ptr(3600)})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if len(res.Thresholds) != 0 {
		t.Errorf("disabled app fired %+v", res.Thresholds)
	}
}

func TestThresholdNotifier_ListAndAcknowledge(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := e.notifier.List(ctx, "u1", "08/01/2025"); !util.IsValidation(err) {
		t.Errorf("expected ValidationError for a bad date, got %v", err)
	}

	err := e.appLimits.Save(ctx, "u1", map[string]AppSettingInput{
		"instagram": {Enabled: true, DailyLimit: intPtr(1)},
	})
	if err != nil {
		t.Fatalf("Save limits: %v", err)
	}
	if _, err := e.usage.Track(ctx, "u1", TrackRequest{Action: ActionTimeSpent, AppID: "instagram", DurationSeconds: int64Ptr(60)}); err != nil {
		t.Fatalf("Track: %v", err)
	}

	all, err := e.notifier.List(ctx, "u1", "")
	if err != nil || len(all) != 1 {
		t.Fatalf("List = %+v, %v", all, err)
	}

	if _, err := e.notifier.Acknowledge(ctx, "u2", all[0].ID); !util.IsNotFound(err) {
		t.Errorf("acknowledging another user's crossing: %v", err)
	}
	acked, err := e.notifier.Acknowledge(ctx, "u1", all[0].ID)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if acked.AcknowledgedAt == nil || !acked.AcknowledgedAt.Equal(e.now) {
		t.Errorf("AcknowledgedAt = %v", acked.AcknowledgedAt)
	}
}
