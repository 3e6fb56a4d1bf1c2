package service

import (
	"context"
	"testing"
	"time"

	"screen_balance_backend/internal/model"
)

type rowKey struct {
	app                  string
	seconds, opens, seen int64
}

func keys(rows []model.DailyUsage) []rowKey {
	out := make([]rowKey, len(rows))
	for i, r := range rows {
		out[i] = rowKey{r.AppID, r.TotalSeconds, r.OpenCount, r.EventCount}
	}
	return out
}

func TestDailyAggregator_IsIdempotent(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	e.record(t, "u1", "youtube", day.Add(9*time.Hour), 1200, 1)
	e.record(t, "u1", "instagram", day.Add(10*time.Hour), 300, 1)
	e.record(t, "u1", "instagram", day.Add(11*time.Hour), 600, 2)
	e.record(t, "u1", "instagram", day.Add(23*time.Hour+59*time.Minute), 60, 0)
	// next day, must not leak in
	e.record(t, "u1", "instagram", day.Add(24*time.Hour), 999, 9)
	// other user
	e.record(t, "u2", "instagram", day.Add(10*time.Hour), 777, 7)

	first, err := e.aggregator.Aggregate(ctx, "u1", day)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	second, err := e.aggregator.Aggregate(ctx, "u1", day)
	if err != nil {
		t.Fatalf("Aggregate again: %v", err)
	}

	want := []rowKey{
		{"instagram", 960, 3, 3},
		{"youtube", 1200, 1, 1},
	}
	for name, got := range map[string][]model.DailyUsage{"first": first, "second": second} {
		k := keys(got)
		if len(k) != len(want) {
			t.Fatalf("%s run: got %+v, want %+v", name, k, want)
		}
		for i := range want {
			if k[i] != want[i] {
				t.Fatalf("%s run: got %+v, want %+v", name, k, want)
			}
		}
	}

	stored, err := e.dailyRepo.FindByDate(ctx, "u1", "2025-01-06")
	if err != nil {
		t.Fatalf("FindByDate: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected exactly 2 stored rows after two runs, got %d", len(stored))
	}
}

func TestDailyAggregator_UsesUserTimezone(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := e.settings.UpdateTimezone(ctx, "u1", "America/New_York"); err != nil {
		t.Fatalf("UpdateTimezone: %v", err)
	}
	// 22:00 on Jan 6 in New York
	e.record(t, "u1", "instagram", time.Date(2025, 1, 7, 3, 0, 0, 0, time.UTC), 600, 1)

	mon, err := e.aggregator.Aggregate(ctx, "u1", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Aggregate Jan 6: %v", err)
	}
	if len(mon) != 1 || mon[0].TotalSeconds != 600 || mon[0].Date != "2025-01-06" {
		t.Errorf("Jan 6 rows = %+v", mon)
	}

	tue, err := e.aggregator.Aggregate(ctx, "u1", time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Aggregate Jan 7: %v", err)
	}
	if len(tue) != 0 {
		t.Errorf("event must be attributed to exactly one day, Jan 7 rows = %+v", tue)
	}
}

func TestDailyAggregator_ClampsCorrections(t *testing.T) {
	now := time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)
	ctx := context.Background()

	e.record(t, "u1", "instagram", now.Add(-2*time.Hour), 600, 1)
	if err := e.events.RecordCorrection(ctx, &model.UsageEvent{
		UserID: "u1", AppID: "instagram", Timestamp: now.Add(-time.Hour), DurationSeconds: -1000, OpenCountDelta: -3,
	}); err != nil {
		t.Fatalf("RecordCorrection: %v", err)
	}

	rows, err := e.aggregator.Aggregate(ctx, "u1", now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].TotalSeconds != 0 || rows[0].OpenCount != 0 || rows[0].EventCount != 2 {
		t.Errorf("expected totals clamped to zero with 2 events, got %+v", rows[0])
	}
}

func TestDailyAggregator_CancelledPassWritesNothing(t *testing.T) {
	now := time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)

	e.record(t, "u1", "instagram", now.Add(-time.Hour), 600, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.aggregator.Aggregate(ctx, "u1", now); err == nil {
		t.Fatal("expected an error from a cancelled pass")
	}

	rows, err := e.dailyRepo.FindByDate(context.Background(), "u1", "2025-01-06")
	if err != nil {
		t.Fatalf("FindByDate: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("cancelled pass wrote rows: %+v", rows)
	}
}
