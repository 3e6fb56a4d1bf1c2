package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"
)

func TestAppLimitService_ListDefaults(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))

	views, err := e.appLimits.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != len(model.DefaultAppCatalog) {
		t.Fatalf("got %d apps, want %d", len(views), len(model.DefaultAppCatalog))
	}
	if !sort.SliceIsSorted(views, func(i, j int) bool { return views[i].AppID < views[j].AppID }) {
		t.Error("apps must be sorted by id")
	}
	for _, v := range views {
		if v.Enabled {
			t.Errorf("%s is enabled before the user saved anything", v.AppID)
		}
	}
}

func TestAppLimitService_SaveOverridesDefaults(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	err := e.appLimits.Save(ctx, "u1", map[string]AppSettingInput{
		"instagram": {Enabled: true, DailyLimit: intPtr(45)},
		"duolingo":  {Enabled: true, OpenLimit: intPtr(3)},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	views, err := e.appLimits.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	byApp := make(map[string]AppLimitView)
	for _, v := range views {
		byApp[v.AppID] = v
	}
	if len(views) != len(model.DefaultAppCatalog)+1 {
		t.Errorf("got %d apps", len(views))
	}
	if v := byApp["instagram"]; !v.Enabled || v.DailyLimitMinutes != 45 || v.DailyOpenLimit != 10 {
		t.Errorf("instagram = %+v, want the default open limit kept", v)
	}
	if v := byApp["duolingo"]; !v.Enabled || v.DailyLimitMinutes != 0 || v.DailyOpenLimit != 3 {
		t.Errorf("duolingo = %+v", v)
	}

	// saving again updates in place
	if err := e.appLimits.Save(ctx, "u1", map[string]AppSettingInput{"instagram": {Enabled: false}}); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	enabled, err := e.limitRepo.FindEnabled(ctx, "u1")
	if err != nil {
		t.Fatalf("FindEnabled: %v", err)
	}
	if len(enabled) != 1 || enabled[0].AppID != "duolingo" {
		t.Errorf("enabled = %+v", enabled)
	}
}

func TestAppLimitService_SaveIsAllOrNothing(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	tests := []struct {
		name     string
		settings map[string]AppSettingInput
	}{
		{"empty", map[string]AppSettingInput{}},
		{"limit too large", map[string]AppSettingInput{
			"instagram": {Enabled: true, DailyLimit: intPtr(30)},
			"youtube":   {Enabled: true, DailyLimit: intPtr(2000)},
		}},
		{"negative open limit", map[string]AppSettingInput{"youtube": {Enabled: true, OpenLimit: intPtr(-1)}}},
		{"bad app id", map[string]AppSettingInput{"you tube": {Enabled: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.appLimits.Save(ctx, "u1", tt.settings); !util.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	saved, err := e.limitRepo.FindByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("rejected saves wrote %+v", saved)
	}
}
