package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/util"
)

func TestReminderService_DefaultsAndSave(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	list, err := e.reminders.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].Type != model.ReminderMorning || list[2].Type != model.ReminderThreshold {
		t.Fatalf("defaults = %+v", list)
	}

	saved, err := e.reminders.Save(ctx, "u1", []ReminderInput{
		{Type: model.ReminderEvening, Enabled: false, Time: "21:30"},
		{Type: model.ReminderThreshold, Enabled: false, Message: "enough", Time: "07:00"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("Save returned %d reminders", len(saved))
	}
	evening, threshold := saved[1], saved[2]
	if evening.Enabled || evening.Time != "21:30" || evening.Message == "" {
		t.Errorf("evening = %+v", evening)
	}
	if threshold.Enabled || threshold.Time != "" || threshold.Message != "enough" {
		t.Errorf("threshold = %+v", threshold)
	}
	if !saved[0].Enabled {
		t.Error("unsaved morning reminder should keep its default")
	}

	on, err := e.notifier.thresholdReminderEnabled(ctx, "u1")
	if err != nil || on {
		t.Errorf("thresholdReminderEnabled = %v, %v", on, err)
	}
}

func TestReminderService_SaveRejectsBadInput(t *testing.T) {
	e := newTestEngine(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	tests := []struct {
		name   string
		inputs []ReminderInput
	}{
		{"empty", nil},
		{"unknown type", []ReminderInput{{Type: "weekly"}}},
		{"duplicate", []ReminderInput{{Type: model.ReminderMorning}, {Type: model.ReminderMorning}}},
		{"bad time", []ReminderInput{{Type: model.ReminderMorning, Time: "8am"}}},
		{"long message", []ReminderInput{{Type: model.ReminderMorning, Message: strings.Repeat("x", 256)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.reminders.Save(ctx, "u1", tt.inputs); !util.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}
