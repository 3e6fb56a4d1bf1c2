package service

import (
	"context"
	"time"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/util"
)

const maxReminderMessage = 255

type ReminderService struct {
	ReminderRepo *repository.ReminderRepository
}

func NewReminderService(reminderRepo *repository.ReminderRepository) *ReminderService {
	return &ReminderService{ReminderRepo: reminderRepo}
}

type ReminderInput struct {
	Type    model.ReminderType `json:"type" binding:"required"`
	Enabled bool               `json:"enabled"`
	Message string             `json:"message"`
	Time    string             `json:"time"`
}

// List returns the three reminders in fixed order, defaults standing in for unsaved ones.
func (s *ReminderService) List(ctx context.Context, userID string) ([]model.ReminderSetting, error) {
	saved, err := s.ReminderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byType := make(map[model.ReminderType]model.ReminderSetting, len(saved))
	for _, r := range saved {
		byType[r.Type] = r
	}

	out := model.DefaultReminders()
	for i := range out {
		if r, ok := byType[out[i].Type]; ok {
			out[i] = r
		}
		out[i].UserID = userID
	}
	return out, nil
}

func (s *ReminderService) Save(ctx context.Context, userID string, inputs []ReminderInput) ([]model.ReminderSetting, error) {
	if len(inputs) == 0 {
		return nil, util.NewValidationError("reminders", "must not be empty")
	}

	defaults := make(map[model.ReminderType]model.ReminderSetting)
	for _, d := range model.DefaultReminders() {
		defaults[d.Type] = d
	}

	items := make([]model.ReminderSetting, 0, len(inputs))
	seen := make(map[model.ReminderType]bool, len(inputs))
	for _, in := range inputs {
		def, ok := defaults[in.Type]
		if !ok {
			return nil, util.NewValidationError("type", "unknown reminder type "+string(in.Type))
		}
		if seen[in.Type] {
			return nil, util.NewValidationError("type", "duplicate reminder type "+string(in.Type))
		}
		seen[in.Type] = true

		item := model.ReminderSetting{UserID: userID, Type: in.Type, Enabled: in.Enabled, Message: in.Message, Time: in.Time}
		if item.Message == "" {
			item.Message = def.Message
		}
		if len(item.Message) > maxReminderMessage {
			return nil, util.NewValidationError("message", "is too long")
		}
		if in.Type == model.ReminderThreshold {
			item.Time = ""
		} else {
			if item.Time == "" {
				item.Time = def.Time
			}
			if _, err := time.Parse("15:04", item.Time); err != nil {
				return nil, util.NewValidationError("time", "must be HH:MM")
			}
		}
		items = append(items, item)
	}

	err := util.WithRetry(ctx, nil, "ReminderService.Save", func() error {
		return s.ReminderRepo.UpsertAll(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}
