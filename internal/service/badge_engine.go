package service

import (
	"context"

	"screen_balance_backend/internal/model"
	"screen_balance_backend/internal/repository"
	"screen_balance_backend/internal/util"
	"screen_balance_backend/pkg/logger"
	"screen_balance_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// BadgeEngine moves badges from not-earned to earned. There is no way back.
type BadgeEngine struct {
	BadgeRepo *repository.BadgeRepository
	LimitRepo *repository.AppLimitRepository
	Builder   *WeeklySummaryBuilder
	Options   *EngineOptions
}

func NewBadgeEngine(badgeRepo *repository.BadgeRepository, limitRepo *repository.AppLimitRepository, builder *WeeklySummaryBuilder, opts *EngineOptions) *BadgeEngine {
	return &BadgeEngine{BadgeRepo: badgeRepo, LimitRepo: limitRepo, Builder: builder, Options: opts}
}

type BadgeEvaluation struct {
	// Earned is every badge the user holds after this pass.
	Earned []model.EarnedBadge
	// NewlyEarned lists the badges this pass created.
	NewlyEarned []model.BadgeID
}

// Evaluate runs every catalog rule against the week, in catalog order, and records the rules
// that hold. Rules of badges already held are skipped; a rule that no longer holds never
// removes a badge.
func (e *BadgeEngine) Evaluate(ctx context.Context, userID string, series *WeekSeries) (*BadgeEvaluation, error) {
	held, err := e.BadgeRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[model.BadgeID]bool, len(held))
	for _, b := range held {
		earned[b.BadgeID] = true
	}

	input, err := e.ruleInput(ctx, userID, series)
	if err != nil {
		return nil, err
	}

	result := &BadgeEvaluation{}
	now := e.Options.now()
	for _, id := range model.BadgeCatalog {
		if earned[id] {
			continue
		}
		rule, ok := RuleFor(id)
		if !ok || !rule(input) {
			continue
		}

		badge := &model.EarnedBadge{
			UserID:    userID,
			BadgeID:   id,
			EarnedAt:  now.UTC(),
			WeekStart: series.Summary.WeekStart,
		}
		var created bool
		err := util.WithRetry(ctx, nil, "BadgeEngine.Evaluate", func() error {
			var err error
			created, err = e.BadgeRepo.CreateIfAbsent(ctx, badge)
			return err
		})
		if err != nil {
			return nil, err
		}
		// 并发评估时另一方已写入，视为成功
		if !created {
			continue
		}

		result.NewlyEarned = append(result.NewlyEarned, id)
		monitoring.BadgesEarned.WithLabelValues(string(id)).Inc()
		logger.Log.Info("badge earned",
			zap.String("userID", userID),
			zap.String("badge", string(id)),
			zap.String("weekStart", series.Summary.WeekStart))
	}

	if len(result.NewlyEarned) == 0 {
		result.Earned = held
		return result, nil
	}
	result.Earned, err = e.BadgeRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *BadgeEngine) ruleInput(ctx context.Context, userID string, series *WeekSeries) (*RuleInput, error) {
	limits, err := e.LimitRepo.FindEnabled(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := e.Builder.MondayHistory(ctx, userID, series, e.Options.MondayHistoryWeeks)
	if err != nil {
		return nil, err
	}
	return &RuleInput{Series: series, Limits: limits, MondayHistory: history}, nil
}

func (e *BadgeEngine) Earned(ctx context.Context, userID string) ([]model.EarnedBadge, error) {
	return e.BadgeRepo.FindByUser(ctx, userID)
}
