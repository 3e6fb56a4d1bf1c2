package service

import (
	"context"
	"sync/atomic"
	"time"

	"screen_balance_backend/pkg/logger"
	"screen_balance_backend/pkg/monitoring"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecomputeJob refreshes every user's trailing week in the background, a bounded number of
// users at a time. Passes of different users share nothing.
type RecomputeJob struct {
	Events      *EventStore
	Dashboard   *DashboardService
	Interval    time.Duration
	Concurrency int
}

func NewRecomputeJob(events *EventStore, dashboard *DashboardService, interval time.Duration, concurrency int) *RecomputeJob {
	return &RecomputeJob{
		Events:      events,
		Dashboard:   dashboard,
		Interval:    interval,
		Concurrency: concurrency,
	}
}

type RecomputeReport struct {
	Users  int `json:"users"`
	Failed int `json:"failed"`
}

// RunOnce recomputes all users. A failing user is logged and counted; it does not stop the run.
func (j *RecomputeJob) RunOnce(ctx context.Context) (*RecomputeReport, error) {
	users, err := j.Events.DistinctUsers(ctx)
	if err != nil {
		return nil, err
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(j.Concurrency, 1))
	for _, userID := range users {
		g.Go(func() error {
			if _, err := j.Dashboard.Recompute(gctx, userID); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				monitoring.RecomputeRuns.WithLabelValues("failed").Inc()
				logger.Log.Warn("recompute user failed", zap.String("userID", userID), zap.Error(err))
				return nil
			}
			monitoring.RecomputeRuns.WithLabelValues("ok").Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &RecomputeReport{Users: len(users), Failed: int(failed.Load())}
	logger.Log.Info("recompute run finished",
		zap.Int("users", report.Users),
		zap.Int("failed", report.Failed))
	return report, nil
}

// Start runs RunOnce every Interval until ctx is done. A zero interval disables the job.
func (j *RecomputeJob) Start(ctx context.Context) {
	if j.Interval <= 0 {
		logger.Log.Info("recompute job disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(j.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
					logger.Log.Error("recompute run failed", zap.Error(err))
				}
			}
		}
	}()
}
