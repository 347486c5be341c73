package projects

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpirySweeper moves stale expert requests from "requested" to "expired".
// It runs out of band on a cron schedule; no API operation triggers it.
type ExpirySweeper struct {
	repo   Repository
	maxAge time.Duration
	cron   *cron.Cron
	logger *zap.Logger
}

// NewExpirySweeper creates a sweeper expiring requests older than maxAge.
func NewExpirySweeper(repo Repository, maxAge time.Duration, logger *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		repo:   repo,
		maxAge: maxAge,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules the sweep with the given cron spec (e.g. "@hourly").
func (s *ExpirySweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Request expiry sweeper started",
		zap.String("spec", spec),
		zap.Duration("max_age", s.maxAge))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ExpirySweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	expired, err := s.repo.ExpireRequests(ctx, time.Now().Add(-s.maxAge))
	if err != nil {
		s.logger.Error("Request expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("Expired stale expert requests", zap.Int64("count", expired))
	}
}
