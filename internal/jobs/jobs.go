package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

const jobTimeout = time.Minute

type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *zap.Logger
}

func NewScheduler(logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		logger:    logger.Named("jobs"),
	}, nil
}

// PurgeRevokedTokens deletes revocation rows whose token has expired, every
// interval and once right away.
func (s *Scheduler) PurgeRevokedTokens(repo repository.RevokedTokenRepo, clock util.Clock, every time.Duration) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			purgeRevokedTokens(ctx, repo, clock, s.logger)
		}),
		gocron.WithName("purge-revoked-tokens"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule revoked token purge: %w", err)
	}
	return nil
}

func purgeRevokedTokens(ctx context.Context, repo repository.RevokedTokenRepo, clock util.Clock, logger *zap.Logger) {
	n, err := repo.DeleteExpired(ctx, clock.Now())
	if err != nil {
		logger.Error("failed to purge revoked tokens", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("purged revoked tokens", zap.Int("count", n))
	}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}
