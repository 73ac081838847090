package user

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dulanjanabandara/job-recommender-system/internal/logger"
)

const cleanupTimeout = 30 * time.Second

// ScheduleTokenCleanup registers a job on c that clears expired password reset
// tokens. The scheduler is owned and started by the caller.
func (s *Service) ScheduleTokenCleanup(c *cron.Cron, schedule string) (cron.EntryID, error) {
	id, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		s.CleanupExpiredResetTokens(ctx)
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Reset token cleanup job scheduled", zap.String("schedule", schedule))
	return id, nil
}

func (s *Service) CleanupExpiredResetTokens(ctx context.Context) {
	cleared, err := s.userRepo.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		logger.Error("Failed to clear expired reset tokens", zap.Error(err))
		return
	}

	logger.Debug("Expired reset tokens cleared",
		zap.Int64("cleared", cleared),
	)
}
