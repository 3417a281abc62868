package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper deletes expired rows. Both the OTP and session services satisfy it.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// RunSweeper calls every sweeper once per interval until ctx is done.
// It stands in for the cron endpoints when no external scheduler exists.
func RunSweeper(ctx context.Context, interval time.Duration, sweepers []Sweeper, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Expiry sweeper started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			for _, s := range sweepers {
				if _, err := s.SweepExpired(ctx); err != nil {
					logger.Error("Expiry sweep failed", zap.Error(err))
				}
			}
		}
	}
}
