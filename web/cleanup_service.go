package web

import (
	"context"
	"time"

	"docs-agent/database"

	"go.uber.org/zap"
)

// CleanupService periodically deletes sessions idle past the retention age.
type CleanupService struct {
	store        *database.PostgresStore
	logger       *zap.Logger
	interval     time.Duration
	retentionAge time.Duration
}

func NewCleanupService(store *database.PostgresStore, logger *zap.Logger, interval, retentionAge time.Duration) *CleanupService {
	return &CleanupService{
		store:        store,
		logger:       logger,
		interval:     interval,
		retentionAge: retentionAge,
	}
}

// Run blocks until ctx is cancelled, sweeping on the configured interval.
// One sweep runs immediately on start.
func (cs *CleanupService) Run(ctx context.Context) {
	cs.sweep(ctx)

	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cs.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (cs *CleanupService) sweep(ctx context.Context) {
	cs.logger.Debug("Starting stale session cleanup",
		zap.Duration("retention_age", cs.retentionAge))

	deleted, err := cs.store.DeleteStaleSessions(ctx, cs.retentionAge)
	if err != nil {
		cs.logger.Error("Stale session cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		cs.logger.Info("Stale session cleanup completed", zap.Int64("sessions_deleted", deleted))
	}
}
