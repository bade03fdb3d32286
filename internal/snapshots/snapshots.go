// Package snapshots runs scheduled automatic backups. The schedule is a
// cron expression; each tick takes a full backup and prunes completed
// records beyond the configured retention count.
package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"foliodb/pkg/backup"
	"foliodb/pkg/config"
	"foliodb/pkg/logger"
)

const defaultKeep = 10

// Start launches the scheduler when a schedule is configured. Returns a
// no-op cancel when scheduling is disabled.
func Start(ctx context.Context, cfg *config.Config, orch *backup.Orchestrator) (context.CancelFunc, error) {
	cronExpr := cfg.Backups.Schedule
	if cronExpr == "" {
		logger.Info("snapshots_disabled")
		return func() {}, nil
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("snapshots_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid backup schedule: %s", cronExpr)
	}
	keep := cfg.Backups.Keep
	if keep <= 0 {
		keep = defaultKeep
	}

	logger.Info("snapshots_enabled", "cron", cronExpr, "keep", keep)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, orch, cronExpr, keep)
	return cancel, nil
}

// runScheduler computes the next cron tick with gronx and sleeps until it,
// rather than polling on an interval.
func runScheduler(ctx context.Context, orch *backup.Orchestrator, cronExpr string, keep int) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("snapshots_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("snapshots_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			runOnce(orch, keep)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			runOnce(orch, keep)
		case <-ctx.Done():
			logger.Info("snapshots_scheduler_stopping")
			return
		}
	}
}

// runOnce takes one backup and prunes. CreateBackup reports failure through
// the record's status, so there is no error path here.
func runOnce(orch *backup.Orchestrator, keep int) {
	name := "scheduled-" + time.Now().UTC().Format("2006-01-02-1504")
	b := orch.CreateBackup(name, "full", "automatic scheduled backup")
	logger.Info("snapshot_run", "id", b.ID, "status", b.Status, "size", b.Size)
	orch.Prune(keep)
}
