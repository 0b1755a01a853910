package scheduler

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	quotadomain "github.com/smallbiznis/paperflow/internal/quota/domain"
	"go.uber.org/zap"
)

// CounterResetJob zeroes monthly counters for every record whose reset date
// has passed. A redis lock keeps concurrent scheduler replicas from sweeping
// the same tenants twice; failing to get the lock just skips this tick.
func (s *Scheduler) CounterResetJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)

	token, acquired, err := s.limiter.TryLockResetSweep(ctx, s.cfg.ResetSweepLockTTL)
	if err != nil {
		s.logSchedulerError(run, "scheduler.reset.lock.failed", "counter_reset", 0, err)
		return err
	}
	if !acquired {
		s.log.Debug("reset sweep already running elsewhere, skipping")
		return nil
	}
	defer func() {
		if err := s.limiter.ReleaseResetSweep(ctx, token); err != nil {
			s.log.Warn("failed to release reset sweep lock", zap.Error(err))
		}
	}()

	now := s.clock.Now()
	var jobErr error

	for {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}

		due, err := s.quotaRepo.ListResetDue(ctx, s.db, now, s.cfg.BatchSize)
		if err != nil {
			s.logSchedulerError(run, "scheduler.reset.fetch.failed", "counter_reset", 0, err)
			return errors.Join(jobErr, err)
		}
		if len(due) == 0 {
			break
		}

		progressed := 0
		for _, record := range due {
			if err := s.quotaSvc.ResetPeriodicCounters(ctx, record.TenantID); err != nil {
				jobErr = errors.Join(jobErr, err)
				s.logSchedulerError(run, "scheduler.reset.tenant.failed", "counter_reset", record.TenantID, err)
				s.metrics.RecordResetError()
				continue
			}
			run.AddProcessed(1)
			progressed++
		}

		// A tenant that failed keeps its past-due reset date and would be
		// refetched forever; stop once a batch makes no progress.
		if progressed == 0 {
			break
		}
		if len(due) < s.cfg.BatchSize {
			break
		}
	}

	s.metrics.RecordResetSweep()
	return jobErr
}

// ExpireTrialsJob moves trial records past their trial end to expired.
func (s *Scheduler) ExpireTrialsJob(ctx context.Context) error {
	return s.expireWhere(ctx, "expire_trials",
		`status = ? AND trial_end_at IS NOT NULL AND trial_end_at <= ?`,
		quotadomain.RecordStatusTrial,
	)
}

// ExpireLapsedJob moves active paid records past their period end to expired.
func (s *Scheduler) ExpireLapsedJob(ctx context.Context) error {
	return s.expireWhere(ctx, "expire_lapsed",
		`status = ? AND end_at IS NOT NULL AND end_at <= ?`,
		quotadomain.RecordStatusActive,
	)
}

func (s *Scheduler) expireWhere(ctx context.Context, job, where string, status quotadomain.RecordStatus) error {
	run := jobRunFromContext(ctx)
	now := s.clock.Now()
	var jobErr error

	for {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}

		tenantIDs, err := s.fetchTenantIDsForWork(ctx, where, []any{status, now}, s.cfg.BatchSize)
		if err != nil {
			s.logSchedulerError(run, "scheduler.expire.fetch.failed", job, 0, err)
			return errors.Join(jobErr, err)
		}
		if len(tenantIDs) == 0 {
			break
		}

		progressed := false
		for _, tenantID := range tenantIDs {
			if err := s.quotaSvc.UpdateStatus(ctx, tenantID, quotadomain.RecordStatusExpired); err != nil {
				jobErr = errors.Join(jobErr, err)
				s.logSchedulerError(run, "scheduler.expire.tenant.failed", job, tenantID, err)
				continue
			}
			run.AddProcessed(1)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	return jobErr
}

func (s *Scheduler) fetchTenantIDsForWork(ctx context.Context, where string, args []any, limit int) ([]snowflake.ID, error) {
	var tenantIDs []snowflake.ID
	err := s.db.WithContext(ctx).
		Table(quotadomain.QuotaRecord{}.TableName()).
		Select("tenant_id").
		Where(where, args...).
		Order("tenant_id ASC").
		Limit(limit).
		Scan(&tenantIDs).Error
	if err != nil {
		return nil, err
	}
	return tenantIDs, nil
}
