package maintenance

import (
	"context"
	"time"

	"wsadmin/internal/config"
)

// Job IDs.
const (
	TokenSweepJobID        = "token-sweep"
	InstanceFinalizerJobID = "instance-finalizer"
)

// Store is the part of the storage layer the jobs need.
type Store interface {
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
	FinalizeStopping(ctx context.Context, cutoff, now time.Time) (int64, error)
}

// TokenSweepJob deletes expired personal access tokens every interval.
func TokenSweepJob(store Store, interval time.Duration) *Job {
	return &Job{
		ID:       TokenSweepJobID,
		Interval: interval,
		Task: func(ctx context.Context) error {
			_, err := store.DeleteExpiredTokens(ctx, time.Now().UTC())
			return err
		},
	}
}

// InstanceFinalizerJob marks instances that have been stopping for longer
// than timeout as stopped.
func InstanceFinalizerJob(store Store, timeout time.Duration) *Job {
	return &Job{
		ID:       InstanceFinalizerJobID,
		Interval: finalizerInterval(timeout),
		Task: func(ctx context.Context) error {
			now := time.Now().UTC()
			_, err := store.FinalizeStopping(ctx, now.Add(-timeout), now)
			return err
		},
	}
}

// finalizerInterval checks four times per timeout, between 10s and 5m.
func finalizerInterval(timeout time.Duration) time.Duration {
	return min(max(timeout/4, 10*time.Second), 5*time.Minute)
}

// Jobs returns the standard maintenance jobs for cfg.
func Jobs(store Store, cfg config.MaintenanceConfig) []*Job {
	return []*Job{
		TokenSweepJob(store, cfg.TokenSweepInterval),
		InstanceFinalizerJob(store, cfg.StoppingTimeout),
	}
}
