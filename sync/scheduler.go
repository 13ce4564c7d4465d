package sync

import (
	"context"
	"errors"
	"log"
	"time"
)

// errorBackoff is how long the loop waits after a failed pass before
// resuming the normal cadence.
const errorBackoff = 60 * time.Second

// Syncer is the slice of Service the scheduler drives.
type Syncer interface {
	SyncOnce(ctx context.Context) (SyncStats, error)
}

// Scheduler runs sync passes on a fixed interval until its context is
// cancelled. Errors from a pass never stop the loop.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	backoff  time.Duration
}

func NewScheduler(syncer Syncer, interval time.Duration) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		backoff:  errorBackoff,
	}
}

// Run executes an immediate pass, then one per interval. Cancellation is
// observed at the wait points only; a pass already in flight runs to
// completion. Run returns once ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("INFO: scheduler_started interval=%s", s.interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("INFO: scheduler_stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes one pass, absorbing errors. A pass already triggered
// manually is skipped; a real failure backs the loop off.
func (s *Scheduler) runOnce(ctx context.Context) {
	_, err := s.syncer.SyncOnce(ctx)
	switch {
	case err == nil:
		return
	case errors.Is(err, ErrSyncInFlight):
		log.Printf("INFO: scheduled_sync_skipped reason=sync_in_flight")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return
	default:
		log.Printf("ERROR: scheduled_sync_failed error=%v backoff=%s", err, s.backoff)
		if sleepErr := sleepContext(ctx, s.backoff); sleepErr != nil {
			return
		}
	}
}
