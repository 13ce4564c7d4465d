package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"testing"
	"time"
)

type countingSyncer struct {
	mu    stdsync.Mutex
	calls int
	errs  []error // error per call, nil past the end
}

func (c *countingSyncer) SyncOnce(ctx context.Context) (SyncStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls <= len(c.errs) {
		return SyncStats{}, c.errs[c.calls-1]
	}
	return SyncStats{}, nil
}

func (c *countingSyncer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func waitForCalls(t *testing.T, syncer *countingSyncer, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for syncer.count() < want {
		select {
		case <-deadline:
			t.Fatalf("calls = %d, want at least %d", syncer.count(), want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSchedulerRunsImmediatelyThenOnInterval(t *testing.T) {
	syncer := &countingSyncer{}
	scheduler := NewScheduler(syncer, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	waitForCalls(t, syncer, 3)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestSchedulerSurvivesErrors(t *testing.T) {
	syncer := &countingSyncer{errs: []error{fmt.Errorf("fetch failed")}}
	scheduler := NewScheduler(syncer, 10*time.Millisecond)
	scheduler.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Run(ctx)

	// The failing first pass must not stop later passes.
	waitForCalls(t, syncer, 3)
}

func TestSchedulerSkipsWhenSyncInFlight(t *testing.T) {
	syncer := &countingSyncer{errs: []error{ErrSyncInFlight, ErrSyncInFlight}}
	scheduler := NewScheduler(syncer, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Run(ctx)

	waitForCalls(t, syncer, 4)
}

func TestSchedulerStopsDuringBackoff(t *testing.T) {
	syncer := &countingSyncer{errs: []error{fmt.Errorf("fetch failed")}}
	scheduler := NewScheduler(syncer, time.Hour)
	scheduler.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	waitForCalls(t, syncer, 1)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return while backing off")
	}
}
