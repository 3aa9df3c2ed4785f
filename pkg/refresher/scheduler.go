package refresher

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// Start warms the cache with one refresh and, in background mode, schedules
// a refresh every interval. It returns immediately; the warm-up runs in the
// background. Canceling ctx stops the refresher.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("refresher already started")
	}
	if r.lifetime.Err() != nil {
		return errors.New("refresher has been stopped")
	}

	if r.cfg.Mode == ModeBackground {
		logger := cronLogger{r.logger}
		// Recover covers the job wrapper only. Refreshes run on singleflight's
		// goroutine and recover there (see recoverRefresh).
		r.cron = cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		)
		r.cron.Schedule(cron.Every(r.cfg.Interval), cron.FuncJob(func() {
			_, _ = r.Refresh(r.lifetime, TriggerSchedule)
		}))
		r.cron.Start()
	}
	r.running = true

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _ = r.Refresh(r.lifetime, TriggerStartup)
	}()

	r.logger.Info("refresher started",
		"mode", string(r.cfg.Mode),
		"interval", r.cfg.Interval.String(),
	)

	go func() {
		select {
		case <-ctx.Done():
			r.Stop()
		case <-r.lifetime.Done():
		}
	}()

	return nil
}

// Stop cancels any running refresh and waits for the scheduler to finish.
// It is safe to call more than once.
func (r *Refresher) Stop() {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	r.wg.Wait()
	r.running = false
	r.logger.Info("refresher stopped")
}

// IsRunning returns true between Start and Stop.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.running
}

// NextRun returns the next scheduled refresh, or nil in on-demand mode or
// when not running.
func (r *Refresher) NextRun() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron == nil || !r.running {
		return nil
	}
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
