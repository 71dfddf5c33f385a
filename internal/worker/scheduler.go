package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const (
	defaultTriggerRetryDelay = time.Second
	maxTriggerRetryDelay     = 30 * time.Second
)

// Sweeper materializes due recurring templates.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (services.SweepResult, error)
}

// TriggerSource delivers on-demand sweep requests until ctx is cancelled or
// the underlying subscription fails.
type TriggerSource interface {
	ConsumeSweepTriggers(ctx context.Context, handler func(context.Context, *amqp.SweepTriggerMessage) error) error
}

// SchedulerConfig controls when sweeps run. The daily run fires at Hour:Minute
// in Location; Interval adds extra runs in between and is disabled when zero.
// TriggerRetryDelay is the first pause before resubscribing to a failed
// trigger source; it doubles up to 30s.
type SchedulerConfig struct {
	Hour              int
	Minute            int
	Interval          time.Duration
	Location          *time.Location
	Now               func() time.Time
	TriggerRetryDelay time.Duration
}

// Scheduler runs recurring sweeps on a timetable and on demand. At most one
// sweep runs at a time across all triggers.
type Scheduler struct {
	sweeper Sweeper
	cfg     SchedulerConfig
	logger  *log.Logger
	sem     *semaphore.Weighted

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(sweeper Sweeper, cfg SchedulerConfig, logger *log.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TriggerRetryDelay <= 0 {
		cfg.TriggerRetryDelay = defaultTriggerRetryDelay
	}
	if logger == nil {
		logger = log.Default(log.ComponentScheduler)
	}
	return &Scheduler{
		sweeper: sweeper,
		cfg:     cfg,
		logger:  logger.WithComponent(log.ComponentScheduler),
		sem:     semaphore.NewWeighted(1),
	}
}

// RunOnce sweeps now unless another sweep is in flight, in which case it
// returns ran == false without waiting.
func (s *Scheduler) RunOnce(ctx context.Context, reason string) (services.SweepResult, bool, error) {
	if !s.sem.TryAcquire(1) {
		s.logger.InfoContext(ctx, "Sweep already in progress, skipping", "reason", reason)
		return services.SweepResult{}, false, nil
	}
	defer s.sem.Release(1)

	start := s.cfg.Now()
	s.logger.InfoContext(ctx, "Processing due recurring templates", "reason", reason)
	res, err := s.sweeper.Sweep(ctx, start)
	if err != nil {
		s.logger.ErrorContext(ctx, "Sweep failed",
			"reason", reason,
			log.FieldOperation, log.OpSweep,
			log.FieldError, err)
		return res, true, fmt.Errorf("sweep: %w", err)
	}
	s.logger.InfoContext(ctx, "Sweep complete",
		"reason", reason,
		"due", res.Due,
		"materialized", res.Materialized,
		"expired", res.Expired,
		"skipped", res.Skipped,
		"failed", res.Failed,
		log.FieldDuration, s.cfg.Now().Sub(start).Milliseconds())
	return res, true, nil
}

// HandleTrigger runs a sweep requested over AMQP. A trigger that arrives while
// a sweep is running is dropped; the running sweep covers it. A failed sweep
// is not requeued: the next scheduled run picks up the same templates.
func (s *Scheduler) HandleTrigger(ctx context.Context, msg *amqp.SweepTriggerMessage) error {
	reason := "trigger"
	if msg != nil && msg.RequestedBy != "" {
		reason = "trigger:" + msg.RequestedBy
	}
	if _, _, err := s.RunOnce(ctx, reason); err != nil {
		s.logger.WarnContext(ctx, "Triggered sweep failed, leaving it to the schedule", log.FieldError, err)
	}
	return nil
}

// ServeTriggers feeds requests from src into HandleTrigger until ctx is
// cancelled. A failed subscription is retried with backoff so the schedule
// keeps running while the broker is away.
func (s *Scheduler) ServeTriggers(ctx context.Context, src TriggerSource) error {
	delay := s.cfg.TriggerRetryDelay
	for {
		started := time.Now()
		err := src.ConsumeSweepTriggers(ctx, s.HandleTrigger)
		if ctx.Err() != nil {
			return nil
		}
		// a subscription that stayed up for a while starts over
		if time.Since(started) > maxTriggerRetryDelay {
			delay = s.cfg.TriggerRetryDelay
		}
		s.logger.WarnContext(ctx, "Sweep trigger consumer stopped, resubscribing",
			log.FieldError, err,
			"retry_in", delay.String())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		delay = min(delay*2, maxTriggerRetryDelay)
	}
}

// Start runs an initial sweep and then schedules the daily and interval runs
// until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.loop(ctx, stopCh, doneCh)
	return nil
}

func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(doneCh)
	}()

	s.RunOnce(ctx, "startup")

	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		next := nextRun(s.cfg.Now(), s.cfg.Hour, s.cfg.Minute, s.cfg.Location)
		s.logger.InfoContext(ctx, "Next daily sweep scheduled", "at", next.Format(time.RFC3339))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
			s.RunOnce(ctx, "daily")
		case <-tick:
			timer.Stop()
			s.RunOnce(ctx, "interval")
		}
	}
}

// Stop halts the schedule and waits for an in-flight sweep to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// nextRun returns the first hour:minute in loc strictly after now.
func nextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}
