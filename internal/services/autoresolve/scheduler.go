package autoresolve

import (
	"context"
	"fmt"
	"log"
	"time"

	"stagepay/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// Scheduler runs the sweep on a fixed interval and wakes up at the deadline
// of every dispute that still has a pending task.
type Scheduler struct {
	cron     gocron.Scheduler
	sweeper  *Sweeper
	store    repositories.Store
	clock    clockwork.Clock
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler(sweeper *Sweeper, store repositories.Store, clock clockwork.Clock, interval time.Duration) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(gocron.WithClock(clock), gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{cron: cron, sweeper: sweeper, store: store, clock: clock, interval: interval}, nil
}

// Start registers the periodic sweep, recovers pending tasks and starts the
// scheduler. The periodic job never overlaps itself.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	_, err := s.cron.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.runSweep),
		gocron.WithName("dispute-auto-resolve"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		s.cancel()
		return fmt.Errorf("schedule sweep: %w", err)
	}

	recovered, err := s.RecoverPendingTasks(s.ctx)
	if err != nil {
		log.Printf("[autoresolve] task recovery failed, relying on the periodic sweep: %v", err)
	}
	s.cron.Start()
	log.Printf("[autoresolve] scheduler started: every %s, %d deadline wake-ups", s.interval, recovered)
	return nil
}

// RecoverPendingTasks adds a one-time sweep at the deadline of every pending
// task still in the future. Past deadlines are left to the periodic sweep.
func (s *Scheduler) RecoverPendingTasks(ctx context.Context) (int, error) {
	tasks, err := s.store.Tasks().ListPending(ctx)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	var n int
	for _, task := range tasks {
		if !task.RunsAt.After(now) {
			continue
		}
		if _, err := s.cron.NewJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(task.RunsAt)),
			gocron.NewTask(s.runSweep),
			gocron.WithName("auto-resolve:"+task.DisputeID.String()),
		); err != nil {
			log.Printf("[autoresolve] failed to schedule task %s, skipping: %v", task.ID, err)
			continue
		}
		n++
	}
	return n, nil
}

func (s *Scheduler) Jobs() int {
	return len(s.cron.Jobs())
}

func (s *Scheduler) runSweep() {
	if _, err := s.sweeper.Sweep(s.ctx); err != nil {
		log.Printf("[autoresolve] sweep failed: %v", err)
	}
}

func (s *Scheduler) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.cron.Shutdown()
}
